package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is zero or negative.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")
)

// Entity-specific validation errors.
var (
	ErrEmptyProjectName    = errors.New("project name cannot be empty")
	ErrNoCareAreas         = errors.New("project must have at least one care area")
	ErrUnknownCareArea     = errors.New("unknown care area")
	ErrEmptyKeyword        = errors.New("keyword cannot be empty")
	ErrNegativeLength      = errors.New("article length cannot be negative")
	ErrNegativeSections    = errors.New("article sections cannot be negative")
	ErrInvalidCommunityID  = errors.New("community ID must be positive")
	ErrInvalidProjectRef   = errors.New("project ID must be positive")
	ErrInvalidArticleRef   = errors.New("base article ID must be positive")
	ErrNegativeSearchStats = errors.New("keyword metrics cannot be negative")
)
