package service

import (
	"errors"
	"fmt"
)

// Service-level sentinel errors. The API layer maps them to status codes.
var (
	// ErrCareAreaMismatch is returned when a community does not offer every
	// care area of the project being revised.
	ErrCareAreaMismatch = errors.New("community does not offer the project's care areas")

	// ErrEmptyInstructions is returned when a refine request has no instructions.
	ErrEmptyInstructions = errors.New("refine instructions cannot be empty")

	// ErrBatchUnavailable is returned when batch revisions are requested
	// before a task runner has been attached.
	ErrBatchUnavailable = errors.New("batch revisions are not available")

	// ErrNoCommunities is returned when a batch revision names no communities.
	ErrNoCommunities = errors.New("at least one community is required")
)

// ServiceError wraps an unexpected failure with the service and operation
// it happened in.
type ServiceError struct {
	Service string
	Op      string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s service %s operation failed", e.Service, e.Op)
	}
	return fmt.Sprintf("%s service %s operation failed: %v", e.Service, e.Op, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// wrap returns nil for a nil err and a ServiceError otherwise.
func wrap(service, op string, err error) error {
	if err == nil {
		return nil
	}
	return &ServiceError{Service: service, Op: op, Err: err}
}
