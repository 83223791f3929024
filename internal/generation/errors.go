package generation

import "errors"

// Common errors returned by the generation package and its backends.
var (
	// ErrGenerationFailed is returned when a backend call fails for any general reason.
	ErrGenerationFailed = errors.New("failed to generate content")

	// ErrInvalidResponse is returned when the backend response is empty or malformed.
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the backend blocks the content due to safety filters.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry.
	ErrTransientFailure = errors.New("transient error during content generation")

	// ErrInvalidConfig is returned when a generator configuration is invalid.
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrNoGenerator is recorded when Run is called without a Generator.
	ErrNoGenerator = errors.New("no generator configured")

	// ErrGeneratorPanic is recorded when a Generator panics during an attempt.
	ErrGeneratorPanic = errors.New("generator panicked")
)
