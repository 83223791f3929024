package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/grover/internal/api/shared"
	"github.com/phrazzld/grover/internal/community"
	"github.com/phrazzld/grover/internal/domain"
	"github.com/phrazzld/grover/internal/keywords"
	"github.com/phrazzld/grover/internal/service"
	"github.com/phrazzld/grover/internal/store"
	"github.com/phrazzld/grover/internal/task"
)

// ErrInvalidPathID is returned when a path parameter is not a positive integer.
var ErrInvalidPathID = errors.New("invalid path id")

// validationErrors are the sentinels that indicate a malformed request.
var validationErrors = []error{
	domain.ErrValidation,
	domain.ErrInvalidID,
	domain.ErrEmptyContent,
	domain.ErrEmptyProjectName,
	domain.ErrNoCareAreas,
	domain.ErrUnknownCareArea,
	domain.ErrEmptyKeyword,
	domain.ErrNegativeLength,
	domain.ErrNegativeSections,
	domain.ErrInvalidCommunityID,
	domain.ErrInvalidProjectRef,
	domain.ErrInvalidArticleRef,
	domain.ErrNegativeSearchStats,
	store.ErrInvalidEntity,
	service.ErrEmptyInstructions,
	service.ErrNoCommunities,
	shared.ErrEmptyBody,
	shared.ErrInvalidJSON,
	ErrInvalidPathID,
}

func isValidationError(err error) bool {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return true
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusInternalServerError

	case store.IsNotFoundError(err),
		errors.Is(err, community.ErrNotFound):
		return http.StatusNotFound

	case store.IsDuplicateError(err):
		return http.StatusConflict

	case isValidationError(err):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrCareAreaMismatch):
		return http.StatusUnprocessableEntity

	case errors.Is(err, task.ErrQueueFull),
		errors.Is(err, service.ErrBatchUnavailable),
		errors.Is(err, keywords.ErrNotConfigured):
		return http.StatusServiceUnavailable

	case errors.Is(err, keywords.ErrResearchFailed),
		errors.Is(err, community.ErrUnavailable),
		errors.Is(err, service.ErrRevisionFailed):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-safe message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, store.ErrProjectNotFound):
		return "Project not found"
	case errors.Is(err, store.ErrKeywordNotFound):
		return "Keyword not found"
	case errors.Is(err, store.ErrArticleNotFound):
		return "Article not found"
	case errors.Is(err, store.ErrCommunityArticleNotFound):
		return "Community article not found"
	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, community.ErrNotFound):
		return "Community not found"
	case store.IsNotFoundError(err):
		return "Resource not found"

	case errors.Is(err, store.ErrKeywordExists):
		return "Keyword already exists for this project"
	case errors.Is(err, store.ErrCommunityArticleExists):
		return "A community article already exists for this community"
	case store.IsDuplicateError(err):
		return "Resource already exists"

	case errors.Is(err, ErrInvalidPathID):
		return "Invalid id in path"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.Is(err, shared.ErrInvalidJSON):
		return "Invalid JSON request body"
	case errors.Is(err, service.ErrCareAreaMismatch):
		return "The community does not offer every care area of the project"
	case isValidationError(err):
		return SanitizeValidationError(err)

	case errors.Is(err, task.ErrQueueFull):
		return "Task queue is full, try again later"
	case errors.Is(err, service.ErrBatchUnavailable):
		return "Batch revisions are not available"
	case errors.Is(err, keywords.ErrNotConfigured):
		return "Keyword research is not configured"
	case errors.Is(err, keywords.ErrResearchFailed):
		return "Keyword research failed"
	case errors.Is(err, community.ErrUnavailable):
		return "Community database unavailable"
	case errors.Is(err, service.ErrRevisionFailed):
		return "Community revision produced no content"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns a validation failure into a message that
// names the field without echoing input.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
	}

	for _, target := range validationErrors {
		if errors.Is(err, target) && target != domain.ErrValidation {
			msg := target.Error()
			return strings.ToUpper(msg[:1]) + msg[1:]
		}
	}
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gt", "gte":
		return "too small"
	case "max", "lt", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	case "dive":
		return "invalid item"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status and safe message for err and logs the
// redacted details. fallback replaces the generic message of 5xx errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
