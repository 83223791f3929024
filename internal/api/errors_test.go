package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/grover/internal/api/shared"
	"github.com/phrazzld/grover/internal/community"
	"github.com/phrazzld/grover/internal/domain"
	"github.com/phrazzld/grover/internal/keywords"
	"github.com/phrazzld/grover/internal/service"
	"github.com/phrazzld/grover/internal/store"
	"github.com/phrazzld/grover/internal/task"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusInternalServerError},
		{"project not found", store.ErrProjectNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", store.ErrArticleNotFound), http.StatusNotFound},
		{"community not found", community.ErrNotFound, http.StatusNotFound},
		{"duplicate keyword", store.ErrKeywordExists, http.StatusConflict},
		{"domain validation", fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrEmptyProjectName), http.StatusBadRequest},
		{"negative length", domain.ErrNegativeLength, http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"empty instructions", service.ErrEmptyInstructions, http.StatusBadRequest},
		{"empty body", shared.ErrEmptyBody, http.StatusBadRequest},
		{"invalid json", fmt.Errorf("%w: eof", shared.ErrInvalidJSON), http.StatusBadRequest},
		{"invalid path id", ErrInvalidPathID, http.StatusBadRequest},
		{"care area mismatch", service.ErrCareAreaMismatch, http.StatusUnprocessableEntity},
		{"queue full", task.ErrQueueFull, http.StatusServiceUnavailable},
		{"batch unavailable", service.ErrBatchUnavailable, http.StatusServiceUnavailable},
		{"keywords not configured", keywords.ErrNotConfigured, http.StatusServiceUnavailable},
		{"research failed", keywords.ErrResearchFailed, http.StatusBadGateway},
		{"community unavailable", community.ErrUnavailable, http.StatusBadGateway},
		{"revision failed", service.ErrRevisionFailed, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Project not found", GetSafeErrorMessage(store.ErrProjectNotFound))
	assert.Equal(t, "Keyword already exists for this project", GetSafeErrorMessage(store.ErrKeywordExists))
	assert.Equal(t, "Project name cannot be empty",
		GetSafeErrorMessage(fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrEmptyProjectName)))
	assert.Equal(t, "Task queue is full, try again later", GetSafeErrorMessage(task.ErrQueueFull))

	internal := errors.New("pq: password authentication failed for user admin")
	msg := GetSafeErrorMessage(internal)
	assert.Equal(t, "An unexpected error occurred", msg)
	assert.NotContains(t, msg, "admin")
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name string `validate:"required"`
	}
	err := validator.New().Struct(payload{})
	require.Error(t, err)

	assert.Equal(t, "Invalid name: required field", SanitizeValidationError(err))
	assert.Equal(t, "Validation error", SanitizeValidationError(domain.ErrValidation))
}

func TestHandleAPIError(t *testing.T) {
	t.Parallel()

	t.Run("client error keeps safe message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/projects/9", nil)

		HandleAPIError(rec, req, store.ErrProjectNotFound, "Failed to load project")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Project not found")
	})

	t.Run("server error uses fallback", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/projects/9", nil)

		HandleAPIError(rec, req, errors.New("connection reset"), "Failed to load project")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "Failed to load project")
		assert.NotContains(t, rec.Body.String(), "connection reset")
	})
}
