package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/grover/internal/api/shared"
	"github.com/phrazzld/grover/internal/task"
)

// TaskReader looks up background tasks.
type TaskReader interface {
	Get(ctx context.Context, id uuid.UUID) (*task.Record, error)
}

// TaskHandler reports background task status.
type TaskHandler struct {
	tasks  TaskReader
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks TaskReader, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		panic("logger cannot be nil for TaskHandler") // ALLOW-PANIC
	}
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// Get handles GET /api/tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		HandleAPIError(w, r, fmt.Errorf("%w: id=%q", ErrInvalidPathID, raw), "")
		return
	}

	rec, err := h.tasks.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskResponse{
		ID:        rec.ID.String(),
		Type:      rec.Type,
		Status:    string(rec.Status),
		Error:     rec.Error,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	})
}
