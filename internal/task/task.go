package task

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// TaskTypeCommunityRevision tailors a base article to one community.
const TaskTypeCommunityRevision = "community_revision"

// Task represents a unit of background work to be processed
type Task interface {
	ID() uuid.UUID
	Type() string
	// Payload is the JSON stored with the task, enough to rebuild it.
	Payload() []byte
	Execute(ctx context.Context) error
}

// Record is the stored form of a task.
type Record struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Status    TaskStatus      `json:"status"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TaskStore persists tasks.
type TaskStore interface {
	// SaveTask stores a new task as pending.
	SaveTask(ctx context.Context, task Task) error

	// UpdateTaskStatus records a status change and its error message.
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// GetTask returns store.ErrTaskNotFound if the task does not exist.
	GetTask(ctx context.Context, taskID uuid.UUID) (*Record, error)

	// GetPendingTasks returns all pending tasks, oldest first.
	GetPendingTasks(ctx context.Context) ([]Record, error)

	// GetProcessingTasks returns processing tasks. A non-zero olderThan
	// limits the result to tasks not updated within that duration.
	GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Record, error)
}
