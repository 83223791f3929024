package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/grover/internal/store"
	"github.com/phrazzld/grover/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTask struct {
	id      uuid.UUID
	payload []byte
}

func (s stubTask) ID() uuid.UUID                 { return s.id }
func (s stubTask) Type() string                  { return task.TaskTypeCommunityRevision }
func (s stubTask) Payload() []byte               { return s.payload }
func (s stubTask) Execute(context.Context) error { return nil }

var taskRowColumns = []string{"id", "type", "payload", "status", "error_message", "created_at", "updated_at"}

func fixedTaskStore(db *sql.DB, now time.Time) *PostgresTaskStore {
	s := NewPostgresTaskStore(db, discardLogger())
	s.now = func() time.Time { return now }
	return s
}

func TestPostgresTaskStore_SaveTask(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	s := fixedTaskStore(db, now)

	id := uuid.New()
	mock.ExpectExec("INSERT INTO tasks").
		WithArgs(id, task.TaskTypeCommunityRevision, `{"article_id":1,"community_id":2}`, "pending", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.SaveTask(context.Background(), stubTask{id: id, payload: []byte(`{"article_id":1,"community_id":2}`)})
	require.NoError(t, err)
}

func TestPostgresTaskStore_SaveTaskError(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresTaskStore(db, discardLogger())

	mock.ExpectExec("INSERT INTO tasks").WillReturnError(errors.New("connection refused"))

	err := s.SaveTask(context.Background(), stubTask{id: uuid.New()})
	assert.ErrorContains(t, err, "failed to save task to database")
}

func TestPostgresTaskStore_UpdateTaskStatus(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	s := fixedTaskStore(db, now)
	id := uuid.New()

	mock.ExpectExec("UPDATE tasks").
		WithArgs("failed", "boom", now, id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.UpdateTaskStatus(context.Background(), id, task.TaskStatusFailed, "boom"))

	mock.ExpectExec("UPDATE tasks").WillReturnResult(sqlmock.NewResult(0, 0))
	err := s.UpdateTaskStatus(context.Background(), id, task.TaskStatusCompleted, "")
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestPostgresTaskStore_GetTask(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresTaskStore(db, discardLogger())
	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM tasks WHERE id = \\$1").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(taskRowColumns).
			AddRow(id.String(), task.TaskTypeCommunityRevision, []byte(`{"article_id":1}`), "failed", "boom", now, now))

	rec, err := s.GetTask(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, task.TaskStatusFailed, rec.Status)
	assert.Equal(t, "boom", rec.Error)
	assert.JSONEq(t, `{"article_id":1}`, string(rec.Payload))

	mock.ExpectQuery("SELECT (.+) FROM tasks").WillReturnError(sql.ErrNoRows)
	_, err = s.GetTask(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestPostgresTaskStore_GetTasksByStatus(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := fixedTaskStore(db, now)
	id := uuid.New()

	mock.ExpectQuery("WHERE status = \\$1 ORDER BY created_at").
		WithArgs("pending").
		WillReturnRows(sqlmock.NewRows(taskRowColumns).
			AddRow(id.String(), "community_revision", []byte(`{}`), "pending", nil, now, now))

	pending, err := s.GetPendingTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, id, pending[0].ID)
	assert.Empty(t, pending[0].Error)

	mock.ExpectQuery("WHERE status = \\$1 AND updated_at < \\$2").
		WithArgs("processing", now.Add(-30*time.Minute)).
		WillReturnRows(sqlmock.NewRows(taskRowColumns))

	stuck, err := s.GetProcessingTasks(context.Background(), 30*time.Minute)
	require.NoError(t, err)
	assert.Empty(t, stuck)
}
