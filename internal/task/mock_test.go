package task

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

const mockTaskType = "mock_task"

// mockTask is a Task whose behavior is set per test.
type mockTask struct {
	id        uuid.UUID
	payload   []byte
	executeFn func(ctx context.Context) error
}

func newMockTask(message string) *mockTask {
	data, _ := json.Marshal(map[string]string{"message": message})
	return &mockTask{
		id:        uuid.New(),
		payload:   data,
		executeFn: func(ctx context.Context) error { return nil },
	}
}

func (t *mockTask) ID() uuid.UUID                     { return t.id }
func (t *mockTask) Type() string                      { return mockTaskType }
func (t *mockTask) Payload() []byte                   { return t.payload }
func (t *mockTask) Execute(ctx context.Context) error { return t.executeFn(ctx) }

// mockTaskStore is an in-memory TaskStore.
type mockTaskStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Record
	now     func() time.Time

	saveErr error
}

func newMockTaskStore() *mockTaskStore {
	return &mockTaskStore{
		records: make(map[uuid.UUID]*Record),
		now:     time.Now,
	}
}

func (s *mockTaskStore) SaveTask(ctx context.Context, t Task) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.records[t.ID()] = &Record{
		ID:        t.ID(),
		Type:      t.Type(),
		Payload:   t.Payload(),
		Status:    TaskStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

func (s *mockTaskStore) UpdateTaskStatus(ctx context.Context, id uuid.UUID, status TaskStatus, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil
	}
	rec.Status = status
	rec.Error = errorMsg
	rec.UpdatedAt = s.now()
	return nil
}

func (s *mockTaskStore) GetTask(ctx context.Context, id uuid.UUID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, errMockNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *mockTaskStore) GetPendingTasks(ctx context.Context) ([]Record, error) {
	return s.byStatus(TaskStatusPending, 0), nil
}

func (s *mockTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Record, error) {
	return s.byStatus(TaskStatusProcessing, olderThan), nil
}

func (s *mockTaskStore) byStatus(status TaskStatus, olderThan time.Duration) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Record
	for _, rec := range s.records {
		if rec.Status != status {
			continue
		}
		if olderThan > 0 && s.now().Sub(rec.UpdatedAt) <= olderThan {
			continue
		}
		out = append(out, *rec)
	}
	return out
}

// put stores rec as is.
func (s *mockTaskStore) put(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = &rec
}

func (s *mockTaskStore) status(id uuid.UUID) TaskStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.records[id]; ok {
		return rec.Status
	}
	return ""
}

type mockError string

func (e mockError) Error() string { return string(e) }

const errMockNotFound = mockError("task not found")
