package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/grover/internal/domain"
)

// CommunityReviser rewrites a base article for a community and stores the
// result as that pair's community article.
type CommunityReviser interface {
	ReviseAndSave(ctx context.Context, articleID, communityID int64) (*domain.CommunityArticle, error)
}

// CommunityReviserFunc adapts a function to CommunityReviser. It lets the
// factory be built before the service that performs the revision.
type CommunityReviserFunc func(ctx context.Context, articleID, communityID int64) (*domain.CommunityArticle, error)

// ReviseAndSave calls f.
func (f CommunityReviserFunc) ReviseAndSave(
	ctx context.Context,
	articleID, communityID int64,
) (*domain.CommunityArticle, error) {
	return f(ctx, articleID, communityID)
}

// CommunityRevisionPayload is the stored payload of a community revision task.
type CommunityRevisionPayload struct {
	ArticleID   int64 `json:"article_id"`
	CommunityID int64 `json:"community_id"`
}

// CommunityRevisionTask revises one base article for one community.
type CommunityRevisionTask struct {
	id      uuid.UUID
	payload CommunityRevisionPayload
	reviser CommunityReviser
	logger  *slog.Logger
}

var _ Task = (*CommunityRevisionTask)(nil)

// ID returns the task's unique identifier
func (t *CommunityRevisionTask) ID() uuid.UUID { return t.id }

// Type returns the task type identifier
func (t *CommunityRevisionTask) Type() string { return TaskTypeCommunityRevision }

// Payload returns the task data as JSON
func (t *CommunityRevisionTask) Payload() []byte {
	b, err := json.Marshal(t.payload)
	if err != nil {
		// Two int64 fields always marshal.
		panic(err)
	}
	return b
}

// Execute runs the revision and saves the community article.
func (t *CommunityRevisionTask) Execute(ctx context.Context) error {
	log := t.logger.With(
		slog.String("task_id", t.id.String()),
		slog.Int64("article_id", t.payload.ArticleID),
		slog.Int64("community_id", t.payload.CommunityID))

	saved, err := t.reviser.ReviseAndSave(ctx, t.payload.ArticleID, t.payload.CommunityID)
	if err != nil {
		return fmt.Errorf("community revision failed: %w", err)
	}

	log.Info("community article saved", slog.Int64("community_article_id", saved.ID))
	return nil
}

// CommunityRevisionTaskFactory creates community revision tasks, both new
// ones and ones rebuilt from stored records.
type CommunityRevisionTaskFactory struct {
	reviser CommunityReviser
	logger  *slog.Logger
}

// NewCommunityRevisionTaskFactory creates a new factory.
func NewCommunityRevisionTaskFactory(reviser CommunityReviser, logger *slog.Logger) *CommunityRevisionTaskFactory {
	if reviser == nil {
		panic("reviser cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CommunityRevisionTaskFactory{
		reviser: reviser,
		logger:  logger.With(slog.String("component", "community_revision_task")),
	}
}

// CreateTask creates a new task for the pair.
func (f *CommunityRevisionTaskFactory) CreateTask(articleID, communityID int64) (Task, error) {
	if articleID <= 0 {
		return nil, domain.ErrInvalidArticleRef
	}
	if communityID <= 0 {
		return nil, domain.ErrInvalidCommunityID
	}
	return &CommunityRevisionTask{
		id:      uuid.New(),
		payload: CommunityRevisionPayload{ArticleID: articleID, CommunityID: communityID},
		reviser: f.reviser,
		logger:  f.logger,
	}, nil
}

// Build rebuilds a task from its stored record. It satisfies Factory.
func (f *CommunityRevisionTaskFactory) Build(rec Record) (Task, error) {
	if rec.Type != TaskTypeCommunityRevision {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTaskType, rec.Type)
	}
	var p CommunityRevisionPayload
	if err := json.Unmarshal(rec.Payload, &p); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}
	if p.ArticleID <= 0 || p.CommunityID <= 0 {
		return nil, errors.New("invalid payload: article_id and community_id are required")
	}
	return &CommunityRevisionTask{
		id:      rec.ID,
		payload: p,
		reviser: f.reviser,
		logger:  f.logger,
	}, nil
}

// Register adds the factory to r.
func (f *CommunityRevisionTaskFactory) Register(r *Registry) {
	r.Register(TaskTypeCommunityRevision, f.Build)
}
