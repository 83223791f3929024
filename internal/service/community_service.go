package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/grover/internal/community"
	"github.com/phrazzld/grover/internal/domain"
	"github.com/phrazzld/grover/internal/generation"
	"github.com/phrazzld/grover/internal/markdown"
	"github.com/phrazzld/grover/internal/platform/logger"
	"github.com/phrazzld/grover/internal/prompts"
	"github.com/phrazzld/grover/internal/task"
)

// ErrRevisionFailed is returned by ReviseAndSave when the generation produced
// nothing to save.
var ErrRevisionFailed = errors.New("community revision produced no content")

// CommunityDirectory reads the community database. *community.Client
// satisfies it.
type CommunityDirectory interface {
	Communities(ctx context.Context) ([]community.Community, error)
	Details(ctx context.Context, communityID int64, selected []string) (*community.Details, error)
}

// TaskRunner defines the interface for submitting background tasks
type TaskRunner interface {
	// Submit adds a task to the processing queue
	Submit(ctx context.Context, task task.Task) error
}

// CommunityRevisionTaskFactory creates community revision tasks.
type CommunityRevisionTaskFactory interface {
	CreateTask(articleID, communityID int64) (task.Task, error)
}

// RevisionResult is a community revision with the community it targeted.
type RevisionResult struct {
	*GenerationResult
	CommunityID   int64  `json:"community_id"`
	CommunityName string `json:"community_name"`
}

// CommunityService tailors base articles to individual communities.
type CommunityService interface {
	ListCommunities(ctx context.Context) ([]community.Community, error)

	// GetCommunityDetails assembles a community with the given care areas.
	// An empty list includes every care area the community offers.
	GetCommunityDetails(ctx context.Context, communityID int64, careAreas []string) (*community.Details, error)

	// Revise generates a community-specific version of a base article. It
	// returns ErrCareAreaMismatch when the community lacks one of the
	// project's care areas.
	Revise(ctx context.Context, articleID, communityID int64, opts GenerateOptions) (*RevisionResult, error)

	// ReviseAndSave revises with the default model and stores the result as
	// the community article of the pair, creating or replacing it.
	ReviseAndSave(ctx context.Context, articleID, communityID int64) (*domain.CommunityArticle, error)

	// SubmitBatchRevision enqueues one ReviseAndSave task per community and
	// returns the task ids in submission order.
	SubmitBatchRevision(ctx context.Context, articleID int64, communityIDs []int64) ([]uuid.UUID, error)

	ListCommunityArticles(ctx context.Context, articleID int64) ([]*domain.CommunityArticle, error)
	CreateCommunityArticle(ctx context.Context, articleID, communityID int64, title, content string) (*domain.CommunityArticle, error)
	GetCommunityArticle(ctx context.Context, id int64) (*domain.CommunityArticle, error)
	UpdateCommunityArticle(ctx context.Context, article *domain.CommunityArticle) error
	DeleteCommunityArticle(ctx context.Context, id int64) error
}

type communityServiceImpl struct {
	stores    Stores
	directory CommunityDirectory
	prompts   *prompts.Catalog
	runner    *generationRunner
	tasks     TaskRunner
	factory   CommunityRevisionTaskFactory
	logger    *slog.Logger
}

// NewCommunityService creates a CommunityService. tasks and factory may both
// be nil, in which case SubmitBatchRevision returns ErrBatchUnavailable.
func NewCommunityService(
	stores Stores,
	directory CommunityDirectory,
	deps GenerationDeps,
	tasks TaskRunner,
	factory CommunityRevisionTaskFactory,
	l *slog.Logger,
) (CommunityService, error) {
	if stores.Articles == nil || stores.Projects == nil || stores.Keywords == nil || stores.CommunityArticles == nil {
		return nil, errors.New("article, project, keyword and community article stores are required")
	}
	if directory == nil {
		return nil, errors.New("directory cannot be nil")
	}
	if deps.Prompts == nil {
		return nil, errors.New("prompts cannot be nil")
	}
	if (tasks == nil) != (factory == nil) {
		return nil, errors.New("tasks and factory must be set together")
	}
	if l == nil {
		return nil, errors.New("logger cannot be nil")
	}
	runner, err := newGenerationRunner(deps.Controller, deps.Generators, deps.Settings)
	if err != nil {
		return nil, err
	}
	return &communityServiceImpl{
		stores:    stores,
		directory: directory,
		prompts:   deps.Prompts,
		runner:    runner,
		tasks:     tasks,
		factory:   factory,
		logger:    l.With(slog.String("component", "community_service")),
	}, nil
}

func (s *communityServiceImpl) ListCommunities(ctx context.Context) ([]community.Community, error) {
	list, err := s.directory.Communities(ctx)
	if err != nil {
		return nil, wrap("community", "list_communities", err)
	}
	return list, nil
}

func (s *communityServiceImpl) GetCommunityDetails(
	ctx context.Context,
	communityID int64,
	careAreas []string,
) (*community.Details, error) {
	if communityID <= 0 {
		return nil, domain.ErrInvalidCommunityID
	}
	d, err := s.directory.Details(ctx, communityID, careAreas)
	if err != nil {
		return nil, wrap("community", "get_details", err)
	}
	return d, nil
}

func (s *communityServiceImpl) Revise(
	ctx context.Context,
	articleID, communityID int64,
	opts GenerateOptions,
) (*RevisionResult, error) {
	if communityID <= 0 {
		return nil, domain.ErrInvalidCommunityID
	}
	ac, err := loadArticleContext(ctx, s.stores, articleID)
	if err != nil {
		return nil, wrap("community", "revise", err)
	}
	if strings.TrimSpace(ac.article.Content) == "" {
		return nil, domain.ErrEmptyContent
	}

	details, err := s.directory.Details(ctx, communityID, ac.project.CareAreas)
	if err != nil {
		return nil, wrap("community", "revise", err)
	}
	if len(details.Missing) > 0 {
		return nil, fmt.Errorf("%w: %s does not offer %s",
			ErrCareAreaMismatch, details.Community.Name, strings.Join(details.Missing, ", "))
	}

	prompt, err := s.prompts.CommunityRevision(prompts.CommunityRevisionData{
		ArticleData:      ac.promptData(),
		CommunityDetails: details.Text(),
	})
	if err != nil {
		return nil, wrap("community", "revise", err)
	}

	res, err := s.runner.run(ctx, opts, generation.Request{
		Name:   OpCommunityRevision,
		Prompt: prompt,
		Validators: []generation.Validator{
			generation.NonEmpty(),
			generation.KeywordCoverage(details.Community.Name),
		},
		MaxAttempts: s.runner.settings.MaxAttempts,
		Expand:      s.prompts.Expansion(prompt),
	})
	if err != nil {
		return nil, wrap("community", "revise", err)
	}

	logOutcome(logger.FromContextOrDefault(ctx, s.logger), res,
		slog.Int64("article_id", articleID),
		slog.Int64("community_id", communityID))
	return &RevisionResult{
		GenerationResult: res,
		CommunityID:      communityID,
		CommunityName:    details.Community.Name,
	}, nil
}

func (s *communityServiceImpl) ReviseAndSave(
	ctx context.Context,
	articleID, communityID int64,
) (*domain.CommunityArticle, error) {
	res, err := s.Revise(ctx, articleID, communityID, GenerateOptions{})
	if err != nil {
		return nil, err
	}
	payload := strings.TrimSpace(res.Outcome.Payload)
	if payload == "" {
		return nil, fmt.Errorf("%w: %s", ErrRevisionFailed, res.Outcome.FailureReason())
	}

	base, err := s.stores.Articles.GetByID(ctx, articleID)
	if err != nil {
		return nil, wrap("community", "revise_and_save", err)
	}
	title := markdown.Title(payload)
	if title == "" {
		title = base.Title
	}
	ca, err := domain.NewCommunityArticle(base, communityID, title, payload)
	if err != nil {
		return nil, err
	}
	if err := s.stores.CommunityArticles.Upsert(ctx, ca); err != nil {
		return nil, wrap("community", "revise_and_save", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("community article saved",
		slog.Int64("community_article_id", ca.ID),
		slog.Int64("article_id", articleID),
		slog.Int64("community_id", communityID),
		slog.Bool("validated", res.Outcome.Succeeded))
	return ca, nil
}

func (s *communityServiceImpl) SubmitBatchRevision(
	ctx context.Context,
	articleID int64,
	communityIDs []int64,
) ([]uuid.UUID, error) {
	if s.tasks == nil {
		return nil, ErrBatchUnavailable
	}
	ids := dedupeIDs(communityIDs)
	if len(ids) == 0 {
		return nil, ErrNoCommunities
	}
	for _, id := range ids {
		if id <= 0 {
			return nil, domain.ErrInvalidCommunityID
		}
	}
	if _, err := s.stores.Articles.GetByID(ctx, articleID); err != nil {
		return nil, wrap("community", "submit_batch_revision", err)
	}

	log := logger.FromContextOrDefault(ctx, s.logger)
	taskIDs := make([]uuid.UUID, 0, len(ids))
	for _, communityID := range ids {
		t, err := s.factory.CreateTask(articleID, communityID)
		if err != nil {
			return taskIDs, wrap("community", "submit_batch_revision", err)
		}
		if err := s.tasks.Submit(ctx, t); err != nil {
			return taskIDs, wrap("community", "submit_batch_revision", err)
		}
		taskIDs = append(taskIDs, t.ID())
	}

	log.Info("batch community revision submitted",
		slog.Int64("article_id", articleID),
		slog.Int("tasks", len(taskIDs)))
	return taskIDs, nil
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *communityServiceImpl) ListCommunityArticles(
	ctx context.Context,
	articleID int64,
) ([]*domain.CommunityArticle, error) {
	list, err := s.stores.CommunityArticles.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, wrap("community", "list_articles", err)
	}
	return list, nil
}

func (s *communityServiceImpl) CreateCommunityArticle(
	ctx context.Context,
	articleID, communityID int64,
	title, content string,
) (*domain.CommunityArticle, error) {
	base, err := s.stores.Articles.GetByID(ctx, articleID)
	if err != nil {
		return nil, wrap("community", "create_article", err)
	}
	ca, err := domain.NewCommunityArticle(base, communityID, title, content)
	if err != nil {
		return nil, err
	}
	if err := s.stores.CommunityArticles.Create(ctx, ca); err != nil {
		return nil, wrap("community", "create_article", err)
	}
	return ca, nil
}

func (s *communityServiceImpl) GetCommunityArticle(ctx context.Context, id int64) (*domain.CommunityArticle, error) {
	ca, err := s.stores.CommunityArticles.GetByID(ctx, id)
	if err != nil {
		return nil, wrap("community", "get_article", err)
	}
	return ca, nil
}

func (s *communityServiceImpl) UpdateCommunityArticle(ctx context.Context, article *domain.CommunityArticle) error {
	if err := article.Validate(); err != nil {
		return err
	}
	if err := s.stores.CommunityArticles.Update(ctx, article); err != nil {
		return wrap("community", "update_article", err)
	}
	return nil
}

func (s *communityServiceImpl) DeleteCommunityArticle(ctx context.Context, id int64) error {
	if err := s.stores.CommunityArticles.Delete(ctx, id); err != nil {
		return wrap("community", "delete_article", err)
	}
	return nil
}
