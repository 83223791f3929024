package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/phrazzld/grover/internal/domain"
	"github.com/phrazzld/grover/internal/keywords"
	"github.com/phrazzld/grover/internal/platform/logger"
	"github.com/phrazzld/grover/internal/store"
)

// KeywordResearcher looks up keyword metrics. *keywords.Client satisfies it.
type KeywordResearcher interface {
	Enabled() bool
	Research(ctx context.Context, phrase string) (*keywords.Research, error)
	Metrics(ctx context.Context, phrase string) (*keywords.Result, error)
}

// RefreshSummary reports the result of a metrics refresh.
type RefreshSummary struct {
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// KeywordService manages the keywords tracked by projects.
type KeywordService interface {
	List(ctx context.Context, projectID int64) ([]*domain.Keyword, error)

	// Add tracks phrase for the project. Metrics are attached when research
	// is enabled; a lookup failure does not prevent the keyword from being
	// saved.
	Add(ctx context.Context, projectID int64, phrase string, primary bool) (*domain.Keyword, error)

	Remove(ctx context.Context, id int64) error
	Research(ctx context.Context, phrase string) (*keywords.Research, error)

	// RefreshMetrics updates volume, difficulty and intent for every stored
	// keyword. Keywords without data are skipped.
	RefreshMetrics(ctx context.Context) (RefreshSummary, error)
}

type keywordServiceImpl struct {
	keywords   store.KeywordStore
	projects   store.ProjectStore
	researcher KeywordResearcher
	logger     *slog.Logger
}

// NewKeywordService creates a KeywordService.
// It returns an error if any of the required dependencies are nil.
func NewKeywordService(
	keywordStore store.KeywordStore,
	projects store.ProjectStore,
	researcher KeywordResearcher,
	l *slog.Logger,
) (KeywordService, error) {
	if keywordStore == nil {
		return nil, errors.New("keywords cannot be nil")
	}
	if projects == nil {
		return nil, errors.New("projects cannot be nil")
	}
	if researcher == nil {
		return nil, errors.New("researcher cannot be nil")
	}
	if l == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &keywordServiceImpl{
		keywords:   keywordStore,
		projects:   projects,
		researcher: researcher,
		logger:     l.With(slog.String("component", "keyword_service")),
	}, nil
}

func (s *keywordServiceImpl) List(ctx context.Context, projectID int64) ([]*domain.Keyword, error) {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, wrap("keyword", "list", err)
	}
	list, err := s.keywords.ListByProject(ctx, projectID)
	if err != nil {
		return nil, wrap("keyword", "list", err)
	}
	return list, nil
}

func (s *keywordServiceImpl) Add(
	ctx context.Context,
	projectID int64,
	phrase string,
	primary bool,
) (*domain.Keyword, error) {
	k, err := domain.NewKeyword(projectID, phrase)
	if err != nil {
		return nil, err
	}
	k.IsPrimary = primary

	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, wrap("keyword", "add", err)
	}

	if s.researcher.Enabled() {
		s.attachMetrics(ctx, k)
	}

	if err := s.keywords.Create(ctx, k); err != nil {
		return nil, wrap("keyword", "add", err)
	}
	return k, nil
}

func (s *keywordServiceImpl) attachMetrics(ctx context.Context, k *domain.Keyword) {
	m, err := s.researcher.Metrics(ctx, k.Keyword)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("keyword metrics lookup failed",
			slog.String("keyword", k.Keyword),
			slog.String("error", err.Error()))
		return
	}
	volume, difficulty := m.SearchVolume, m.Difficulty
	k.SearchVolume = &volume
	k.Difficulty = &difficulty
	k.SearchIntent = m.Intent
}

func (s *keywordServiceImpl) Remove(ctx context.Context, id int64) error {
	if err := s.keywords.Delete(ctx, id); err != nil {
		return wrap("keyword", "remove", err)
	}
	return nil
}

func (s *keywordServiceImpl) Research(ctx context.Context, phrase string) (*keywords.Research, error) {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return nil, domain.ErrEmptyKeyword
	}
	if !s.researcher.Enabled() {
		return nil, keywords.ErrNotConfigured
	}
	res, err := s.researcher.Research(ctx, phrase)
	if err != nil {
		return nil, wrap("keyword", "research", err)
	}
	return res, nil
}

func (s *keywordServiceImpl) RefreshMetrics(ctx context.Context) (RefreshSummary, error) {
	var summary RefreshSummary
	if !s.researcher.Enabled() {
		return summary, keywords.ErrNotConfigured
	}

	log := logger.FromContextOrDefault(ctx, s.logger)
	all, err := s.keywords.ListAll(ctx)
	if err != nil {
		return summary, wrap("keyword", "refresh_metrics", err)
	}

	for _, k := range all {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		m, err := s.researcher.Metrics(ctx, k.Keyword)
		if errors.Is(err, keywords.ErrNoData) {
			summary.Skipped++
			continue
		}
		if err != nil {
			summary.Failed++
			log.Warn("keyword metrics lookup failed",
				slog.Int64("keyword_id", k.ID),
				slog.String("error", err.Error()))
			continue
		}
		volume, difficulty := m.SearchVolume, m.Difficulty
		metrics := store.KeywordMetrics{
			SearchVolume: &volume,
			Difficulty:   &difficulty,
			SearchIntent: m.Intent,
		}
		if err := s.keywords.UpdateMetrics(ctx, k.ID, metrics); err != nil {
			if store.IsNotFoundError(err) {
				summary.Skipped++
				continue
			}
			return summary, wrap("keyword", "refresh_metrics", err)
		}
		summary.Updated++
	}

	log.Info("keyword metrics refreshed",
		slog.Int("updated", summary.Updated),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed))
	return summary, nil
}
