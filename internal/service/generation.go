package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/grover/internal/domain"
	"github.com/phrazzld/grover/internal/generation"
	"github.com/phrazzld/grover/internal/prompts"
	"github.com/phrazzld/grover/internal/store"
	"github.com/phrazzld/grover/internal/usage"
)

// GeneratorSource resolves the backend for a model name. An empty name
// selects the configured default.
type GeneratorSource interface {
	Generator(model string) (generation.Generator, error)
}

// GenerateOptions are per-call generation settings chosen by the caller,
// usually from the session.
type GenerateOptions struct {
	Model string
}

// GenerationResult is the outcome of one generation run with its priced
// usage history.
type GenerationResult struct {
	Operation string             `json:"operation"`
	Outcome   generation.Outcome `json:"outcome"`
	Usage     []usage.Entry      `json:"usage"`
	Cost      usage.Costs        `json:"cost"`
}

// GenerationSettings configures the generation helper shared by the article
// and community services.
type GenerationSettings struct {
	MaxAttempts     int
	MetaMaxAttempts int
	Pricing         usage.Pricing
}

type generationRunner struct {
	controller *generation.Controller
	generators GeneratorSource
	settings   GenerationSettings
	now        func() time.Time
}

func newGenerationRunner(
	controller *generation.Controller,
	generators GeneratorSource,
	settings GenerationSettings,
) (*generationRunner, error) {
	if controller == nil {
		return nil, errors.New("controller cannot be nil")
	}
	if generators == nil {
		return nil, errors.New("generators cannot be nil")
	}
	if settings.MaxAttempts < 1 {
		settings.MaxAttempts = 1
	}
	if settings.MetaMaxAttempts < 1 {
		settings.MetaMaxAttempts = settings.MaxAttempts
	}
	return &generationRunner{
		controller: controller,
		generators: generators,
		settings:   settings,
		now:        time.Now,
	}, nil
}

func (g *generationRunner) run(
	ctx context.Context,
	opts GenerateOptions,
	req generation.Request,
) (*GenerationResult, error) {
	gen, err := g.generators.Generator(opts.Model)
	if err != nil {
		return nil, err
	}
	outcome := g.controller.Run(ctx, req, gen)
	return &GenerationResult{
		Operation: req.Name,
		Outcome:   outcome,
		Usage:     usage.EntriesFromOutcome(req.Name, outcome, g.settings.Pricing, g.now()),
		Cost:      g.settings.Pricing.Cost(outcome.Usage),
	}, nil
}

// GenerationDeps are the collaborators shared by the services that run the
// generation loop.
type GenerationDeps struct {
	Controller *generation.Controller
	Generators GeneratorSource
	Prompts    *prompts.Catalog
	Settings   GenerationSettings
}

// Stores bundles the stores used by the article and community services.
type Stores struct {
	Projects          store.ProjectStore
	Keywords          store.KeywordStore
	Articles          store.ArticleStore
	CommunityArticles store.CommunityArticleStore
}

// articleContext is everything an article prompt is rendered from.
type articleContext struct {
	article  *domain.Article
	project  *domain.Project
	keywords []string
}

func (c articleContext) promptData() prompts.ArticleData {
	return prompts.ArticleData{Project: c.project, Article: c.article, Keywords: c.keywords}
}

func loadArticleContext(ctx context.Context, stores Stores, articleID int64) (*articleContext, error) {
	article, err := stores.Articles.GetByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	project, err := stores.Projects.GetByID(ctx, article.ProjectID)
	if err != nil {
		return nil, err
	}
	kws, err := stores.Keywords.ListByProject(ctx, article.ProjectID)
	if err != nil {
		return nil, err
	}
	return &articleContext{article: article, project: project, keywords: domain.Phrases(kws)}, nil
}

func logOutcome(log *slog.Logger, res *GenerationResult, attrs ...any) {
	attrs = append(attrs,
		slog.String("operation", res.Operation),
		slog.Bool("succeeded", res.Outcome.Succeeded),
		slog.Int("attempts_used", res.Outcome.AttemptsUsed),
		slog.Int64("tokens", res.Outcome.Usage.TotalTokens()),
	)
	if res.Outcome.Succeeded {
		log.Info("generation completed", attrs...)
		return
	}
	log.Warn("generation did not satisfy validators",
		append(attrs, slog.String("failure_reason", res.Outcome.FailureReason()))...)
}
