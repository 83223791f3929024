package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/phrazzld/grover/internal/community"
	"github.com/phrazzld/grover/internal/config"
	"github.com/phrazzld/grover/internal/domain"
	"github.com/phrazzld/grover/internal/generation"
	"github.com/phrazzld/grover/internal/jobs"
	"github.com/phrazzld/grover/internal/keywords"
	"github.com/phrazzld/grover/internal/platform/postgres"
	"github.com/phrazzld/grover/internal/prompts"
	"github.com/phrazzld/grover/internal/redact"
	"github.com/phrazzld/grover/internal/service"
	"github.com/phrazzld/grover/internal/session"
	"github.com/phrazzld/grover/internal/task"
	"github.com/phrazzld/grover/internal/usage"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *redis.Client

	sessions       *session.RedisStore
	sessionHandler *session.Middleware

	projectService   service.ProjectService
	keywordService   service.KeywordService
	articleService   service.ArticleService
	communityService service.CommunityService

	taskRunner *task.TaskRunner
	scheduler  *jobs.Scheduler
}

// generationSettings converts the configuration into service settings.
func generationSettings(cfg *config.Config) service.GenerationSettings {
	return service.GenerationSettings{
		MaxAttempts:     cfg.Generation.MaxAttempts,
		MetaMaxAttempts: cfg.Generation.MetaMaxAttempts,
		Pricing: usage.Pricing{
			InputPerMillion:  cfg.LLM.InputCostPerMillion,
			OutputPerMillion: cfg.LLM.OutputCostPerMillion,
		},
	}
}

// newApplication wires stores, clients, services and background workers.
// The database connection must already be open and migrated.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	stores := service.Stores{
		Projects:          postgres.NewPostgresProjectStore(db, logger),
		Keywords:          postgres.NewPostgresKeywordStore(db, logger),
		Articles:          postgres.NewPostgresArticleStore(db, logger),
		CommunityArticles: postgres.NewPostgresCommunityArticleStore(db, logger),
	}
	taskStore := postgres.NewPostgresTaskStore(db, logger)

	generators, err := newGeneratorSource(cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
	}
	logger.Info("LLM generator initialized",
		slog.String("provider", cfg.LLM.Provider),
		slog.String("model", cfg.LLM.ModelName))

	deps := service.GenerationDeps{
		Controller: generation.NewController(logger),
		Generators: generators,
		Prompts:    prompts.Default(),
		Settings:   generationSettings(cfg),
	}

	app.projectService, err = service.NewProjectService(db, stores.Projects, stores.Keywords, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create project service: %w", err)
	}

	researcher := keywords.NewClient(keywords.Config{
		APIKey:            cfg.Keywords.SemrushAPIKey,
		BaseURL:           cfg.Keywords.BaseURL,
		Database:          cfg.Keywords.Database,
		DisplayLimit:      cfg.Keywords.DisplayLimit,
		RequestsPerSecond: 5,
	}, logger)
	app.keywordService, err = service.NewKeywordService(stores.Keywords, stores.Projects, researcher, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create keyword service: %w", err)
	}

	app.articleService, err = service.NewArticleService(stores, deps, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create article service: %w", err)
	}

	// The task factory needs the community service and the service needs the
	// factory; the closure resolves the service once it exists.
	var communities service.CommunityService
	factory := task.NewCommunityRevisionTaskFactory(task.CommunityReviserFunc(
		func(ctx context.Context, articleID, communityID int64) (*domain.CommunityArticle, error) {
			return communities.ReviseAndSave(ctx, articleID, communityID)
		}), logger)

	registry := task.NewRegistry()
	factory.Register(registry)
	app.taskRunner = task.NewTaskRunner(taskStore, registry, task.TaskRunnerConfig{
		WorkerCount:  cfg.Tasks.WorkerCount,
		QueueSize:    cfg.Tasks.QueueSize,
		StuckTaskAge: time.Duration(cfg.Tasks.StuckTaskAgeMinutes) * time.Minute,
	}, logger)

	directory := community.NewClient(cfg.Community.BaseURL,
		time.Duration(cfg.Community.TimeoutSeconds)*time.Second, logger)
	communities, err = service.NewCommunityService(stores, directory, deps, app.taskRunner, factory, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create community service: %w", err)
	}
	app.communityService = communities

	if err := app.setupSessions(ctx); err != nil {
		return nil, err
	}

	app.scheduler = jobs.NewScheduler(logger)
	if _, err := jobs.RegisterKeywordRefresh(app.scheduler, cfg.Keywords, app.keywordService); err != nil {
		return nil, fmt.Errorf("failed to schedule keyword refresh: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

func (app *application) setupSessions(ctx context.Context) error {
	cfg := app.config.Session

	client, err := session.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.redis = client

	tokens, err := session.NewTokens(cfg.Secret, cfg.TTL())
	if err != nil {
		return fmt.Errorf("failed to create session tokens: %w", err)
	}

	app.sessions = session.NewRedisStore(client, cfg.TTL(), app.logger)
	app.sessionHandler = session.NewMiddleware(app.sessions, tokens, cfg.CookieName, cfg.TTL(), app.logger)
	return nil
}

// startBackground starts the task runner and the scheduled jobs.
func (app *application) startBackground() error {
	app.taskRunner.SetErrorHandler(func(t task.Task, err error) {
		app.logger.Error("background task failed",
			slog.String("task_id", t.ID().String()),
			slog.String("task_type", t.Type()),
			slog.String("error", redact.Error(err)))
	})
	if err := app.taskRunner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}
	app.scheduler.Start()
	return nil
}

// Run serves HTTP until ctx is cancelled, then shuts down.
func (app *application) Run(ctx context.Context) error {
	if err := app.startBackground(); err != nil {
		return err
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup(ctx context.Context) {
	if app.scheduler != nil {
		if err := app.scheduler.Stop(ctx); err != nil {
			app.logger.Warn("scheduled jobs did not stop in time", slog.String("error", err.Error()))
		}
	}

	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("Error closing redis connection", slog.String("error", redact.Error(err)))
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", slog.String("error", redact.Error(err)))
		}
	}

	app.logger.Info("Application shutdown completed")
}
