package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/phrazzld/grover/internal/domain"
	"github.com/phrazzld/grover/internal/generation"
	"github.com/phrazzld/grover/internal/markdown"
	"github.com/phrazzld/grover/internal/platform/logger"
	"github.com/phrazzld/grover/internal/prompts"
)

// Generation operation names, used in logs and usage history.
const (
	OpTitleOutline      = "title_outline"
	OpArticleContent    = "article_content"
	OpRefine            = "refine"
	OpFixFormat         = "fix_format"
	OpMeta              = "meta"
	OpCommunityRevision = "community_revision"
)

// TitleOutlineResult is a title and outline generation with its decoded
// fields. Title and Outline are empty when the outcome failed.
type TitleOutlineResult struct {
	*GenerationResult
	Title   string `json:"title"`
	Outline string `json:"outline"`
}

// MetaResult is a meta tag generation with its decoded fields.
type MetaResult struct {
	*GenerationResult
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
}

// ArticleService manages base articles and their generation.
//
// Generated drafts are returned to the caller and saved explicitly through
// SaveTitleOutline and SaveContent. FixFormat and GenerateMeta persist their
// result when the run succeeds.
type ArticleService interface {
	Create(ctx context.Context, projectID int64, outline string, length, sections int) (*domain.Article, error)
	Get(ctx context.Context, id int64) (*domain.Article, error)
	List(ctx context.Context, projectID int64) ([]*domain.Article, error)
	UpdateSettings(ctx context.Context, id int64, outline string, length, sections int) (*domain.Article, error)
	Delete(ctx context.Context, id int64) error
	SaveTitleOutline(ctx context.Context, id int64, title, outline string) error
	SaveContent(ctx context.Context, id int64, content string) error

	GenerateTitleOutline(ctx context.Context, id int64, opts GenerateOptions) (*TitleOutlineResult, error)
	GenerateContent(ctx context.Context, id int64, opts GenerateOptions) (*GenerationResult, error)

	// Refine rewrites content according to instructions. An empty content
	// refines the saved article body.
	Refine(ctx context.Context, id int64, content, instructions string, opts GenerateOptions) (*GenerationResult, error)

	FixFormat(ctx context.Context, id int64, opts GenerateOptions) (*GenerationResult, error)
	GenerateMeta(ctx context.Context, id int64, opts GenerateOptions) (*MetaResult, error)

	// RenderHTML renders the saved article body.
	RenderHTML(ctx context.Context, id int64) (string, error)
}

type articleServiceImpl struct {
	stores  Stores
	prompts *prompts.Catalog
	runner  *generationRunner
	logger  *slog.Logger
}

// NewArticleService creates an ArticleService.
// It returns an error if any of the required dependencies are nil.
func NewArticleService(stores Stores, deps GenerationDeps, l *slog.Logger) (ArticleService, error) {
	if stores.Articles == nil || stores.Projects == nil || stores.Keywords == nil {
		return nil, errors.New("article, project and keyword stores are required")
	}
	if deps.Prompts == nil {
		return nil, errors.New("prompts cannot be nil")
	}
	if l == nil {
		return nil, errors.New("logger cannot be nil")
	}
	runner, err := newGenerationRunner(deps.Controller, deps.Generators, deps.Settings)
	if err != nil {
		return nil, err
	}
	return &articleServiceImpl{
		stores:  stores,
		prompts: deps.Prompts,
		runner:  runner,
		logger:  l.With(slog.String("component", "article_service")),
	}, nil
}

func (s *articleServiceImpl) Create(
	ctx context.Context,
	projectID int64,
	outline string,
	length, sections int,
) (*domain.Article, error) {
	a, err := domain.NewArticle(projectID, outline, length, sections)
	if err != nil {
		return nil, err
	}
	if _, err := s.stores.Projects.GetByID(ctx, projectID); err != nil {
		return nil, wrap("article", "create", err)
	}
	id, err := s.stores.Articles.Save(ctx, a)
	if err != nil {
		return nil, wrap("article", "create", err)
	}
	a.ID = id
	logger.FromContextOrDefault(ctx, s.logger).Info("article created",
		slog.Int64("article_id", id),
		slog.Int64("project_id", projectID))
	return a, nil
}

func (s *articleServiceImpl) Get(ctx context.Context, id int64) (*domain.Article, error) {
	a, err := s.stores.Articles.GetByID(ctx, id)
	if err != nil {
		return nil, wrap("article", "get", err)
	}
	return a, nil
}

func (s *articleServiceImpl) List(ctx context.Context, projectID int64) ([]*domain.Article, error) {
	list, err := s.stores.Articles.ListByProject(ctx, projectID)
	if err != nil {
		return nil, wrap("article", "list", err)
	}
	return list, nil
}

func (s *articleServiceImpl) UpdateSettings(
	ctx context.Context,
	id int64,
	outline string,
	length, sections int,
) (*domain.Article, error) {
	if length < 0 {
		return nil, domain.ErrNegativeLength
	}
	if sections < 0 {
		return nil, domain.ErrNegativeSections
	}
	if err := s.stores.Articles.UpdateSettings(ctx, id, outline, length, sections); err != nil {
		return nil, wrap("article", "update_settings", err)
	}
	return s.Get(ctx, id)
}

func (s *articleServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.stores.Articles.Delete(ctx, id); err != nil {
		return wrap("article", "delete", err)
	}
	return nil
}

func (s *articleServiceImpl) SaveTitleOutline(ctx context.Context, id int64, title, outline string) error {
	if err := s.stores.Articles.UpdateTitleOutline(ctx, id, strings.TrimSpace(title), outline); err != nil {
		return wrap("article", "save_title_outline", err)
	}
	return nil
}

func (s *articleServiceImpl) SaveContent(ctx context.Context, id int64, content string) error {
	if err := s.stores.Articles.UpdateContent(ctx, id, content); err != nil {
		return wrap("article", "save_content", err)
	}
	return nil
}

func (s *articleServiceImpl) GenerateTitleOutline(
	ctx context.Context,
	id int64,
	opts GenerateOptions,
) (*TitleOutlineResult, error) {
	ac, err := loadArticleContext(ctx, s.stores, id)
	if err != nil {
		return nil, wrap("article", "generate_title_outline", err)
	}
	prompt, err := s.prompts.TitleOutline(ac.promptData())
	if err != nil {
		return nil, wrap("article", "generate_title_outline", err)
	}

	res, err := s.runner.run(ctx, opts, generation.Request{
		Name:        OpTitleOutline,
		Prompt:      prompt,
		Validators:  []generation.Validator{generation.RequiredFields("article_title", "article_outline")},
		MaxAttempts: s.runner.settings.MaxAttempts,
		Expand:      s.prompts.Expansion(prompt),
	})
	if err != nil {
		return nil, wrap("article", "generate_title_outline", err)
	}

	out := &TitleOutlineResult{GenerationResult: res}
	if res.Outcome.Succeeded {
		if obj, ok := generation.ParseObject(res.Outcome.Payload); ok {
			out.Title = generation.FieldString(obj, "article_title")
			out.Outline = generation.FieldString(obj, "article_outline")
		}
	}
	logOutcome(logger.FromContextOrDefault(ctx, s.logger), res, slog.Int64("article_id", id))
	return out, nil
}

func (s *articleServiceImpl) GenerateContent(
	ctx context.Context,
	id int64,
	opts GenerateOptions,
) (*GenerationResult, error) {
	ac, err := loadArticleContext(ctx, s.stores, id)
	if err != nil {
		return nil, wrap("article", "generate_content", err)
	}
	prompt, err := s.prompts.ArticleContent(ac.promptData())
	if err != nil {
		return nil, wrap("article", "generate_content", err)
	}

	validators := []generation.Validator{generation.NonEmpty()}
	if ac.article.Length > 0 {
		validators = append(validators, generation.MinWordCount(ac.article.Length))
	}
	validators = append(validators, generation.KeywordCoverage(ac.keywords...))

	res, err := s.runner.run(ctx, opts, generation.Request{
		Name:        OpArticleContent,
		Prompt:      prompt,
		Validators:  validators,
		MaxAttempts: s.runner.settings.MaxAttempts,
		Expand:      s.prompts.Expansion(prompt),
	})
	if err != nil {
		return nil, wrap("article", "generate_content", err)
	}
	logOutcome(logger.FromContextOrDefault(ctx, s.logger), res, slog.Int64("article_id", id))
	return res, nil
}

func (s *articleServiceImpl) Refine(
	ctx context.Context,
	id int64,
	content, instructions string,
	opts GenerateOptions,
) (*GenerationResult, error) {
	if strings.TrimSpace(instructions) == "" {
		return nil, ErrEmptyInstructions
	}
	if strings.TrimSpace(content) == "" {
		article, err := s.stores.Articles.GetByID(ctx, id)
		if err != nil {
			return nil, wrap("article", "refine", err)
		}
		content = article.Content
	}
	if strings.TrimSpace(content) == "" {
		return nil, domain.ErrEmptyContent
	}

	prompt, err := s.prompts.Refine(content, instructions)
	if err != nil {
		return nil, wrap("article", "refine", err)
	}
	res, err := s.runner.run(ctx, opts, generation.Request{
		Name:        OpRefine,
		Prompt:      prompt,
		Validators:  []generation.Validator{generation.NonEmpty()},
		MaxAttempts: s.runner.settings.MaxAttempts,
	})
	if err != nil {
		return nil, wrap("article", "refine", err)
	}
	logOutcome(logger.FromContextOrDefault(ctx, s.logger), res, slog.Int64("article_id", id))
	return res, nil
}

func (s *articleServiceImpl) FixFormat(
	ctx context.Context,
	id int64,
	opts GenerateOptions,
) (*GenerationResult, error) {
	article, err := s.stores.Articles.GetByID(ctx, id)
	if err != nil {
		return nil, wrap("article", "fix_format", err)
	}
	if strings.TrimSpace(article.Content) == "" {
		return nil, domain.ErrEmptyContent
	}

	prompt, err := s.prompts.FixFormat(article.Content)
	if err != nil {
		return nil, wrap("article", "fix_format", err)
	}
	res, err := s.runner.run(ctx, opts, generation.Request{
		Name:        OpFixFormat,
		Prompt:      prompt,
		Validators:  []generation.Validator{generation.NonEmpty()},
		MaxAttempts: s.runner.settings.MaxAttempts,
	})
	if err != nil {
		return nil, wrap("article", "fix_format", err)
	}
	if res.Outcome.Succeeded {
		if err := s.stores.Articles.UpdateContent(ctx, id, res.Outcome.Payload); err != nil {
			return nil, wrap("article", "fix_format", err)
		}
	}
	logOutcome(logger.FromContextOrDefault(ctx, s.logger), res, slog.Int64("article_id", id))
	return res, nil
}

func (s *articleServiceImpl) GenerateMeta(
	ctx context.Context,
	id int64,
	opts GenerateOptions,
) (*MetaResult, error) {
	ac, err := loadArticleContext(ctx, s.stores, id)
	if err != nil {
		return nil, wrap("article", "generate_meta", err)
	}
	if strings.TrimSpace(ac.article.Content) == "" {
		return nil, domain.ErrEmptyContent
	}
	prompt, err := s.prompts.Meta(ac.promptData())
	if err != nil {
		return nil, wrap("article", "generate_meta", err)
	}

	res, err := s.runner.run(ctx, opts, generation.Request{
		Name:        OpMeta,
		Prompt:      prompt,
		Validators:  []generation.Validator{generation.RequiredFields("meta_title", "meta_description")},
		MaxAttempts: s.runner.settings.MetaMaxAttempts,
		Expand:      s.prompts.Expansion(prompt),
	})
	if err != nil {
		return nil, wrap("article", "generate_meta", err)
	}

	out := &MetaResult{GenerationResult: res}
	if res.Outcome.Succeeded {
		if obj, ok := generation.ParseObject(res.Outcome.Payload); ok {
			out.MetaTitle = generation.FieldString(obj, "meta_title")
			out.MetaDescription = generation.FieldString(obj, "meta_description")
		}
		if err := s.stores.Articles.UpdateMeta(ctx, id, out.MetaTitle, out.MetaDescription); err != nil {
			return nil, wrap("article", "generate_meta", err)
		}
	}
	logOutcome(logger.FromContextOrDefault(ctx, s.logger), res, slog.Int64("article_id", id))
	return out, nil
}

func (s *articleServiceImpl) RenderHTML(ctx context.Context, id int64) (string, error) {
	article, err := s.stores.Articles.GetByID(ctx, id)
	if err != nil {
		return "", wrap("article", "render_html", err)
	}
	html, err := markdown.Render(article.Content)
	if err != nil {
		return "", wrap("article", "render_html", err)
	}
	return html, nil
}
