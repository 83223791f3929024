package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/grover/internal/domain"
	"github.com/phrazzld/grover/internal/platform/logger"
	"github.com/phrazzld/grover/internal/store"
)

// PostgresArticleStore implements store.ArticleStore on the base_articles table.
type PostgresArticleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresArticleStore creates an article store on db.
func NewPostgresArticleStore(db store.DBTX, logger *slog.Logger) *PostgresArticleStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresArticleStore{
		db:     db,
		logger: logger.With(slog.String("component", "article_store")),
	}
}

var _ store.ArticleStore = (*PostgresArticleStore)(nil)

const articleColumns = `id, project_id, outline, length, sections, title, content,
	meta_title, meta_description, created_at, updated_at`

// Save implements store.ArticleStore.
func (s *PostgresArticleStore) Save(ctx context.Context, article *domain.Article) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := article.Validate(); err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	article.UpdatedAt = now

	if article.ID == 0 {
		if article.CreatedAt.IsZero() {
			article.CreatedAt = now
		}
		query := `
			INSERT INTO base_articles (project_id, outline, length, sections, title, content,
				meta_title, meta_description, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id
		`
		err := s.db.QueryRowContext(ctx, query,
			article.ProjectID, article.Outline, article.Length, article.Sections, article.Title,
			article.Content, article.MetaTitle, article.MetaDescription, article.CreatedAt, article.UpdatedAt,
		).Scan(&article.ID)
		if err != nil {
			if IsForeignKeyViolation(err) {
				return 0, fmt.Errorf("%w: project %d", store.ErrProjectNotFound, article.ProjectID)
			}
			log.Error("failed to insert article",
				slog.String("error", err.Error()),
				slog.Int64("project_id", article.ProjectID))
			return 0, MapError(err)
		}
		log.Info("article created",
			slog.Int64("article_id", article.ID),
			slog.Int64("project_id", article.ProjectID))
		return article.ID, nil
	}

	query := `
		UPDATE base_articles
		SET outline = $1, length = $2, sections = $3, title = $4, content = $5,
			meta_title = $6, meta_description = $7, updated_at = $8
		WHERE id = $9
	`
	result, err := s.db.ExecContext(ctx, query,
		article.Outline, article.Length, article.Sections, article.Title, article.Content,
		article.MetaTitle, article.MetaDescription, article.UpdatedAt, article.ID,
	)
	if err != nil {
		log.Error("failed to update article",
			slog.String("error", err.Error()),
			slog.Int64("article_id", article.ID))
		return 0, MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrArticleNotFound); err != nil {
		return 0, err
	}
	return article.ID, nil
}

// GetByID implements store.ArticleStore.
func (s *PostgresArticleStore) GetByID(ctx context.Context, id int64) (*domain.Article, error) {
	var a domain.Article
	err := s.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM base_articles WHERE id = $1`, id,
	).Scan(&a.ID, &a.ProjectID, &a.Outline, &a.Length, &a.Sections, &a.Title, &a.Content,
		&a.MetaTitle, &a.MetaDescription, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, mapEntityError(err, store.ErrArticleNotFound, nil)
	}
	return &a, nil
}

// ListByProject implements store.ArticleStore.
func (s *PostgresArticleStore) ListByProject(ctx context.Context, projectID int64) ([]*domain.Article, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+articleColumns+` FROM base_articles WHERE project_id = $1 ORDER BY created_at DESC, id DESC`,
		projectID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list articles",
			slog.String("error", err.Error()),
			slog.Int64("project_id", projectID))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	articles := []*domain.Article{}
	for rows.Next() {
		var a domain.Article
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.Outline, &a.Length, &a.Sections, &a.Title,
			&a.Content, &a.MetaTitle, &a.MetaDescription, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}
	return articles, nil
}

// UpdateSettings implements store.ArticleStore.
func (s *PostgresArticleStore) UpdateSettings(ctx context.Context, id int64, outline string, length, sections int) error {
	if length < 0 {
		return domain.ErrNegativeLength
	}
	if sections < 0 {
		return domain.ErrNegativeSections
	}
	return s.update(ctx, id, "settings",
		`UPDATE base_articles SET outline = $1, length = $2, sections = $3, updated_at = $4 WHERE id = $5`,
		outline, length, sections, time.Now().UTC(), id)
}

// UpdateTitleOutline implements store.ArticleStore.
func (s *PostgresArticleStore) UpdateTitleOutline(ctx context.Context, id int64, title, outline string) error {
	return s.update(ctx, id, "title_outline",
		`UPDATE base_articles SET title = $1, outline = $2, updated_at = $3 WHERE id = $4`,
		title, outline, time.Now().UTC(), id)
}

// UpdateContent implements store.ArticleStore.
func (s *PostgresArticleStore) UpdateContent(ctx context.Context, id int64, content string) error {
	return s.update(ctx, id, "content",
		`UPDATE base_articles SET content = $1, updated_at = $2 WHERE id = $3`,
		content, time.Now().UTC(), id)
}

// UpdateMeta implements store.ArticleStore.
func (s *PostgresArticleStore) UpdateMeta(ctx context.Context, id int64, metaTitle, metaDescription string) error {
	return s.update(ctx, id, "meta",
		`UPDATE base_articles SET meta_title = $1, meta_description = $2, updated_at = $3 WHERE id = $4`,
		metaTitle, metaDescription, time.Now().UTC(), id)
}

// Delete implements store.ArticleStore.
func (s *PostgresArticleStore) Delete(ctx context.Context, id int64) error {
	return s.update(ctx, id, "delete", `DELETE FROM base_articles WHERE id = $1`, id)
}

func (s *PostgresArticleStore) update(ctx context.Context, id int64, op, query string, args ...any) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("article write failed",
			slog.String("operation", op),
			slog.String("error", err.Error()),
			slog.Int64("article_id", id))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrArticleNotFound)
}
