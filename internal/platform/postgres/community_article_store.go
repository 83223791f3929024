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

// PostgresCommunityArticleStore implements store.CommunityArticleStore.
type PostgresCommunityArticleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCommunityArticleStore creates a community article store on db.
func NewPostgresCommunityArticleStore(db store.DBTX, logger *slog.Logger) *PostgresCommunityArticleStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCommunityArticleStore{
		db:     db,
		logger: logger.With(slog.String("component", "community_article_store")),
	}
}

var _ store.CommunityArticleStore = (*PostgresCommunityArticleStore)(nil)

const communityArticleColumns = `id, project_id, base_article_id, community_id, title, content,
	schema, meta_title, meta_description, created_at, updated_at`

// Create implements store.CommunityArticleStore.
func (s *PostgresCommunityArticleStore) Create(ctx context.Context, a *domain.CommunityArticle) error {
	return s.insert(ctx, a, "")
}

// Upsert implements store.CommunityArticleStore.
func (s *PostgresCommunityArticleStore) Upsert(ctx context.Context, a *domain.CommunityArticle) error {
	return s.insert(ctx, a, `
		ON CONFLICT (base_article_id, community_id) DO UPDATE
		SET title = EXCLUDED.title, content = EXCLUDED.content, schema = EXCLUDED.schema,
			meta_title = EXCLUDED.meta_title, meta_description = EXCLUDED.meta_description,
			updated_at = EXCLUDED.updated_at`)
}

func (s *PostgresCommunityArticleStore) insert(ctx context.Context, a *domain.CommunityArticle, conflict string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := a.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	query := `
		INSERT INTO community_articles (project_id, base_article_id, community_id, title, content,
			schema, meta_title, meta_description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)` + conflict + `
		RETURNING id, created_at`
	err := s.db.QueryRowContext(ctx, query,
		a.ProjectID, a.BaseArticleID, a.CommunityID, a.Title, a.Content, a.Schema,
		a.MetaTitle, a.MetaDescription, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: article %d", store.ErrArticleNotFound, a.BaseArticleID)
		}
		log.Error("failed to save community article",
			slog.String("error", err.Error()),
			slog.Int64("base_article_id", a.BaseArticleID),
			slog.Int64("community_id", a.CommunityID))
		return mapEntityError(err, nil, store.ErrCommunityArticleExists)
	}
	return nil
}

// GetByID implements store.CommunityArticleStore.
func (s *PostgresCommunityArticleStore) GetByID(ctx context.Context, id int64) (*domain.CommunityArticle, error) {
	return s.get(ctx, `SELECT `+communityArticleColumns+` FROM community_articles WHERE id = $1`, id)
}

// GetByPair implements store.CommunityArticleStore.
func (s *PostgresCommunityArticleStore) GetByPair(ctx context.Context, baseArticleID, communityID int64) (*domain.CommunityArticle, error) {
	return s.get(ctx,
		`SELECT `+communityArticleColumns+` FROM community_articles WHERE base_article_id = $1 AND community_id = $2`,
		baseArticleID, communityID)
}

func (s *PostgresCommunityArticleStore) get(ctx context.Context, query string, args ...any) (*domain.CommunityArticle, error) {
	var a domain.CommunityArticle
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&a.ID, &a.ProjectID, &a.BaseArticleID, &a.CommunityID, &a.Title, &a.Content,
		&a.Schema, &a.MetaTitle, &a.MetaDescription, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, mapEntityError(err, store.ErrCommunityArticleNotFound, nil)
	}
	return &a, nil
}

// ListByArticle implements store.CommunityArticleStore.
func (s *PostgresCommunityArticleStore) ListByArticle(ctx context.Context, baseArticleID int64) ([]*domain.CommunityArticle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+communityArticleColumns+` FROM community_articles WHERE base_article_id = $1 ORDER BY community_id ASC`,
		baseArticleID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list community articles",
			slog.String("error", err.Error()),
			slog.Int64("base_article_id", baseArticleID))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	articles := []*domain.CommunityArticle{}
	for rows.Next() {
		var a domain.CommunityArticle
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.BaseArticleID, &a.CommunityID, &a.Title,
			&a.Content, &a.Schema, &a.MetaTitle, &a.MetaDescription, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan community article row: %w", err)
		}
		articles = append(articles, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating community article rows: %w", err)
	}
	return articles, nil
}

// Update implements store.CommunityArticleStore.
func (s *PostgresCommunityArticleStore) Update(ctx context.Context, a *domain.CommunityArticle) error {
	a.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE community_articles
		SET title = $1, content = $2, schema = $3, meta_title = $4, meta_description = $5, updated_at = $6
		WHERE id = $7`,
		a.Title, a.Content, a.Schema, a.MetaTitle, a.MetaDescription, a.UpdatedAt, a.ID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update community article",
			slog.String("error", err.Error()),
			slog.Int64("community_article_id", a.ID))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrCommunityArticleNotFound)
}

// Delete implements store.CommunityArticleStore.
func (s *PostgresCommunityArticleStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM community_articles WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrCommunityArticleNotFound)
}
