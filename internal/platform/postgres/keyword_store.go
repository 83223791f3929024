package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/grover/internal/domain"
	"github.com/phrazzld/grover/internal/platform/logger"
	"github.com/phrazzld/grover/internal/store"
)

// PostgresKeywordStore implements store.KeywordStore.
type PostgresKeywordStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresKeywordStore creates a keyword store on db.
func NewPostgresKeywordStore(db store.DBTX, logger *slog.Logger) *PostgresKeywordStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresKeywordStore{
		db:     db,
		logger: logger.With(slog.String("component", "keyword_store")),
	}
}

var _ store.KeywordStore = (*PostgresKeywordStore)(nil)

const keywordColumns = `id, project_id, keyword, search_volume, search_intent,
	keyword_difficulty, is_primary, created_at`

// Create implements store.KeywordStore.
func (s *PostgresKeywordStore) Create(ctx context.Context, keyword *domain.Keyword) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := keyword.Validate(); err != nil {
		return err
	}
	if keyword.CreatedAt.IsZero() {
		keyword.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO keywords (project_id, keyword, search_volume, search_intent,
			keyword_difficulty, is_primary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		keyword.ProjectID, keyword.Keyword, keyword.SearchVolume, keyword.SearchIntent,
		keyword.Difficulty, keyword.IsPrimary, keyword.CreatedAt,
	).Scan(&keyword.ID)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: project %d", store.ErrProjectNotFound, keyword.ProjectID)
		}
		log.Warn("failed to create keyword",
			slog.String("error", err.Error()),
			slog.Int64("project_id", keyword.ProjectID))
		return mapEntityError(err, nil, store.ErrKeywordExists)
	}
	return nil
}

// ListByProject implements store.KeywordStore.
func (s *PostgresKeywordStore) ListByProject(ctx context.Context, projectID int64) ([]*domain.Keyword, error) {
	return s.list(ctx,
		`SELECT `+keywordColumns+` FROM keywords WHERE project_id = $1 ORDER BY is_primary DESC, id ASC`,
		projectID)
}

// ListAll implements store.KeywordStore.
func (s *PostgresKeywordStore) ListAll(ctx context.Context) ([]*domain.Keyword, error) {
	return s.list(ctx, `SELECT `+keywordColumns+` FROM keywords ORDER BY id ASC`)
}

func (s *PostgresKeywordStore) list(ctx context.Context, query string, args ...any) ([]*domain.Keyword, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list keywords",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	keywords := []*domain.Keyword{}
	for rows.Next() {
		var (
			k          domain.Keyword
			volume     sql.NullInt64
			difficulty sql.NullInt64
		)
		if err := rows.Scan(&k.ID, &k.ProjectID, &k.Keyword, &volume, &k.SearchIntent,
			&difficulty, &k.IsPrimary, &k.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan keyword row: %w", err)
		}
		k.SearchVolume = nullIntPtr(volume)
		k.Difficulty = nullIntPtr(difficulty)
		keywords = append(keywords, &k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating keyword rows: %w", err)
	}
	return keywords, nil
}

// UpdateMetrics implements store.KeywordStore.
func (s *PostgresKeywordStore) UpdateMetrics(ctx context.Context, id int64, metrics store.KeywordMetrics) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE keywords SET search_volume = $1, keyword_difficulty = $2, search_intent = $3 WHERE id = $4`,
		metrics.SearchVolume, metrics.Difficulty, metrics.SearchIntent, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update keyword metrics",
			slog.String("error", err.Error()),
			slog.Int64("keyword_id", id))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrKeywordNotFound)
}

// Delete implements store.KeywordStore.
func (s *PostgresKeywordStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM keywords WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrKeywordNotFound)
}

// WithTx implements store.KeywordStore.
func (s *PostgresKeywordStore) WithTx(tx *sql.Tx) store.KeywordStore {
	return &PostgresKeywordStore{db: tx, logger: s.logger}
}

func nullIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
