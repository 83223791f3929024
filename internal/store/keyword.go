package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/grover/internal/domain"
)

// KeywordMetrics are the research figures of a keyword.
type KeywordMetrics struct {
	SearchVolume *int
	Difficulty   *int
	SearchIntent string
}

// KeywordStore persists project keywords.
type KeywordStore interface {
	// Create inserts a keyword and sets its ID. Returns ErrKeywordExists when
	// the project already tracks the phrase.
	Create(ctx context.Context, keyword *domain.Keyword) error

	// ListByProject returns the keywords of a project, primary keywords first.
	ListByProject(ctx context.Context, projectID int64) ([]*domain.Keyword, error)

	// ListAll returns every stored keyword.
	ListAll(ctx context.Context) ([]*domain.Keyword, error)

	// UpdateMetrics replaces the research figures of a keyword.
	UpdateMetrics(ctx context.Context, id int64, metrics KeywordMetrics) error

	// Delete returns ErrKeywordNotFound if the keyword does not exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a store bound to tx.
	WithTx(tx *sql.Tx) KeywordStore
}
