package store

import (
	"context"

	"github.com/phrazzld/grover/internal/domain"
)

// ArticleStore persists base articles.
type ArticleStore interface {
	// Save inserts the article when its ID is 0 and updates it otherwise,
	// returning the ID.
	Save(ctx context.Context, article *domain.Article) (int64, error)

	// GetByID returns ErrArticleNotFound if the article does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Article, error)

	// ListByProject returns the articles of a project, newest first.
	ListByProject(ctx context.Context, projectID int64) ([]*domain.Article, error)

	// UpdateSettings writes the brief, desired length and section count.
	UpdateSettings(ctx context.Context, id int64, outline string, length, sections int) error

	// UpdateTitleOutline writes the title and outline.
	UpdateTitleOutline(ctx context.Context, id int64, title, outline string) error

	// UpdateContent writes the article body.
	UpdateContent(ctx context.Context, id int64, content string) error

	// UpdateMeta writes the SEO meta title and description.
	UpdateMeta(ctx context.Context, id int64, metaTitle, metaDescription string) error

	// Delete removes an article and its community revisions.
	Delete(ctx context.Context, id int64) error
}
