package store

import (
	"context"

	"github.com/phrazzld/grover/internal/domain"
)

// CommunityArticleStore persists community revisions of base articles.
type CommunityArticleStore interface {
	// Create inserts a revision and sets its ID. Returns
	// ErrCommunityArticleExists when the pair already has one.
	Create(ctx context.Context, article *domain.CommunityArticle) error

	// Upsert creates or replaces the revision for the article's
	// (base article, community) pair and sets its ID.
	Upsert(ctx context.Context, article *domain.CommunityArticle) error

	// GetByID returns ErrCommunityArticleNotFound if it does not exist.
	GetByID(ctx context.Context, id int64) (*domain.CommunityArticle, error)

	// GetByPair returns the revision of a base article for a community.
	GetByPair(ctx context.Context, baseArticleID, communityID int64) (*domain.CommunityArticle, error)

	// ListByArticle returns the revisions of a base article.
	ListByArticle(ctx context.Context, baseArticleID int64) ([]*domain.CommunityArticle, error)

	// Update overwrites the content fields of a revision.
	Update(ctx context.Context, article *domain.CommunityArticle) error

	// Delete returns ErrCommunityArticleNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error
}
