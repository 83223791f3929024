package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/grover/internal/domain"
)

// ProjectStore persists projects.
type ProjectStore interface {
	// Create inserts a project and sets its ID.
	Create(ctx context.Context, project *domain.Project) error

	// GetByID returns ErrProjectNotFound if the project does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Project, error)

	// List returns all projects, newest first.
	List(ctx context.Context) ([]*domain.Project, error)

	// Update overwrites the editable fields of a project.
	Update(ctx context.Context, project *domain.Project) error

	// Delete removes a project together with its keywords and articles.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a store bound to tx.
	WithTx(tx *sql.Tx) ProjectStore
}
