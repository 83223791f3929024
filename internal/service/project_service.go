package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/phrazzld/grover/internal/domain"
	"github.com/phrazzld/grover/internal/platform/logger"
	"github.com/phrazzld/grover/internal/store"
)

// ProjectService manages projects.
type ProjectService interface {
	Create(ctx context.Context, project *domain.Project) error
	Get(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	Update(ctx context.Context, project *domain.Project) error
	Delete(ctx context.Context, id int64) error

	// Duplicate copies a project and its keywords under a new name in one
	// transaction. The copy records the original's id and the changes note.
	Duplicate(ctx context.Context, id int64, name, changesNote string) (*domain.Project, error)
}

type projectServiceImpl struct {
	db       store.TxBeginner
	projects store.ProjectStore
	keywords store.KeywordStore
	logger   *slog.Logger
}

// NewProjectService creates a ProjectService.
// It returns an error if any of the required dependencies are nil.
func NewProjectService(
	db store.TxBeginner,
	projects store.ProjectStore,
	keywords store.KeywordStore,
	l *slog.Logger,
) (ProjectService, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if projects == nil {
		return nil, errors.New("projects cannot be nil")
	}
	if keywords == nil {
		return nil, errors.New("keywords cannot be nil")
	}
	if l == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &projectServiceImpl{
		db:       db,
		projects: projects,
		keywords: keywords,
		logger:   l.With(slog.String("component", "project_service")),
	}, nil
}

func (s *projectServiceImpl) Create(ctx context.Context, project *domain.Project) error {
	if err := project.Validate(); err != nil {
		return err
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return wrap("project", "create", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("project created",
		slog.Int64("project_id", project.ID),
		slog.String("name", project.Name))
	return nil
}

func (s *projectServiceImpl) Get(ctx context.Context, id int64) (*domain.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, wrap("project", "get", err)
	}
	return p, nil
}

func (s *projectServiceImpl) List(ctx context.Context) ([]*domain.Project, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, wrap("project", "list", err)
	}
	return projects, nil
}

func (s *projectServiceImpl) Update(ctx context.Context, project *domain.Project) error {
	if err := project.Validate(); err != nil {
		return err
	}
	if err := s.projects.Update(ctx, project); err != nil {
		return wrap("project", "update", err)
	}
	return nil
}

func (s *projectServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.projects.Delete(ctx, id); err != nil {
		return wrap("project", "delete", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("project deleted", slog.Int64("project_id", id))
	return nil
}

func (s *projectServiceImpl) Duplicate(
	ctx context.Context,
	id int64,
	name, changesNote string,
) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrEmptyProjectName
	}

	var duplicate *domain.Project
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		projects := s.projects.WithTx(tx)
		keywords := s.keywords.WithTx(tx)

		original, err := projects.GetByID(ctx, id)
		if err != nil {
			return err
		}
		duplicate = original.Duplicate(name, changesNote)
		if err := projects.Create(ctx, duplicate); err != nil {
			return err
		}

		existing, err := keywords.ListByProject(ctx, id)
		if err != nil {
			return err
		}
		for _, k := range existing {
			cp := *k
			cp.ID = 0
			cp.ProjectID = duplicate.ID
			if err := keywords.Create(ctx, &cp); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrap("project", "duplicate", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("project duplicated",
		slog.Int64("original_project_id", id),
		slog.Int64("project_id", duplicate.ID))
	return duplicate, nil
}
