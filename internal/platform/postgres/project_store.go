package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/grover/internal/domain"
	"github.com/phrazzld/grover/internal/platform/logger"
	"github.com/phrazzld/grover/internal/store"
)

// PostgresProjectStore implements store.ProjectStore.
type PostgresProjectStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProjectStore creates a project store on db, which may be a
// connection or a transaction.
func NewPostgresProjectStore(db store.DBTX, logger *slog.Logger) *PostgresProjectStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresProjectStore{
		db:     db,
		logger: logger.With(slog.String("component", "project_store")),
	}
}

var _ store.ProjectStore = (*PostgresProjectStore)(nil)

const projectColumns = `id, name, topic, care_areas, journey_stage, category, format_type,
	business_category, consumer_need, tone_of_voice, target_audiences, notes,
	is_base, is_duplicate, original_project_id, changes_note, created_at, updated_at`

// Create implements store.ProjectStore.
func (s *PostgresProjectStore) Create(ctx context.Context, project *domain.Project) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := project.Validate(); err != nil {
		return err
	}
	careAreas, audiences, err := encodeProjectLists(project)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now

	query := `
		INSERT INTO projects (name, topic, care_areas, journey_stage, category, format_type,
			business_category, consumer_need, tone_of_voice, target_audiences, notes,
			is_base, is_duplicate, original_project_id, changes_note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id
	`
	err = s.db.QueryRowContext(ctx, query,
		project.Name, project.Topic, careAreas, project.JourneyStage, project.Category,
		project.FormatType, project.BusinessCategory, project.ConsumerNeed, project.ToneOfVoice,
		audiences, project.Notes, project.IsBase, project.IsDuplicate, project.OriginalProjectID,
		project.ChangesNote, project.CreatedAt, project.UpdatedAt,
	).Scan(&project.ID)
	if err != nil {
		log.Error("failed to create project",
			slog.String("error", err.Error()),
			slog.String("name", project.Name))
		return MapError(err)
	}

	log.Info("project created", slog.Int64("project_id", project.ID))
	return nil
}

// GetByID implements store.ProjectStore.
func (s *PostgresProjectStore) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	project, err := scanProject(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapEntityError(err, store.ErrProjectNotFound, nil)
	}
	return project, nil
}

// List implements store.ProjectStore.
func (s *PostgresProjectStore) List(ctx context.Context) ([]*domain.Project, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC, id DESC`)
	if err != nil {
		log.Error("failed to list projects", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	projects := []*domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}
	return projects, nil
}

// Update implements store.ProjectStore.
func (s *PostgresProjectStore) Update(ctx context.Context, project *domain.Project) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := project.Validate(); err != nil {
		return err
	}
	careAreas, audiences, err := encodeProjectLists(project)
	if err != nil {
		return err
	}
	project.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE projects
		SET name = $1, topic = $2, care_areas = $3, journey_stage = $4, category = $5,
			format_type = $6, business_category = $7, consumer_need = $8, tone_of_voice = $9,
			target_audiences = $10, notes = $11, changes_note = $12, updated_at = $13
		WHERE id = $14
	`
	result, err := s.db.ExecContext(ctx, query,
		project.Name, project.Topic, careAreas, project.JourneyStage, project.Category,
		project.FormatType, project.BusinessCategory, project.ConsumerNeed, project.ToneOfVoice,
		audiences, project.Notes, project.ChangesNote, project.UpdatedAt, project.ID,
	)
	if err != nil {
		log.Error("failed to update project",
			slog.String("error", err.Error()),
			slog.Int64("project_id", project.ID))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrProjectNotFound)
}

// Delete implements store.ProjectStore.
func (s *PostgresProjectStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete project",
			slog.String("error", err.Error()),
			slog.Int64("project_id", id))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrProjectNotFound)
}

// WithTx implements store.ProjectStore.
func (s *PostgresProjectStore) WithTx(tx *sql.Tx) store.ProjectStore {
	return &PostgresProjectStore{db: tx, logger: s.logger}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var (
		p         domain.Project
		careAreas []byte
		audiences []byte
		original  sql.NullInt64
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Topic, &careAreas, &p.JourneyStage, &p.Category, &p.FormatType,
		&p.BusinessCategory, &p.ConsumerNeed, &p.ToneOfVoice, &audiences, &p.Notes,
		&p.IsBase, &p.IsDuplicate, &original, &p.ChangesNote, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.CareAreas, err = decodeStringList(careAreas); err != nil {
		return nil, store.NewStoreError("project", "scan", "invalid care_areas column", err)
	}
	if p.TargetAudiences, err = decodeStringList(audiences); err != nil {
		return nil, store.NewStoreError("project", "scan", "invalid target_audiences column", err)
	}
	if original.Valid {
		id := original.Int64
		p.OriginalProjectID = &id
	}
	return &p, nil
}

func encodeProjectLists(p *domain.Project) ([]byte, []byte, error) {
	careAreas, err := json.Marshal(nonNil(p.CareAreas))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode care areas: %w", err)
	}
	audiences, err := json.Marshal(nonNil(p.TargetAudiences))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode target audiences: %w", err)
	}
	return careAreas, audiences, nil
}

func decodeStringList(raw []byte) ([]string, error) {
	list := []string{}
	if len(raw) == 0 {
		return list, nil
	}
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	return nonNil(list), nil
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
