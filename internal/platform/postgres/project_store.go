package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/benjamin-api/internal/domain"
	"github.com/phrazzld/benjamin-api/internal/platform/logger"
	"github.com/phrazzld/benjamin-api/internal/store"
)

const projectColumns = `p.id, p.title, p.description, p.owner, p.created_at, p.updated_at`

// PostgresProjectStore implements the store.ProjectStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProjectStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProjectStore creates a new PostgreSQL implementation of the ProjectStore interface.
// If logger is nil, a default logger will be used.
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

// Ensure PostgresProjectStore implements store.ProjectStore interface
var _ store.ProjectStore = (*PostgresProjectStore)(nil)

// WithTx implements store.ProjectStore.WithTx
func (s *PostgresProjectStore) WithTx(tx *sql.Tx) store.ProjectStore {
	return &PostgresProjectStore{db: tx, logger: s.logger}
}

// Create implements store.ProjectStore.Create
func (s *PostgresProjectStore) Create(ctx context.Context, project *domain.Project) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, title, description, owner, task_seq, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, $5, $6)`,
		project.ID, project.Title, project.Description, project.Owner,
		project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create project",
			slog.String("project_id", project.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Debug("project created", slog.String("project_id", project.ID.String()))
	return nil
}

// GetByID implements store.ProjectStore.GetByID
func (s *PostgresProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects p WHERE p.id = $1`, id)
	project, err := scanProject(row)
	if err != nil {
		return nil, mapNotFound(err, store.ErrProjectNotFound)
	}
	return project, nil
}

// Update implements store.ProjectStore.Update
func (s *PostgresProjectStore) Update(ctx context.Context, project *domain.Project) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		UPDATE projects SET title = $2, description = $3, updated_at = $4
		WHERE id = $1`,
		project.ID, project.Title, project.Description, project.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update project",
			slog.String("project_id", project.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrProjectNotFound)
}

// Delete implements store.ProjectStore.Delete
func (s *PostgresProjectStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete project",
			slog.String("project_id", id.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrProjectNotFound)
}

// ListForUser implements store.ProjectStore.ListForUser
func (s *PostgresProjectStore) ListForUser(ctx context.Context, userName string) ([]domain.Project, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects p
		WHERE p.owner = $1
		   OR EXISTS (
		       SELECT 1 FROM project_access a
		       WHERE a.project_id = p.id AND a.user_name = $1)
		ORDER BY p.created_at DESC, p.id`,
		userName,
	)
	if err != nil {
		log.Error("failed to list projects", slog.String("user_name", userName), slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	projects := []domain.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, MapError(err)
		}
		projects = append(projects, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return projects, nil
}

// NextTaskNumber implements store.ProjectStore.NextTaskNumber
func (s *PostgresProjectStore) NextTaskNumber(ctx context.Context, projectID uuid.UUID) (int, error) {
	var number int
	err := s.db.QueryRowContext(ctx, `
		UPDATE projects SET task_seq = task_seq + 1
		WHERE id = $1
		RETURNING task_seq`,
		projectID,
	).Scan(&number)
	if err != nil {
		return 0, mapNotFound(err, store.ErrProjectNotFound)
	}
	return number, nil
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Owner, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}
	return &p, nil
}
