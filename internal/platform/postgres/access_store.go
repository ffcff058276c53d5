package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/benjamin-api/internal/domain"
	"github.com/phrazzld/benjamin-api/internal/platform/logger"
	"github.com/phrazzld/benjamin-api/internal/store"
)

// PostgresAccessStore implements the store.AccessStore interface
// on the project_access table.
type PostgresAccessStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAccessStore creates a new PostgreSQL implementation of the AccessStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresAccessStore(db store.DBTX, logger *slog.Logger) *PostgresAccessStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAccessStore{
		db:     db,
		logger: logger.With(slog.String("component", "access_store")),
	}
}

// Ensure PostgresAccessStore implements store.AccessStore interface
var _ store.AccessStore = (*PostgresAccessStore)(nil)

// WithTx implements store.AccessStore.WithTx
func (s *PostgresAccessStore) WithTx(tx *sql.Tx) store.AccessStore {
	return &PostgresAccessStore{db: tx, logger: s.logger}
}

// Grant implements store.AccessStore.Grant
func (s *PostgresAccessStore) Grant(ctx context.Context, projectID uuid.UUID, userName string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO project_access (project_id, user_name, granted_at)
		VALUES ($1, $2, $3)`,
		projectID, userName, time.Now().UTC(),
	)
	if err != nil {
		log.Error("failed to grant project access",
			slog.String("project_id", projectID.String()),
			slog.String("user_name", userName),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// Revoke implements store.AccessStore.Revoke
func (s *PostgresAccessStore) Revoke(ctx context.Context, projectID uuid.UUID, userName string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM project_access WHERE project_id = $1 AND user_name = $2`,
		projectID, userName,
	)
	if err != nil {
		log.Error("failed to revoke project access",
			slog.String("project_id", projectID.String()),
			slog.String("user_name", userName),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrAccessNotFound)
}

// HasAccess implements store.AccessStore.HasAccess
func (s *PostgresAccessStore) HasAccess(ctx context.Context, projectID uuid.UUID, userName string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
		    SELECT 1 FROM project_access WHERE project_id = $1 AND user_name = $2)`,
		projectID, userName,
	).Scan(&exists)
	if err != nil {
		return false, MapError(err)
	}
	return exists, nil
}

// ListCollaborators implements store.AccessStore.ListCollaborators
func (s *PostgresAccessStore) ListCollaborators(
	ctx context.Context,
	projectID uuid.UUID,
) ([]domain.Collaborator, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT a.project_id, a.user_name, u.first_name, u.last_name, a.granted_at
		FROM project_access a
		JOIN users u ON u.user_name = a.user_name
		WHERE a.project_id = $1
		ORDER BY a.granted_at, a.user_name`,
		projectID,
	)
	if err != nil {
		log.Error("failed to list collaborators",
			slog.String("project_id", projectID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	collaborators := []domain.Collaborator{}
	for rows.Next() {
		var c domain.Collaborator
		if err := rows.Scan(&c.ProjectID, &c.UserName, &c.FirstName, &c.LastName, &c.GrantedAt); err != nil {
			return nil, fmt.Errorf("failed to scan collaborator: %w", err)
		}
		collaborators = append(collaborators, c)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return collaborators, nil
}
