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

const taskColumns = `id, project_id, number, title, description, author, assignee, status, created_at, updated_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx, logger: s.logger}
}

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		task.ID, task.ProjectID, task.Number, task.Title, task.Description,
		task.Author, nullString(task.Assignee), string(task.Status),
		task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create task",
			slog.String("project_id", task.ProjectID.String()),
			slog.Int("number", task.Number),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Debug("task created",
		slog.String("project_id", task.ProjectID.String()),
		slog.Int("number", task.Number))
	return nil
}

// GetByNumber implements store.TaskStore.GetByNumber
func (s *PostgresTaskStore) GetByNumber(ctx context.Context, projectID uuid.UUID, number int) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE project_id = $1 AND number = $2`,
		projectID, number,
	)
	task, err := scanTask(row)
	if err != nil {
		return nil, mapNotFound(err, store.ErrTaskNotFound)
	}
	return task, nil
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = $3, description = $4, assignee = $5, status = $6, updated_at = $7
		WHERE project_id = $1 AND number = $2`,
		task.ProjectID, task.Number, task.Title, task.Description,
		nullString(task.Assignee), string(task.Status), task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("project_id", task.ProjectID.String()),
			slog.Int("number", task.Number),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, projectID uuid.UUID, number int) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE project_id = $1 AND number = $2`,
		projectID, number,
	)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("project_id", projectID.String()),
			slog.Int("number", number),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// ListByProject implements store.TaskStore.ListByProject
func (s *PostgresTaskStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Task, error) {
	return s.list(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE project_id = $1 ORDER BY number`,
		projectID,
	)
}

// ListByAssignee implements store.TaskStore.ListByAssignee
func (s *PostgresTaskStore) ListByAssignee(
	ctx context.Context,
	projectID uuid.UUID,
	assignee string,
) ([]domain.Task, error) {
	return s.list(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE project_id = $1 AND assignee = $2 ORDER BY number`,
		projectID, assignee,
	)
}

// UnassignUser implements store.TaskStore.UnassignUser
func (s *PostgresTaskStore) UnassignUser(ctx context.Context, projectID uuid.UUID, userName string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET assignee = NULL, updated_at = NOW()
		WHERE project_id = $1 AND assignee = $2`,
		projectID, userName,
	)
	if err != nil {
		return 0, MapError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (s *PostgresTaskStore) list(ctx context.Context, query string, args ...any) ([]domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, MapError(err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return tasks, nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		t        domain.Task
		assignee sql.NullString
		status   string
	)
	err := row.Scan(&t.ID, &t.ProjectID, &t.Number, &t.Title, &t.Description,
		&t.Author, &assignee, &status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	t.Assignee = assignee.String
	t.Status = domain.TaskStatus(status)
	return &t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
