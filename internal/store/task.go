package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/benjamin-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
// Tasks are addressed by their project and per-project number.
type TaskStore interface {
	// Create saves a new task. The task number must already be assigned.
	// Returns ErrDuplicate if the number is taken within the project.
	Create(ctx context.Context, task *domain.Task) error

	// GetByNumber retrieves a task. Returns ErrTaskNotFound if absent.
	GetByNumber(ctx context.Context, projectID uuid.UUID, number int) (*domain.Task, error)

	// Update saves title, description, assignee and status of a task.
	// Returns ErrTaskNotFound if absent.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task. Returns ErrTaskNotFound if absent.
	Delete(ctx context.Context, projectID uuid.UUID, number int) error

	// ListByProject returns all tasks of a project ordered by number.
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Task, error)

	// ListByAssignee returns the tasks of a project assigned to userName,
	// ordered by number.
	ListByAssignee(ctx context.Context, projectID uuid.UUID, assignee string) ([]domain.Task, error)

	// UnassignUser clears userName from every task of the project and
	// returns the number of tasks changed.
	UnassignUser(ctx context.Context, projectID uuid.UUID, userName string) (int64, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
