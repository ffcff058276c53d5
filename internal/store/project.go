package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/benjamin-api/internal/domain"
)

// ProjectStore defines the interface for project data persistence.
type ProjectStore interface {
	// Create saves a new project.
	// Returns ErrInvalidEntity if the owner does not exist.
	Create(ctx context.Context, project *domain.Project) error

	// GetByID retrieves a project by ID. Returns ErrProjectNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)

	// Update saves the title and description of an existing project.
	// Returns ErrProjectNotFound if absent.
	Update(ctx context.Context, project *domain.Project) error

	// Delete removes a project together with its tasks and access grants.
	// Returns ErrProjectNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListForUser returns the projects owned by or shared with userName,
	// newest first.
	ListForUser(ctx context.Context, userName string) ([]domain.Project, error)

	// NextTaskNumber reserves and returns the next task number of the project.
	// Numbers increase monotonically and are never reused. The reservation
	// locks the project row until the surrounding transaction ends.
	NextTaskNumber(ctx context.Context, projectID uuid.UUID) (int, error)

	// WithTx returns a new ProjectStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ProjectStore
}

// AccessStore persists collaborator grants on projects.
type AccessStore interface {
	// Grant gives userName access to the project.
	// Returns ErrAccessExists if the grant already exists and ErrInvalidEntity
	// if the project or user does not exist.
	Grant(ctx context.Context, projectID uuid.UUID, userName string) error

	// Revoke removes a grant. Returns ErrAccessNotFound if there was none.
	Revoke(ctx context.Context, projectID uuid.UUID, userName string) error

	// HasAccess reports whether userName holds a grant on the project.
	// Ownership is not a grant; callers check the owner separately.
	HasAccess(ctx context.Context, projectID uuid.UUID, userName string) (bool, error)

	// ListCollaborators returns the grants on the project ordered by grant time.
	ListCollaborators(ctx context.Context, projectID uuid.UUID) ([]domain.Collaborator, error)

	// WithTx returns a new AccessStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) AccessStore
}
