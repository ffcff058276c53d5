package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/benjamin-api/internal/domain"
)

// UserStore defines the interface for user data persistence. It doubles as
// the user directory consulted by task assignment validation.
type UserStore interface {
	// Create saves a new user. HashedPassword must already be set.
	// Returns ErrUserNameExists or ErrEmailExists on conflicts.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID. Returns ErrUserNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByUserName retrieves a user by user name. Returns ErrUserNotFound if absent.
	GetByUserName(ctx context.Context, userName string) (*domain.User, error)

	// FetchByUserName returns the users matching userName: zero or one.
	// An absent user is an empty slice, not an error.
	FetchByUserName(ctx context.Context, userName string) ([]domain.User, error)

	// WithTx returns a new UserStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
