package postgres_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/benjamin-api/internal/domain"
	"github.com/phrazzld/benjamin-api/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// createTestUser inserts a user with a unique user name.
func createTestUser(t *testing.T, tx *sql.Tx) *domain.User {
	t.Helper()
	suffix := uuid.NewString()[:8]
	user, err := domain.NewUser("user-"+suffix, "Test", "User", "user-"+suffix+"@example.com", "password123")
	require.NoError(t, err)
	user.HashedPassword = "$2a$10$abcdefghijklmnopqrstuv"
	require.NoError(t, postgres.NewPostgresUserStore(tx, nil).Create(context.Background(), user))
	return user
}

// createTestProject inserts a project owned by owner.
func createTestProject(t *testing.T, tx *sql.Tx, owner string) *domain.Project {
	t.Helper()
	project, err := domain.NewProject(owner, "Project "+uuid.NewString()[:8], "")
	require.NoError(t, err)
	require.NoError(t, postgres.NewPostgresProjectStore(tx, nil).Create(context.Background(), project))
	return project
}
