package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/benjamin-api/internal/domain"
	"github.com/phrazzld/benjamin-api/internal/platform/postgres"
	"github.com/phrazzld/benjamin-api/internal/store"
	"github.com/phrazzld/benjamin-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresProjectStore(t *testing.T) {
	tx := testdb.BeginTx(t)
	ctx := context.Background()
	projects := postgres.NewPostgresProjectStore(tx, nil)
	access := postgres.NewPostgresAccessStore(tx, nil)

	t.Run("Create, update and delete", func(t *testing.T) {
		owner := createTestUser(t, tx)
		project := createTestProject(t, tx, owner.UserName)

		require.NoError(t, project.Rename("Renamed", "new description"))
		require.NoError(t, projects.Update(ctx, project))

		got, err := projects.GetByID(ctx, project.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
		assert.Equal(t, owner.UserName, got.Owner)

		require.NoError(t, projects.Delete(ctx, project.ID))
		_, err = projects.GetByID(ctx, project.ID)
		assert.ErrorIs(t, err, store.ErrProjectNotFound)
		assert.ErrorIs(t, projects.Delete(ctx, project.ID), store.ErrProjectNotFound)
	})

	t.Run("Unknown owner is rejected", func(t *testing.T) {
		project, err := domain.NewProject("ghost-"+uuid.NewString()[:8], "Orphan", "")
		require.NoError(t, err)
		err = testdb.InSavepoint(t, tx, func() error { return projects.Create(ctx, project) })
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("NextTaskNumber is monotonic", func(t *testing.T) {
		owner := createTestUser(t, tx)
		project := createTestProject(t, tx, owner.UserName)

		for want := 1; want <= 3; want++ {
			got, err := projects.NextTaskNumber(ctx, project.ID)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}

		_, err := projects.NextTaskNumber(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrProjectNotFound)
	})

	t.Run("ListForUser includes shared projects", func(t *testing.T) {
		owner := createTestUser(t, tx)
		collaborator := createTestUser(t, tx)
		owned := createTestProject(t, tx, owner.UserName)
		shared := createTestProject(t, tx, owner.UserName)
		require.NoError(t, access.Grant(ctx, shared.ID, collaborator.UserName))

		ownerProjects, err := projects.ListForUser(ctx, owner.UserName)
		require.NoError(t, err)
		assert.Len(t, ownerProjects, 2)

		collabProjects, err := projects.ListForUser(ctx, collaborator.UserName)
		require.NoError(t, err)
		require.Len(t, collabProjects, 1)
		assert.Equal(t, shared.ID, collabProjects[0].ID)
		assert.NotEqual(t, owned.ID, collabProjects[0].ID)
	})
}

func TestPostgresAccessStore(t *testing.T) {
	tx := testdb.BeginTx(t)
	ctx := context.Background()
	access := postgres.NewPostgresAccessStore(tx, nil)

	owner := createTestUser(t, tx)
	collaborator := createTestUser(t, tx)
	project := createTestProject(t, tx, owner.UserName)

	has, err := access.HasAccess(ctx, project.ID, collaborator.UserName)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, access.Grant(ctx, project.ID, collaborator.UserName))
	err = testdb.InSavepoint(t, tx, func() error { return access.Grant(ctx, project.ID, collaborator.UserName) })
	assert.ErrorIs(t, err, store.ErrAccessExists)

	has, err = access.HasAccess(ctx, project.ID, collaborator.UserName)
	require.NoError(t, err)
	assert.True(t, has)

	collaborators, err := access.ListCollaborators(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, collaborators, 1)
	assert.Equal(t, collaborator.UserName, collaborators[0].UserName)
	assert.Equal(t, "Test", collaborators[0].FirstName)

	require.NoError(t, access.Revoke(ctx, project.ID, collaborator.UserName))
	assert.ErrorIs(t, access.Revoke(ctx, project.ID, collaborator.UserName), store.ErrAccessNotFound)
}
