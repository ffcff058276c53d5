package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/benjamin-api/internal/access"
	"github.com/phrazzld/benjamin-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectService_NonOwnerMutationsAreDenied(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	for _, caller := range []string{collaboratorName, outsiderName, ""} {
		_, err := f.projectSvc.Update(ctx, caller, f.project.ID, "Renamed", "")
		assert.ErrorIs(t, err, access.ErrAccessDenied, "update by %q", caller)

		err = f.projectSvc.Delete(ctx, caller, f.project.ID)
		assert.ErrorIs(t, err, access.ErrAccessDenied, "delete by %q", caller)
	}
	assert.Equal(t, 0, f.projects.Calls("Update"))
	assert.Equal(t, 0, f.projects.Calls("Delete"))
}

func TestProjectService_Lifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	created, err := f.projectSvc.Create(ctx, collaboratorName, "  Side project ", "")
	require.NoError(t, err)
	assert.Equal(t, "Side project", created.Title)
	assert.Equal(t, collaboratorName, created.Owner)

	got, err := f.projectSvc.Get(ctx, collaboratorName, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	updated, err := f.projectSvc.Update(ctx, collaboratorName, created.ID, "Main project", "now serious")
	require.NoError(t, err)
	assert.Equal(t, "Main project", updated.Title)
	assert.Equal(t, created.ID, updated.ID, "id never changes")

	list, err := f.projectSvc.List(ctx, collaboratorName)
	require.NoError(t, err)
	assert.Len(t, list, 2, "owned and shared projects")

	outsiderList, err := f.projectSvc.List(ctx, outsiderName)
	require.NoError(t, err)
	assert.Empty(t, outsiderList)

	require.NoError(t, f.projectSvc.Delete(ctx, collaboratorName, created.ID))
	_, err = f.projectSvc.Get(ctx, collaboratorName, created.ID)
	assert.ErrorIs(t, err, access.ErrResourceNotFound)
}

func TestProjectService_Errors(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.projectSvc.Create(ctx, ownerName, "", "")
	assert.ErrorIs(t, err, domain.ErrEmptyProjectTitle)

	_, err = f.projectSvc.Update(ctx, ownerName, f.project.ID, "", "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.projectSvc.Get(ctx, ownerName, uuid.New())
	assert.ErrorIs(t, err, access.ErrResourceNotFound)

	_, err = f.projectSvc.Get(ctx, outsiderName, f.project.ID)
	assert.ErrorIs(t, err, access.ErrAccessDenied)

	dbErr := errors.New("connection reset")
	f.projects.CreateFn = func(context.Context, *domain.Project) error { return dbErr }
	_, err = f.projectSvc.Create(ctx, ownerName, "New", "")
	assert.ErrorIs(t, err, dbErr)

	f.projects.ListForUserFn = func(context.Context, string) ([]domain.Project, error) { return nil, dbErr }
	_, err = f.projectSvc.List(ctx, ownerName)
	assert.ErrorIs(t, err, dbErr)
}
