package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/benjamin-api/internal/access"
	"github.com/phrazzld/benjamin-api/internal/domain"
	"github.com/phrazzld/benjamin-api/internal/events"
	"github.com/phrazzld/benjamin-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollaboratorService_Invite(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	collaborator, err := f.collaboratorSvc.Invite(ctx, ownerName, f.project.ID, outsiderName)
	require.NoError(t, err)
	assert.Equal(t, outsiderName, collaborator.UserName)
	assert.Equal(t, 1, f.tx.Calls)

	ok, err := f.grants.HasAccess(ctx, f.project.ID, outsiderName)
	require.NoError(t, err)
	assert.True(t, ok)

	recorded := f.outbox.Events()
	require.Len(t, recorded, 1)
	assert.Equal(t, events.TypeInvitation, recorded[0].Type)

	var payload events.InvitationEvent
	require.NoError(t, json.Unmarshal(recorded[0].Payload, &payload))
	assert.Equal(t, f.project.ID, payload.ProjectID)
	assert.Equal(t, "Google", payload.ProjectTitle)
	assert.Equal(t, ownerName, payload.Inviter)
	assert.Equal(t, outsiderName+"@example.com", payload.Email)
}

func TestCollaboratorService_InviteRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		caller  string
		invitee string
		project func(f *fixture) uuid.UUID
		wantErr error
	}{
		{name: "non-owner", caller: collaboratorName, invitee: outsiderName, wantErr: access.ErrAccessDenied},
		{name: "missing project", caller: ownerName, invitee: outsiderName, wantErr: access.ErrResourceNotFound,
			project: func(*fixture) uuid.UUID { return uuid.New() }},
		{name: "owner", caller: ownerName, invitee: ownerName, wantErr: service.ErrInviteOwner},
		{name: "unknown user", caller: ownerName, invitee: "ghost", wantErr: service.ErrUserNotFound},
		{name: "already invited", caller: ownerName, invitee: collaboratorName, wantErr: service.ErrAlreadyCollaborator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			projectID := f.project.ID
			if tt.project != nil {
				projectID = tt.project(f)
			}
			_, err := f.collaboratorSvc.Invite(context.Background(), tt.caller, projectID, tt.invitee)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.outbox.Events(), "no invitation without a grant")
		})
	}
}

func TestCollaboratorService_InviteEventFailureFailsInvite(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	insertErr := errors.New("outbox unavailable")
	f.outbox.InsertFn = func(context.Context, *domain.OutboxEvent) error { return insertErr }

	_, err := f.collaboratorSvc.Invite(context.Background(), ownerName, f.project.ID, outsiderName)
	assert.ErrorIs(t, err, insertErr)
}

func TestCollaboratorService_Remove(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	for _, assignee := range []string{collaboratorName, ownerName, collaboratorName} {
		_, err := f.taskSvc.Create(ctx, ownerName, f.project.ID, service.CreateTaskInput{Title: "t", Assignee: assignee})
		require.NoError(t, err)
	}

	assert.ErrorIs(t, f.collaboratorSvc.Remove(ctx, collaboratorName, f.project.ID, collaboratorName), access.ErrAccessDenied)

	require.NoError(t, f.collaboratorSvc.Remove(ctx, ownerName, f.project.ID, collaboratorName))
	ok, err := f.grants.HasAccess(ctx, f.project.ID, collaboratorName)
	require.NoError(t, err)
	assert.False(t, ok)

	remaining, err := f.tasks.ListByAssignee(ctx, f.project.ID, collaboratorName)
	require.NoError(t, err)
	assert.Empty(t, remaining, "assignments cleared")

	ownerTasks, err := f.tasks.ListByAssignee(ctx, f.project.ID, ownerName)
	require.NoError(t, err)
	assert.Len(t, ownerTasks, 1)

	err = f.collaboratorSvc.Remove(ctx, ownerName, f.project.ID, collaboratorName)
	assert.ErrorIs(t, err, service.ErrCollaboratorNotFound)
}

func TestCollaboratorService_List(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	list, err := f.collaboratorSvc.List(ctx, collaboratorName, f.project.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, collaboratorName, list[0].UserName)
	assert.Equal(t, "First", list[0].FirstName)

	_, err = f.collaboratorSvc.List(ctx, outsiderName, f.project.ID)
	assert.ErrorIs(t, err, access.ErrAccessDenied)
}
