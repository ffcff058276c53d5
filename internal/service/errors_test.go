package service

import (
	"errors"
	"testing"

	"github.com/phrazzld/benjamin-api/internal/access"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrorsAreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrUserNotFound, ErrTaskNotFound, ErrCollaboratorNotFound,
		ErrAlreadyCollaborator, ErrInviteOwner, ErrUserNameTaken, ErrEmailTaken,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			assert.Equal(t, i == j, errors.Is(a, b), "%v vs %v", a, b)
		}
	}
}

func TestServiceError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		service  string
		op       string
		err      error
		expected string
	}{
		{
			name:     "with underlying error",
			service:  "user",
			op:       "register",
			err:      errors.New("database connection failed"),
			expected: "user service register operation failed: database connection failed",
		},
		{
			name:     "without underlying error",
			service:  "task",
			op:       "delete",
			expected: "task service delete operation failed",
		},
		{
			name:     "with access rejection",
			service:  "project",
			op:       "update",
			err:      access.ErrAccessDenied,
			expected: "project service update operation failed: access denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := &ServiceError{Service: tt.service, Op: tt.op, Err: tt.err}
			assert.Equal(t, tt.expected, err.Error())
			assert.Equal(t, tt.err, err.Unwrap())
		})
	}
}

func TestNewServiceError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, NewServiceError("task", "get", nil))

	err := NewServiceError("collaborator", "invite", ErrAlreadyCollaborator)
	assert.ErrorIs(t, err, ErrAlreadyCollaborator)

	var serviceErr *ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, "collaborator", serviceErr.Service)
	assert.Equal(t, "invite", serviceErr.Op)

	nested := NewServiceError("task", "update", NewServiceError("project", "get", access.ErrResourceNotFound))
	assert.ErrorIs(t, nested, access.ErrResourceNotFound)
}
