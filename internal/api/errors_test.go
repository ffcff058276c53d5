package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/benjamin-api/internal/access"
	"github.com/phrazzld/benjamin-api/internal/api/shared"
	"github.com/phrazzld/benjamin-api/internal/domain"
	"github.com/phrazzld/benjamin-api/internal/service"
	"github.com/phrazzld/benjamin-api/internal/service/auth"
	"github.com/phrazzld/benjamin-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"wrong token type", auth.ErrWrongTokenType, http.StatusUnauthorized},
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"access denied", fmt.Errorf("update: %w", access.ErrAccessDenied), http.StatusForbidden},
		{"project not found", access.ErrResourceNotFound, http.StatusNotFound},
		{"task not found", service.NewServiceError("task", "Get", service.ErrTaskNotFound), http.StatusNotFound},
		{"collaborator not found", service.ErrCollaboratorNotFound, http.StatusNotFound},
		{"store not found", store.ErrProjectNotFound, http.StatusNotFound},
		{"user name taken", service.ErrUserNameTaken, http.StatusConflict},
		{"already collaborator", service.ErrAlreadyCollaborator, http.StatusConflict},
		{"invite owner", service.ErrInviteOwner, http.StatusConflict},
		{"validation", domain.ErrEmptyTaskTitle, http.StatusBadRequest},
		{"invalid id", domain.ErrInvalidID, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Token expired", GetSafeErrorMessage(auth.ErrExpiredToken))
	assert.Equal(t, "Invalid token", GetSafeErrorMessage(auth.ErrWrongTokenType))
	assert.Equal(t, domain.ErrEmptyTaskTitle.Error(),
		GetSafeErrorMessage(fmt.Errorf("create task: %w", domain.ErrEmptyTaskTitle)))
	assert.Equal(t, "An unexpected error occurred",
		GetSafeErrorMessage(errors.New("pq: password authentication failed for user admin")))
}

func TestHandleAPIError_HidesInternalDetails(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(shared.SetTraceID(req.Context()))
	rec := httptest.NewRecorder()

	HandleAPIError(rec, req, fmt.Errorf("query failed: %w", errors.New("relation \"tasks\" does not exist")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "relation")
	assert.Contains(t, rec.Body.String(), shared.GetTraceID(req.Context()))
}
