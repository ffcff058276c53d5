package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/benjamin-api/internal/access"
	"github.com/phrazzld/benjamin-api/internal/api/shared"
	"github.com/phrazzld/benjamin-api/internal/domain"
	"github.com/phrazzld/benjamin-api/internal/service"
	"github.com/phrazzld/benjamin-api/internal/service/auth"
	"github.com/phrazzld/benjamin-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking their types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, access.ErrAccessDenied):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, access.ErrResourceNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrCollaboratorNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrUserNameTaken),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrAlreadyCollaborator),
		errors.Is(err, service.ErrInviteOwner),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"
	case MapErrorToStatusCode(err) == http.StatusUnauthorized:
		return "Invalid token"

	case errors.Is(err, access.ErrAccessDenied):
		return "You do not have access to this project"

	case errors.Is(err, access.ErrResourceNotFound):
		return "Project not found"
	case errors.Is(err, service.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, service.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, service.ErrCollaboratorNotFound):
		return "Collaborator not found"

	case errors.Is(err, service.ErrUserNameTaken):
		return "User name already exists"
	case errors.Is(err, service.ErrEmailTaken):
		return "Email already exists"
	case errors.Is(err, service.ErrAlreadyCollaborator):
		return "User already has access to the project"
	case errors.Is(err, service.ErrInviteOwner):
		return "The project owner cannot be invited"

	case errors.Is(err, domain.ErrValidation):
		return domainValidationMessage(err)
	case errors.Is(err, domain.ErrInvalidID), errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// domainValidationMessage returns the innermost validation sentinel's
// message, which never contains user input.
func domainValidationMessage(err error) string {
	for _, sentinel := range []error{
		domain.ErrEmptyUserName, domain.ErrInvalidUserName, domain.ErrEmptyEmail, domain.ErrInvalidEmail,
		domain.ErrPasswordTooShort, domain.ErrPasswordTooLong,
		domain.ErrEmptyProjectTitle, domain.ErrProjectTitleLong,
		domain.ErrEmptyTaskTitle, domain.ErrTaskTitleLong, domain.ErrInvalidTaskStatus,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "Validation error"
}

// SanitizeValidationError turns validator errors into a message naming only
// the first failing field and rule.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}
	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), validationTagMessage(fe.Tag()))
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "username":
		return "may only contain letters, digits, '.', '_' and '-'"
	case "taskstatus":
		return "must be one of NEW, IN_PROGRESS, DONE"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the mapped status and safe message for err and logs
// the full error.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	var opts []shared.ResponseOption
	if status == http.StatusForbidden {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err, opts...)
}
