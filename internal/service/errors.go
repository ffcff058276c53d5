package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check them with errors.Is; the API layer maps them to status codes.
var (
	// ErrUserNotFound indicates an invitee or login user name that does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrTaskNotFound indicates the task number does not exist in the project.
	ErrTaskNotFound = errors.New("task not found")

	// ErrCollaboratorNotFound indicates the user holds no grant on the project.
	ErrCollaboratorNotFound = errors.New("collaborator not found")

	// ErrAlreadyCollaborator indicates the invitee already has access.
	ErrAlreadyCollaborator = errors.New("user already has access to the project")

	// ErrInviteOwner indicates the owner tried to invite themselves.
	ErrInviteOwner = errors.New("project owner cannot be invited")

	// ErrUserNameTaken and ErrEmailTaken are returned by registration.
	ErrUserNameTaken = errors.New("user name is already taken")
	ErrEmailTaken    = errors.New("email is already registered")
)

// ServiceError adds the failing service and operation to an underlying error.
type ServiceError struct {
	Service string
	Op      string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s operation failed: %v", e.Service, e.Op, e.Err)
	}
	return fmt.Sprintf("%s service %s operation failed", e.Service, e.Op)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError wraps err. It returns nil when err is nil.
func NewServiceError(service, op string, err error) error {
	if err == nil {
		return nil
	}
	return &ServiceError{Service: service, Op: op, Err: err}
}
