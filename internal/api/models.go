package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/benjamin-api/internal/domain"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	UserName  string `json:"userName"  validate:"required,max=64,username"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName"  validate:"required,max=100"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	UserName string `json:"userName" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	UserName  string    `json:"userName"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthResponse carries an access token.
type AuthResponse struct {
	AccessToken string `json:"token"`
	TokenType   string `json:"tokenType"`
}

// ProjectRequest is used to create or update a project.
type ProjectRequest struct {
	Title       string `json:"title"       validate:"required,max=255"`
	Description string `json:"description" validate:"max=4000"`
}

// ProjectResponse is the public view of a project.
type ProjectResponse struct {
	ID          uuid.UUID `json:"uuid"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// InviteRequest names the user to share a project with.
type InviteRequest struct {
	UserName string `json:"userName" validate:"required,username"`
}

// CollaboratorResponse is a user with access to a project.
type CollaboratorResponse struct {
	UserName  string    `json:"userName"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	GrantedAt time.Time `json:"grantedAt"`
}

// CreateTaskRequest defines a new task.
type CreateTaskRequest struct {
	Title       string `json:"title"       validate:"required,max=255"`
	Description string `json:"description" validate:"max=4000"`
	Assignee    string `json:"assignee"    validate:"omitempty,username"`
}

// UpdateTaskRequest changes the fields that are present. An empty assignee
// unassigns the task.
type UpdateTaskRequest struct {
	Title       *string `json:"title"       validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=4000"`
	Assignee    *string `json:"assignee"    validate:"omitempty"`
	Status      *string `json:"status"      validate:"omitempty,taskstatus"`
}

// TaskResponse is the public view of a task.
type TaskResponse struct {
	Number      int               `json:"number"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Author      string            `json:"author"`
	Assignee    string            `json:"assignee,omitempty"`
	Status      domain.TaskStatus `json:"status"`
	ProjectID   uuid.UUID         `json:"projectUuid"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"changedAt"`
}

// TaskProfileResponse is a task together with its project title.
type TaskProfileResponse struct {
	TaskResponse
	ProjectTitle string `json:"projectTitle"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserName:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

func projectToResponse(p *domain.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Owner:       p.Owner,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func collaboratorToResponse(c *domain.Collaborator) CollaboratorResponse {
	return CollaboratorResponse{
		UserName:  c.UserName,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		GrantedAt: c.GrantedAt,
	}
}

func taskToResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		Number:      t.Number,
		Title:       t.Title,
		Description: t.Description,
		Author:      t.Author,
		Assignee:    t.Assignee,
		Status:      t.Status,
		ProjectID:   t.ProjectID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func taskProfileToResponse(p *domain.TaskProfile) TaskProfileResponse {
	return TaskProfileResponse{
		TaskResponse: TaskResponse{
			Number:      p.Number,
			Title:       p.Title,
			Description: p.Description,
			Author:      p.Author,
			Assignee:    p.Assignee,
			Status:      p.Status,
			ProjectID:   p.ProjectID,
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
		},
		ProjectTitle: p.ProjectTitle,
	}
}
