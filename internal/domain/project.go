package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Project validation errors
var (
	ErrEmptyProjectTitle = fmt.Errorf("%w: project title cannot be empty", ErrValidation)
	ErrProjectTitleLong  = fmt.Errorf("%w: project title must be at most 255 characters", ErrValidation)
	ErrEmptyProjectOwner = fmt.Errorf("%w: project owner cannot be empty", ErrValidation)
)

const maxTitleLength = 255

// Project groups tasks under a single owner. The ID never changes after
// creation and Owner is the user name of the creator.
type Project struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewProject creates a validated project owned by owner.
func NewProject(owner, title, description string) (*Project, error) {
	now := time.Now().UTC()
	p := &Project{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(title),
		Description: description,
		Owner:       owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks if the Project has valid data.
func (p *Project) Validate() error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("%w: project", ErrInvalidID)
	}
	if p.Title == "" {
		return ErrEmptyProjectTitle
	}
	if len(p.Title) > maxTitleLength {
		return ErrProjectTitleLong
	}
	if p.Owner == "" {
		return ErrEmptyProjectOwner
	}
	return nil
}

// IsOwnedBy reports whether userName owns the project.
func (p *Project) IsOwnedBy(userName string) bool {
	return userName != "" && p.Owner == userName
}

// Rename replaces the mutable fields of the project.
func (p *Project) Rename(title, description string) error {
	p.Title = strings.TrimSpace(title)
	p.Description = description
	p.UpdatedAt = time.Now().UTC()
	return p.Validate()
}

// Collaborator is a user who was granted access to a project by its owner.
type Collaborator struct {
	ProjectID uuid.UUID `json:"project_id"`
	UserName  string    `json:"user_name"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	GrantedAt time.Time `json:"granted_at"`
}
