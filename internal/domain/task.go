package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	TaskStatusNew        TaskStatus = "NEW"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// Task validation errors
var (
	ErrEmptyTaskTitle     = fmt.Errorf("%w: task title cannot be empty", ErrValidation)
	ErrTaskTitleLong      = fmt.Errorf("%w: task title must be at most 255 characters", ErrValidation)
	ErrInvalidTaskStatus  = fmt.Errorf("%w: invalid task status", ErrValidation)
	ErrInvalidTaskNumber  = fmt.Errorf("%w: task number must be positive", ErrValidation)
	ErrEmptyTaskProjectID = fmt.Errorf("%w: task project ID cannot be empty", ErrValidation)
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusNew, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// ParseTaskStatus converts a case-insensitive string into a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", ErrInvalidTaskStatus
	}
	return status, nil
}

// Task is a unit of work inside a project. Number is unique within the
// project and assigned by the store in creation order. Assignee is empty when
// the task is unassigned.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   uuid.UUID  `json:"project_id"`
	Number      int        `json:"number"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Author      string     `json:"author"`
	Assignee    string     `json:"assignee,omitempty"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask creates a task in status NEW. The number is left at zero until the
// store assigns the next value for the project.
func NewTask(projectID uuid.UUID, author, title, description, assignee string) (*Task, error) {
	now := time.Now().UTC()
	t := &Task{
		ID:          uuid.New(),
		ProjectID:   projectID,
		Title:       strings.TrimSpace(title),
		Description: description,
		Author:      author,
		Assignee:    assignee,
		Status:      TaskStatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.validateFields(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks a stored task, including its number.
func (t *Task) Validate() error {
	if t.Number <= 0 {
		return ErrInvalidTaskNumber
	}
	return t.validateFields()
}

func (t *Task) validateFields() error {
	if t.ID == uuid.Nil {
		return fmt.Errorf("%w: task", ErrInvalidID)
	}
	if t.ProjectID == uuid.Nil {
		return ErrEmptyTaskProjectID
	}
	if t.Title == "" {
		return ErrEmptyTaskTitle
	}
	if len(t.Title) > maxTitleLength {
		return ErrTaskTitleLong
	}
	if !t.Status.Valid() {
		return ErrInvalidTaskStatus
	}
	return nil
}

// TaskProfile is the read model returned when a single task is requested.
type TaskProfile struct {
	Number       int        `json:"number"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	ProjectID    uuid.UUID  `json:"project_id"`
	ProjectTitle string     `json:"project_title"`
	Author       string     `json:"author"`
	Assignee     string     `json:"assignee,omitempty"`
	Status       TaskStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewTaskProfile combines a task with the project it belongs to.
func NewTaskProfile(t *Task, p *Project) TaskProfile {
	return TaskProfile{
		Number:       t.Number,
		Title:        t.Title,
		Description:  t.Description,
		ProjectID:    p.ID,
		ProjectTitle: p.Title,
		Author:       t.Author,
		Assignee:     t.Assignee,
		Status:       t.Status,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}
