package events

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Event types stored in outbox_events.event_type and sent as the AMQP type.
const (
	TypeInvitation   = "invitation"
	TypeTaskAssigned = "task_assigned"
)

// Event is a payload that can be recorded in the outbox.
type Event interface {
	EventType() string
}

// InvitationEvent is emitted when a project owner grants a user access.
// Downstream mailers use it to send the invitation e-mail.
type InvitationEvent struct {
	ProjectID    uuid.UUID `json:"projectId"`
	ProjectTitle string    `json:"projectTitle"`
	Inviter      string    `json:"inviter"`
	UserName     string    `json:"userName"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	InvitedAt    time.Time `json:"invitedAt"`
}

func (InvitationEvent) EventType() string { return TypeInvitation }

// TaskAssignedEvent is emitted when a task gets a new assignee other than the
// caller making the change.
type TaskAssignedEvent struct {
	ProjectID    uuid.UUID `json:"projectId"`
	ProjectTitle string    `json:"projectTitle"`
	TaskNumber   int       `json:"taskNumber"`
	TaskTitle    string    `json:"taskTitle"`
	AssignedBy   string    `json:"assignedBy"`
	Assignee     string    `json:"assignee"`
	Email        string    `json:"email"`
	AssignedAt   time.Time `json:"assignedAt"`
}

func (TaskAssignedEvent) EventType() string { return TypeTaskAssigned }

// Emitter records events as part of the caller's transaction. A nil tx
// records outside any transaction.
type Emitter interface {
	Emit(ctx context.Context, tx *sql.Tx, event Event) error
}
