package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Outbox validation errors
var (
	ErrEmptyEventType    = fmt.Errorf("%w: event type cannot be empty", ErrValidation)
	ErrEmptyEventPayload = fmt.Errorf("%w: event payload must be a JSON object", ErrValidation)
)

// OutboxEvent is a notifiable domain fact persisted in the same transaction
// as the change that produced it. Rows are inserted and deleted, never updated.
type OutboxEvent struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewOutboxEvent marshals payload and wraps it in an event with a fresh ID.
func NewOutboxEvent(eventType string, payload any) (*OutboxEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	e := &OutboxEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks if the event has valid data.
func (e *OutboxEvent) Validate() error {
	if e.ID == uuid.Nil {
		return fmt.Errorf("%w: outbox event", ErrInvalidID)
	}
	if e.Type == "" {
		return ErrEmptyEventType
	}
	if len(e.Payload) == 0 || e.Payload[0] != '{' {
		return ErrEmptyEventPayload
	}
	return nil
}
