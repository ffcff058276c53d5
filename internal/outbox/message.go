package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/benjamin-api/internal/domain"
)

// Field names injected into every published value.
const (
	FieldEventID   = "eventId"
	FieldEventType = "eventType"
	FieldCreatedAt = "createdAt"
)

// Message is a single record handed to the broker.
type Message struct {
	// Key is the event ID. Consumers deduplicate on it.
	Key   string
	Topic string
	Type  string
	// Value is a JSON object that always carries eventId.
	Value []byte
}

// Store is the part of the outbox table the publisher needs.
type Store interface {
	ListPending(ctx context.Context, limit int) ([]domain.OutboxEvent, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Broker delivers messages. Publish returns nil only after the broker has
// acknowledged the message.
type Broker interface {
	Publish(ctx context.Context, msg Message) error
}

// Lock is a held cross-process lock.
type Lock interface {
	Unlock(ctx context.Context) error
}

// Locker coordinates publishers running in separate processes. TryLock
// returns ok=false without error when another holder has the key.
type Locker interface {
	TryLock(ctx context.Context, key string) (lock Lock, ok bool, err error)
}

// NewMessage builds the broker message for a stored event. Payload fields are
// kept as stored; the event metadata fields overwrite any payload fields with
// the same name.
func NewMessage(event domain.OutboxEvent, topic string) (Message, error) {
	fields := map[string]json.RawMessage{}
	if len(event.Payload) > 0 {
		if err := json.Unmarshal(event.Payload, &fields); err != nil {
			return Message{}, fmt.Errorf("payload of event %s is not a JSON object: %w", event.ID, err)
		}
	}

	id := event.ID.String()
	var err error
	if fields[FieldEventID], err = json.Marshal(id); err != nil {
		return Message{}, err
	}
	if fields[FieldEventType], err = json.Marshal(event.Type); err != nil {
		return Message{}, err
	}
	if fields[FieldCreatedAt], err = json.Marshal(event.CreatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return Message{}, err
	}

	value, err := json.Marshal(fields)
	if err != nil {
		return Message{}, fmt.Errorf("failed to encode event %s: %w", id, err)
	}

	return Message{
		Key:   id,
		Topic: topic,
		Type:  event.Type,
		Value: value,
	}, nil
}
