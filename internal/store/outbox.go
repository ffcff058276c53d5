package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/benjamin-api/internal/domain"
)

// OutboxStore persists pending outbox events. Rows are only inserted and
// deleted; an event becomes visible to readers once its transaction commits.
type OutboxStore interface {
	// Insert records a new event. Call it on a transaction-bound store so the
	// event commits together with the change that produced it.
	Insert(ctx context.Context, event *domain.OutboxEvent) error

	// ListPending returns up to limit events in insertion order.
	ListPending(ctx context.Context, limit int) ([]domain.OutboxEvent, error)

	// Delete removes an event. Returns ErrOutboxEventNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new OutboxStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) OutboxStore
}
