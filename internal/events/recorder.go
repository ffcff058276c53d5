package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/benjamin-api/internal/domain"
	"github.com/phrazzld/benjamin-api/internal/platform/logger"
	"github.com/phrazzld/benjamin-api/internal/store"
)

// OutboxRecorder implements Emitter by inserting into the outbox store.
type OutboxRecorder struct {
	outbox store.OutboxStore
	logger *slog.Logger
}

var _ Emitter = (*OutboxRecorder)(nil)

// NewOutboxRecorder creates a recorder writing to outbox.
func NewOutboxRecorder(outbox store.OutboxStore, log *slog.Logger) (*OutboxRecorder, error) {
	if outbox == nil {
		return nil, errors.New("outbox store cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &OutboxRecorder{
		outbox: outbox,
		logger: log.With(slog.String("component", "outbox_recorder")),
	}, nil
}

// Emit serializes event and inserts it using tx.
func (r *OutboxRecorder) Emit(ctx context.Context, tx *sql.Tx, event Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}
	row, err := domain.NewOutboxEvent(event.EventType(), event)
	if err != nil {
		return err
	}

	s := r.outbox
	if tx != nil {
		s = s.WithTx(tx)
	}
	if err := s.Insert(ctx, row); err != nil {
		return fmt.Errorf("failed to record %s event: %w", row.Type, err)
	}

	logger.FromContextOrDefault(ctx, r.logger).Debug("event recorded",
		slog.String("event_id", row.ID.String()),
		slog.String("event_type", row.Type))
	return nil
}
