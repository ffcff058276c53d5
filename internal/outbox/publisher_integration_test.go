package outbox_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/benjamin-api/internal/outbox"
	"github.com/phrazzld/benjamin-api/internal/platform/postgres"
	"github.com/phrazzld/benjamin-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCycle_PostgresStore(t *testing.T) {
	t.Parallel()

	tx := testdb.BeginTx(t)
	ctx := context.Background()
	outboxStore := postgres.NewPostgresOutboxStore(tx, nil)

	// Earlier test data in the shared database would be drained too.
	_, err := tx.ExecContext(ctx, "DELETE FROM outbox_events")
	require.NoError(t, err)

	base := time.Now().UTC().Add(-time.Minute)
	names := []string{"alice", "bob", "carol"}
	for i, name := range names {
		e := newEvent(t, name)
		e.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, outboxStore.Insert(ctx, &e))
	}

	failBob := errors.New("broker unavailable")
	broker := &mockBroker{PublishFn: func(_ context.Context, msg outbox.Message) error {
		if bytes.Contains(msg.Value, []byte(`"bob"`)) {
			return failBob
		}
		return nil
	}}
	p, _ := newPublisher(t, outboxStore, broker)

	result, err := p.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Fetched)
	assert.Equal(t, 1, result.Published)
	assert.ErrorIs(t, result.DeliveryError, failBob)

	pending, err := outboxStore.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2, "failed event and everything after it stay queued")

	broker.PublishFn = nil
	result, err = p.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Published)

	pending, err = outboxStore.ListPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
