package mocks

import (
	"context"

	"github.com/phrazzld/benjamin-api/internal/store"
)

// MockTransactor runs fn without a database. Stores receive a nil *sql.Tx,
// which the mock stores ignore. Changes made before an error are not undone.
type MockTransactor struct {
	WithinTxFn func(ctx context.Context, fn store.TxFn) error

	Calls int
}

var _ store.Transactor = (*MockTransactor)(nil)

func (m *MockTransactor) WithinTx(ctx context.Context, fn store.TxFn) error {
	m.Calls++
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return fn(ctx, nil)
}
