package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/benjamin-api/internal/domain"
	"github.com/phrazzld/benjamin-api/internal/store"
)

// MockOutboxStore implements store.OutboxStore and keeps events in insertion order.
type MockOutboxStore struct {
	InsertFn      func(ctx context.Context, event *domain.OutboxEvent) error
	ListPendingFn func(ctx context.Context, limit int) ([]domain.OutboxEvent, error)
	DeleteFn      func(ctx context.Context, id uuid.UUID) error

	mu     sync.Mutex
	events []domain.OutboxEvent
}

var _ store.OutboxStore = (*MockOutboxStore)(nil)

// NewMockOutboxStore creates an empty outbox.
func NewMockOutboxStore() *MockOutboxStore {
	return &MockOutboxStore{}
}

// Events returns a copy of the pending events.
func (m *MockOutboxStore) Events() []domain.OutboxEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.OutboxEvent(nil), m.events...)
}

func (m *MockOutboxStore) Insert(ctx context.Context, event *domain.OutboxEvent) error {
	if m.InsertFn != nil {
		return m.InsertFn(ctx, event)
	}
	if err := event.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *event)
	return nil
}

func (m *MockOutboxStore) ListPending(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	if m.ListPendingFn != nil {
		return m.ListPendingFn(ctx, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.events)
	if limit < n {
		n = limit
	}
	return append([]domain.OutboxEvent(nil), m.events[:n]...), nil
}

func (m *MockOutboxStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.events {
		if e.ID == id {
			m.events = append(m.events[:i], m.events[i+1:]...)
			return nil
		}
	}
	return store.ErrOutboxEventNotFound
}

// WithTx returns the same mock.
func (m *MockOutboxStore) WithTx(_ *sql.Tx) store.OutboxStore {
	return m
}
