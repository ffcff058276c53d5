package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/benjamin-api/internal/domain"
	"github.com/phrazzld/benjamin-api/internal/store"
)

// MockUserStore implements store.UserStore for testing
type MockUserStore struct {
	// Function fields for customizable behavior
	CreateFn          func(ctx context.Context, user *domain.User) error
	GetByIDFn         func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUserNameFn   func(ctx context.Context, userName string) (*domain.User, error)
	FetchByUserNameFn func(ctx context.Context, userName string) ([]domain.User, error)

	mu    sync.Mutex
	users map[string]*domain.User
}

var _ store.UserStore = (*MockUserStore)(nil)

// NewMockUserStore creates a new mock store seeded with users.
func NewMockUserStore(users ...*domain.User) *MockUserStore {
	m := &MockUserStore{users: make(map[string]*domain.User)}
	for _, u := range users {
		m.users[u.UserName] = u
	}
	return m
}

// AddUser registers a user without going through Create.
func (m *MockUserStore) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.UserName] = user
}

// Create implements the UserStore interface
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[user.UserName]; exists {
		return store.ErrUserNameExists
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	m.users[user.UserName] = user
	return nil
}

// GetByID implements the UserStore interface
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// GetByUserName implements the UserStore interface
func (m *MockUserStore) GetByUserName(ctx context.Context, userName string) (*domain.User, error) {
	if m.GetByUserNameFn != nil {
		return m.GetByUserNameFn(ctx, userName)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userName]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return u, nil
}

// FetchByUserName implements the UserStore interface
func (m *MockUserStore) FetchByUserName(ctx context.Context, userName string) ([]domain.User, error) {
	if m.FetchByUserNameFn != nil {
		return m.FetchByUserNameFn(ctx, userName)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userName]; ok {
		return []domain.User{*u}, nil
	}
	return []domain.User{}, nil
}

// WithTx returns the same mock.
func (m *MockUserStore) WithTx(_ *sql.Tx) store.UserStore {
	return m
}
