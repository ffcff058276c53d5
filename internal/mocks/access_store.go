package mocks

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/benjamin-api/internal/domain"
	"github.com/phrazzld/benjamin-api/internal/store"
)

type accessKey struct {
	project uuid.UUID
	user    string
}

// MockAccessStore implements store.AccessStore with an in-memory grant set.
type MockAccessStore struct {
	GrantFn             func(ctx context.Context, projectID uuid.UUID, userName string) error
	RevokeFn            func(ctx context.Context, projectID uuid.UUID, userName string) error
	HasAccessFn         func(ctx context.Context, projectID uuid.UUID, userName string) (bool, error)
	ListCollaboratorsFn func(ctx context.Context, projectID uuid.UUID) ([]domain.Collaborator, error)

	// Users supplies names for ListCollaborators when set.
	Users *MockUserStore

	mu     sync.Mutex
	grants map[accessKey]time.Time
	order  []accessKey
}

var _ store.AccessStore = (*MockAccessStore)(nil)

// NewMockAccessStore creates an empty grant set.
func NewMockAccessStore() *MockAccessStore {
	return &MockAccessStore{grants: make(map[accessKey]time.Time)}
}

func (m *MockAccessStore) Grant(ctx context.Context, projectID uuid.UUID, userName string) error {
	if m.GrantFn != nil {
		return m.GrantFn(ctx, projectID, userName)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := accessKey{projectID, userName}
	if _, ok := m.grants[k]; ok {
		return store.ErrAccessExists
	}
	m.grants[k] = time.Now().UTC()
	m.order = append(m.order, k)
	return nil
}

func (m *MockAccessStore) Revoke(ctx context.Context, projectID uuid.UUID, userName string) error {
	if m.RevokeFn != nil {
		return m.RevokeFn(ctx, projectID, userName)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := accessKey{projectID, userName}
	if _, ok := m.grants[k]; !ok {
		return store.ErrAccessNotFound
	}
	delete(m.grants, k)
	for i, o := range m.order {
		if o == k {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MockAccessStore) HasAccess(ctx context.Context, projectID uuid.UUID, userName string) (bool, error) {
	if m.HasAccessFn != nil {
		return m.HasAccessFn(ctx, projectID, userName)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.grants[accessKey{projectID, userName}]
	return ok, nil
}

func (m *MockAccessStore) ListCollaborators(ctx context.Context, projectID uuid.UUID) ([]domain.Collaborator, error) {
	if m.ListCollaboratorsFn != nil {
		return m.ListCollaboratorsFn(ctx, projectID)
	}
	m.mu.Lock()
	keys := make([]accessKey, 0, len(m.order))
	for _, k := range m.order {
		if k.project == projectID {
			keys = append(keys, k)
		}
	}
	granted := make([]time.Time, len(keys))
	for i, k := range keys {
		granted[i] = m.grants[k]
	}
	m.mu.Unlock()

	result := make([]domain.Collaborator, 0, len(keys))
	for i, k := range keys {
		c := domain.Collaborator{ProjectID: projectID, UserName: k.user, GrantedAt: granted[i]}
		if m.Users != nil {
			if u, err := m.Users.GetByUserName(ctx, k.user); err == nil {
				c.FirstName, c.LastName = u.FirstName, u.LastName
			}
		}
		result = append(result, c)
	}
	return result, nil
}

// WithTx returns the same mock.
func (m *MockAccessStore) WithTx(_ *sql.Tx) store.AccessStore {
	return m
}
