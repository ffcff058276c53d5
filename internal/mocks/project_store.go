package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/benjamin-api/internal/domain"
	"github.com/phrazzld/benjamin-api/internal/store"
)

// MockProjectStore implements store.ProjectStore with an in-memory map.
type MockProjectStore struct {
	CreateFn         func(ctx context.Context, project *domain.Project) error
	GetByIDFn        func(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	UpdateFn         func(ctx context.Context, project *domain.Project) error
	DeleteFn         func(ctx context.Context, id uuid.UUID) error
	ListForUserFn    func(ctx context.Context, userName string) ([]domain.Project, error)
	NextTaskNumberFn func(ctx context.Context, projectID uuid.UUID) (int, error)

	// Access is consulted by ListForUser so grants show up in listings.
	Access *MockAccessStore

	mu       sync.Mutex
	projects map[uuid.UUID]*domain.Project
	seq      map[uuid.UUID]int
	calls    map[string]int
}

var _ store.ProjectStore = (*MockProjectStore)(nil)

// NewMockProjectStore creates a mock seeded with projects.
func NewMockProjectStore(projects ...*domain.Project) *MockProjectStore {
	m := &MockProjectStore{
		projects: make(map[uuid.UUID]*domain.Project),
		seq:      make(map[uuid.UUID]int),
		calls:    make(map[string]int),
	}
	for _, p := range projects {
		m.projects[p.ID] = p
	}
	return m
}

// Calls returns how many times method was invoked.
func (m *MockProjectStore) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *MockProjectStore) record(method string) {
	m.mu.Lock()
	m.calls[method]++
	m.mu.Unlock()
}

func (m *MockProjectStore) Create(ctx context.Context, project *domain.Project) error {
	m.record("Create")
	if m.CreateFn != nil {
		return m.CreateFn(ctx, project)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *project
	m.projects[project.ID] = &cp
	return nil
}

func (m *MockProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	m.record("GetByID")
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, store.ErrProjectNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockProjectStore) Update(ctx context.Context, project *domain.Project) error {
	m.record("Update")
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, project)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[project.ID]; !ok {
		return store.ErrProjectNotFound
	}
	cp := *project
	m.projects[project.ID] = &cp
	return nil
}

func (m *MockProjectStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.record("Delete")
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return store.ErrProjectNotFound
	}
	delete(m.projects, id)
	return nil
}

func (m *MockProjectStore) ListForUser(ctx context.Context, userName string) ([]domain.Project, error) {
	m.record("ListForUser")
	if m.ListForUserFn != nil {
		return m.ListForUserFn(ctx, userName)
	}
	m.mu.Lock()
	candidates := make([]domain.Project, 0, len(m.projects))
	for _, p := range m.projects {
		candidates = append(candidates, *p)
	}
	m.mu.Unlock()

	result := []domain.Project{}
	for _, p := range candidates {
		if p.IsOwnedBy(userName) {
			result = append(result, p)
			continue
		}
		if m.Access != nil {
			if ok, _ := m.Access.HasAccess(ctx, p.ID, userName); ok {
				result = append(result, p)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockProjectStore) NextTaskNumber(ctx context.Context, projectID uuid.UUID) (int, error) {
	m.record("NextTaskNumber")
	if m.NextTaskNumberFn != nil {
		return m.NextTaskNumberFn(ctx, projectID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[projectID]; !ok {
		return 0, store.ErrProjectNotFound
	}
	m.seq[projectID]++
	return m.seq[projectID], nil
}

// WithTx returns the same mock.
func (m *MockProjectStore) WithTx(_ *sql.Tx) store.ProjectStore {
	return m
}
