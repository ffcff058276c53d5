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

type taskKey struct {
	project uuid.UUID
	number  int
}

// MockTaskStore implements store.TaskStore with an in-memory map.
type MockTaskStore struct {
	CreateFn         func(ctx context.Context, task *domain.Task) error
	GetByNumberFn    func(ctx context.Context, projectID uuid.UUID, number int) (*domain.Task, error)
	UpdateFn         func(ctx context.Context, task *domain.Task) error
	DeleteFn         func(ctx context.Context, projectID uuid.UUID, number int) error
	ListByProjectFn  func(ctx context.Context, projectID uuid.UUID) ([]domain.Task, error)
	ListByAssigneeFn func(ctx context.Context, projectID uuid.UUID, assignee string) ([]domain.Task, error)
	UnassignUserFn   func(ctx context.Context, projectID uuid.UUID, userName string) (int64, error)

	mu    sync.Mutex
	tasks map[taskKey]*domain.Task
	calls map[string]int
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates a mock seeded with tasks.
func NewMockTaskStore(tasks ...*domain.Task) *MockTaskStore {
	m := &MockTaskStore{
		tasks: make(map[taskKey]*domain.Task),
		calls: make(map[string]int),
	}
	for _, t := range tasks {
		m.tasks[taskKey{t.ProjectID, t.Number}] = t
	}
	return m
}

// Calls returns how many times method was invoked.
func (m *MockTaskStore) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// Writes returns the number of mutating calls.
func (m *MockTaskStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls["Create"] + m.calls["Update"] + m.calls["Delete"] + m.calls["UnassignUser"]
}

func (m *MockTaskStore) record(method string) {
	m.mu.Lock()
	m.calls[method]++
	m.mu.Unlock()
}

func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	m.record("Create")
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *task
	m.tasks[taskKey{task.ProjectID, task.Number}] = &cp
	return nil
}

func (m *MockTaskStore) GetByNumber(ctx context.Context, projectID uuid.UUID, number int) (*domain.Task, error) {
	m.record("GetByNumber")
	if m.GetByNumberFn != nil {
		return m.GetByNumberFn(ctx, projectID, number)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskKey{projectID, number}]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	m.record("Update")
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := taskKey{task.ProjectID, task.Number}
	if _, ok := m.tasks[k]; !ok {
		return store.ErrTaskNotFound
	}
	cp := *task
	m.tasks[k] = &cp
	return nil
}

func (m *MockTaskStore) Delete(ctx context.Context, projectID uuid.UUID, number int) error {
	m.record("Delete")
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, projectID, number)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := taskKey{projectID, number}
	if _, ok := m.tasks[k]; !ok {
		return store.ErrTaskNotFound
	}
	delete(m.tasks, k)
	return nil
}

func (m *MockTaskStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Task, error) {
	m.record("ListByProject")
	if m.ListByProjectFn != nil {
		return m.ListByProjectFn(ctx, projectID)
	}
	return m.filter(func(t *domain.Task) bool { return t.ProjectID == projectID }), nil
}

func (m *MockTaskStore) ListByAssignee(ctx context.Context, projectID uuid.UUID, assignee string) ([]domain.Task, error) {
	m.record("ListByAssignee")
	if m.ListByAssigneeFn != nil {
		return m.ListByAssigneeFn(ctx, projectID, assignee)
	}
	return m.filter(func(t *domain.Task) bool {
		return t.ProjectID == projectID && t.Assignee == assignee
	}), nil
}

func (m *MockTaskStore) UnassignUser(ctx context.Context, projectID uuid.UUID, userName string) (int64, error) {
	m.record("UnassignUser")
	if m.UnassignUserFn != nil {
		return m.UnassignUserFn(ctx, projectID, userName)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, t := range m.tasks {
		if t.ProjectID == projectID && t.Assignee == userName {
			t.Assignee = ""
			n++
		}
	}
	return n, nil
}

// WithTx returns the same mock.
func (m *MockTaskStore) WithTx(_ *sql.Tx) store.TaskStore {
	return m
}

func (m *MockTaskStore) filter(keep func(*domain.Task) bool) []domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []domain.Task{}
	for _, t := range m.tasks {
		if keep(t) {
			result = append(result, *t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Number < result[j].Number })
	return result
}
