package mocks

import (
	"context"
	"database/sql"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// MockTaskStore is an in-memory store.TaskStore with the same owner scoping
// and ordering as the PostgreSQL store.
type MockTaskStore struct {
	// Errors returned by every call of the matching method when set
	CreateError error
	ListError   error
	UpdateError error
	DeleteError error

	mu    sync.RWMutex
	tasks map[uuid.UUID]*domain.Task
}

// NewMockTaskStore creates an empty in-memory task store.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// Create implements store.TaskStore.
func (m *MockTaskStore) Create(_ context.Context, task *domain.Task) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	if err := task.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[task.ID] = copyTask(task)
	return nil
}

// GetByID implements store.TaskStore.
func (m *MockTaskStore) GetByID(_ context.Context, userID, id uuid.UUID) (*domain.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return nil, store.ErrTaskNotFound
	}
	return copyTask(t), nil
}

// List implements store.TaskStore.
func (m *MockTaskStore) List(
	_ context.Context,
	userID uuid.UUID,
	filter domain.TaskFilter,
) ([]*domain.Task, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*domain.Task, 0)
	for _, t := range m.tasks {
		if t.UserID == userID && filter.Matches(t) {
			result = append(result, copyTask(t))
		}
	}

	slices.SortFunc(result, func(a, b *domain.Task) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
	return result, nil
}

// Update implements store.TaskStore.
func (m *MockTaskStore) Update(_ context.Context, task *domain.Task) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	if err := task.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return store.ErrTaskNotFound
	}

	updated := copyTask(existing)
	updated.Title = task.Title
	updated.Description = task.Description
	updated.Status = task.Status
	updated.DueDate = task.DueDate
	updated.UpdatedAt = task.UpdatedAt
	m.tasks[task.ID] = copyTask(updated)
	return nil
}

// Delete implements store.TaskStore.
func (m *MockTaskStore) Delete(_ context.Context, userID, id uuid.UUID) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return store.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

// WithTx implements store.TaskStore. The mock has no transactions.
func (m *MockTaskStore) WithTx(_ *sql.Tx) store.TaskStore {
	return m
}

// DeleteByOwner removes every task owned by userID, mimicking the cascade
// that follows a user deletion.
func (m *MockTaskStore) DeleteByOwner(userID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.tasks {
		if t.UserID == userID {
			delete(m.tasks, id)
		}
	}
}

func copyTask(t *domain.Task) *domain.Task {
	c := *t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	return &c
}
