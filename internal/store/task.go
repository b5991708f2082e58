package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
//
// Every read and write is scoped by the owner's user ID. A task that exists
// but belongs to another user is reported exactly like a missing one, with
// ErrTaskNotFound.
type TaskStore interface {
	// Create saves a new task.
	// Returns ErrInvalidEntity if the owner does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves the task with the given ID owned by userID.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error)

	// List returns the owner's tasks matching every applied filter, ordered
	// by creation time. Returns an empty slice, never nil, when nothing matches.
	List(ctx context.Context, userID uuid.UUID, filter domain.TaskFilter) ([]*domain.Task, error)

	// Update overwrites the title, description, status, due date and update
	// timestamp of the task identified by task.ID and task.UserID.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes the task with the given ID owned by userID.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
