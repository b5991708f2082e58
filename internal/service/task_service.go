package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/redact"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// TaskService manages the tasks of a single caller. Every method takes the
// caller's user ID; tasks owned by anyone else are reported as
// store.ErrTaskNotFound.
type TaskService interface {
	// List returns the caller's tasks matching filter, ordered by creation
	// time. An unknown status filter is a *domain.ValidationError.
	List(ctx context.Context, userID uuid.UUID, filter domain.TaskFilter) ([]*domain.Task, error)

	// Create stores a new task owned by userID.
	Create(ctx context.Context, userID uuid.UUID, fields domain.TaskFields) (*domain.Task, error)

	// Get retrieves one of the caller's tasks.
	Get(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)

	// Replace overwrites every client-controlled field of one of the
	// caller's tasks.
	Replace(ctx context.Context, userID, taskID uuid.UUID, fields domain.TaskFields) (*domain.Task, error)

	// Delete removes one of the caller's tasks.
	Delete(ctx context.Context, userID, taskID uuid.UUID) error
}

type taskServiceImpl struct {
	tasks  store.TaskStore
	tx     store.Transactor
	logger *slog.Logger
}

var _ TaskService = (*taskServiceImpl)(nil)

// NewTaskService creates a new TaskService.
func NewTaskService(tasks store.TaskStore, tx store.Transactor, logger *slog.Logger) (TaskService, error) {
	if tasks == nil {
		return nil, fmt.Errorf("task store cannot be nil")
	}
	if tx == nil {
		return nil, fmt.Errorf("transactor cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tasks:  tasks,
		tx:     tx,
		logger: logger.With(slog.String("component", "task_service")),
	}, nil
}

// List implements TaskService.
func (s *taskServiceImpl) List(
	ctx context.Context,
	userID uuid.UUID,
	filter domain.TaskFilter,
) ([]*domain.Task, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, domain.NewValidationError("status",
			"Select a valid choice. "+string(filter.Status)+" is not one of the available choices.")
	}

	tasks, err := s.tasks.List(ctx, userID, filter)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks",
			slog.String("user_id", userID.String()),
			slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Create implements TaskService.
func (s *taskServiceImpl) Create(
	ctx context.Context,
	userID uuid.UUID,
	fields domain.TaskFields,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(userID, fields)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		log.Error("failed to create task",
			slog.String("user_id", userID.String()),
			slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	log.Debug("task created",
		slog.String("user_id", userID.String()),
		slog.String("task_id", task.ID.String()))
	return task, nil
}

// Get implements TaskService.
func (s *taskServiceImpl) Get(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// Replace implements TaskService. The read and the write run in one
// transaction so a concurrent delete cannot be overwritten.
func (s *taskServiceImpl) Replace(
	ctx context.Context,
	userID, taskID uuid.UUID,
	fields domain.TaskFields,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var replaced *domain.Task
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.tasks
		if tx != nil {
			txStore = s.tasks.WithTx(tx)
		}

		task, err := txStore.GetByID(ctx, userID, taskID)
		if err != nil {
			return err
		}
		if err := task.Replace(fields); err != nil {
			return err
		}
		if err := txStore.Update(ctx, task); err != nil {
			return err
		}
		replaced = task
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) || errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		log.Error("failed to replace task",
			slog.String("task_id", taskID.String()),
			slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to replace task: %w", err)
	}

	return replaced, nil
}

// Delete implements TaskService.
func (s *taskServiceImpl) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	if err := s.tasks.Delete(ctx, userID, taskID); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return err
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete task",
			slog.String("task_id", taskID.String()),
			slog.String("error", redact.Error(err)))
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}
