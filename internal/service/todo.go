package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/todolist/internal/apperror"
	"github.com/sakif/todolist/internal/model"
	"github.com/sakif/todolist/internal/repository"
)

// TodoService enforces owner scoping on to-do items.
type TodoService struct {
	repo   repository.TodoRepository
	logger *slog.Logger
}

// NewTodoService wires the to-do repository.
func NewTodoService(repo repository.TodoRepository, logger *slog.Logger) *TodoService {
	return &TodoService{
		repo:   repo,
		logger: logger,
	}
}

// List returns the owner's items, newest first.
func (s *TodoService) List(ctx context.Context, ownerID int64) ([]model.Todo, error) {
	if err := validateOwner(ownerID); err != nil {
		return nil, err
	}

	todos, err := s.repo.ListTodos(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list todos",
			slog.Int64("userId", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing todos: %w", err)
	}

	return todos, nil
}

// Create stores a new item for ownerID. Text may be empty.
func (s *TodoService) Create(ctx context.Context, text string, done bool, ownerID int64) (*model.Todo, error) {
	if err := validateOwner(ownerID); err != nil {
		return nil, err
	}

	todo, err := s.repo.CreateTodo(ctx, &model.Todo{
		Text:    text,
		Done:    done,
		OwnerID: ownerID,
	})
	if err != nil {
		s.logger.Error("failed to create todo",
			slog.Int64("userId", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating todo: %w", err)
	}

	s.logger.Info("todo created",
		slog.Int64("id", todo.ID),
		slog.Int64("userId", todo.OwnerID),
	)
	return todo, nil
}

// Update applies patch to the item id owned by ownerID. Missing and foreign
// items both return apperror.ErrNotFound.
func (s *TodoService) Update(ctx context.Context, id, ownerID int64, patch model.TodoPatch) (*model.Todo, error) {
	if err := validateOwner(ownerID); err != nil {
		return nil, err
	}

	todo, err := s.repo.UpdateTodo(ctx, id, ownerID, patch)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("failed to update todo",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating todo: %w", err)
	}

	s.logger.Info("todo updated", slog.Int64("id", todo.ID))
	return todo, nil
}

// Delete removes the item id owned by ownerID and reports whether anything
// was removed.
func (s *TodoService) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	if err := validateOwner(ownerID); err != nil {
		return false, err
	}

	deleted, err := s.repo.DeleteTodo(ctx, id, ownerID)
	if err != nil {
		s.logger.Error("failed to delete todo",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return false, fmt.Errorf("deleting todo: %w", err)
	}

	if deleted {
		s.logger.Info("todo deleted", slog.Int64("id", id))
	}
	return deleted, nil
}

func validateOwner(ownerID int64) error {
	if ownerID <= 0 {
		return apperror.ValidationFailed("userId", "userId is required")
	}
	return nil
}
