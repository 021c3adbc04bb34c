// Package repository declares the storage contracts the service layer depends on.
// Implementations live in sub-packages (see repository/sqldb).
package repository

import (
	"context"

	"github.com/sakif/todolist/internal/model"
)

// UserRepository persists user accounts.
type UserRepository interface {
	// CreateUser inserts the user and returns the stored row, re-read by its
	// generated id.
	CreateUser(ctx context.Context, username, passwordHash string) (*model.User, error)
	// GetUserByUsername returns apperror.ErrNotFound when no row matches.
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// TodoRepository persists to-do items. Every mutating method is scoped to
// the owning user: a row owned by someone else is reported exactly like a
// row that does not exist.
type TodoRepository interface {
	ListTodos(ctx context.Context, ownerID int64) ([]model.Todo, error)
	CreateTodo(ctx context.Context, todo *model.Todo) (*model.Todo, error)
	UpdateTodo(ctx context.Context, id, ownerID int64, patch model.TodoPatch) (*model.Todo, error)
	DeleteTodo(ctx context.Context, id, ownerID int64) (bool, error)
}
