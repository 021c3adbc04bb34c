package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strconv"

	"github.com/sakif/todolist/internal/apperror"
	"github.com/sakif/todolist/internal/model"
)

// fakeUserRepo is an in-memory repository.UserRepository.
type fakeUserRepo struct {
	byName map[string]*model.User
	nextID int64
	// set to a non-nil error to simulate a database failure
	createErr error
	getErr    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byName: make(map[string]*model.User)}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, username, passwordHash string) (*model.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, taken := f.byName[username]; taken {
		return nil, apperror.Persistence("inserting user", errUniqueUsername)
	}
	f.nextID++
	u := &model.User{ID: f.nextID, Username: username, PasswordHash: passwordHash}
	f.byName[username] = u
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[username]
	if !ok {
		return nil, apperror.NotFound("user", username)
	}
	copied := *u
	return &copied, nil
}

var errUniqueUsername = errors.New("UNIQUE constraint failed: users.username")

// fakeTodoRepo is an in-memory repository.TodoRepository that mirrors the
// SQL semantics: owner-scoped mutations and done always written.
type fakeTodoRepo struct {
	todos  map[int64]*model.Todo
	nextID int64
	err    error
}

func newFakeTodoRepo() *fakeTodoRepo {
	return &fakeTodoRepo{todos: make(map[int64]*model.Todo)}
}

func (f *fakeTodoRepo) ListTodos(_ context.Context, ownerID int64) ([]model.Todo, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := make([]model.Todo, 0)
	for _, t := range f.todos {
		if t.OwnerID == ownerID {
			result = append(result, *t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (f *fakeTodoRepo) CreateTodo(_ context.Context, todo *model.Todo) (*model.Todo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	stored := *todo
	stored.ID = f.nextID
	f.todos[stored.ID] = &stored
	result := stored
	return &result, nil
}

func (f *fakeTodoRepo) UpdateTodo(_ context.Context, id, ownerID int64, patch model.TodoPatch) (*model.Todo, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.todos[id]
	if !ok || t.OwnerID != ownerID {
		return nil, apperror.NotFound("todo", strconv.FormatInt(id, 10))
	}
	if patch.Text != nil {
		t.Text = *patch.Text
	}
	t.Done = patch.Done
	result := *t
	return &result, nil
}

func (f *fakeTodoRepo) DeleteTodo(_ context.Context, id, ownerID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	t, ok := f.todos[id]
	if !ok || t.OwnerID != ownerID {
		return false, nil
	}
	delete(f.todos, id)
	return true, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
