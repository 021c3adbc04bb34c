package sqldb

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/todolist/internal/apperror"
	"github.com/sakif/todolist/internal/model"
)

func createTestTodo(t *testing.T, db *DB, ownerID int64, text string, done bool) *model.Todo {
	t.Helper()
	todo, err := db.CreateTodo(context.Background(), &model.Todo{Text: text, Done: done, OwnerID: ownerID})
	if err != nil {
		t.Fatalf("failed to create test todo: %v", err)
	}
	return todo
}

func strPtr(s string) *string { return &s }

// =========================================================================
// CREATE
// =========================================================================

func TestCreateTodo(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice")

	todo, err := db.CreateTodo(context.Background(), &model.Todo{Text: "buy milk", OwnerID: owner.ID})
	if err != nil {
		t.Fatalf("CreateTodo() error = %v", err)
	}

	if todo.ID == 0 {
		t.Error("CreateTodo() did not return a generated ID")
	}
	if todo.Text != "buy milk" {
		t.Errorf("Text = %q, want %q", todo.Text, "buy milk")
	}
	if todo.OwnerID != owner.ID {
		t.Errorf("OwnerID = %d, want %d", todo.OwnerID, owner.ID)
	}
	if todo.Done {
		t.Error("Done = true, want false when not set")
	}
}

func TestCreateTodo_DoneExplicitlyTrue(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice")

	todo := createTestTodo(t, db, owner.ID, "already done", true)
	if !todo.Done {
		t.Error("Done = false, want true")
	}
}

func TestCreateTodo_UnknownOwnerFails(t *testing.T) {
	db := newTestDB(t)

	_, err := db.CreateTodo(context.Background(), &model.Todo{Text: "orphan", OwnerID: 999})
	if !errors.Is(err, apperror.ErrPersistence) {
		t.Errorf("error = %v, want ErrPersistence (foreign key)", err)
	}
}

// =========================================================================
// LIST
// =========================================================================

func TestListTodos_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice")

	first := createTestTodo(t, db, owner.ID, "one", false)
	second := createTestTodo(t, db, owner.ID, "two", false)
	third := createTestTodo(t, db, owner.ID, "three", false)

	todos, err := db.ListTodos(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("ListTodos() error = %v", err)
	}

	want := []int64{third.ID, second.ID, first.ID}
	if len(todos) != len(want) {
		t.Fatalf("len(todos) = %d, want %d", len(todos), len(want))
	}
	for i, id := range want {
		if todos[i].ID != id {
			t.Errorf("todos[%d].ID = %d, want %d", i, todos[i].ID, id)
		}
	}
}

func TestListTodos_ScopedToOwner(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	createTestTodo(t, db, alice.ID, "alice's", false)
	createTestTodo(t, db, bob.ID, "bob's", false)

	todos, err := db.ListTodos(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("ListTodos() error = %v", err)
	}
	if len(todos) != 1 || todos[0].Text != "alice's" {
		t.Errorf("ListTodos(alice) = %+v, want only alice's item", todos)
	}
}

func TestListTodos_EmptyIsNotNil(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice")

	todos, err := db.ListTodos(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("ListTodos() error = %v", err)
	}
	if todos == nil {
		t.Error("ListTodos() returned nil, want empty slice")
	}
	if len(todos) != 0 {
		t.Errorf("len(todos) = %d, want 0", len(todos))
	}
}

// =========================================================================
// UPDATE
// =========================================================================

func TestUpdateTodo_TextAndDone(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice")
	todo := createTestTodo(t, db, owner.ID, "old", false)

	updated, err := db.UpdateTodo(context.Background(), todo.ID, owner.ID,
		model.TodoPatch{Text: strPtr("new"), Done: true})
	if err != nil {
		t.Fatalf("UpdateTodo() error = %v", err)
	}

	if updated.Text != "new" {
		t.Errorf("Text = %q, want %q", updated.Text, "new")
	}
	if !updated.Done {
		t.Error("Done = false, want true")
	}
	if updated.ID != todo.ID {
		t.Errorf("ID = %d, want %d", updated.ID, todo.ID)
	}
}

func TestUpdateTodo_NilTextLeavesContent(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice")
	todo := createTestTodo(t, db, owner.ID, "keep me", false)

	updated, err := db.UpdateTodo(context.Background(), todo.ID, owner.ID, model.TodoPatch{Done: true})
	if err != nil {
		t.Fatalf("UpdateTodo() error = %v", err)
	}

	if updated.Text != "keep me" {
		t.Errorf("Text = %q, want unchanged %q", updated.Text, "keep me")
	}
	if !updated.Done {
		t.Error("Done = false, want true")
	}
}

// Omitting done in a patch writes false, even over a row that was done.
func TestUpdateTodo_DoneAlwaysWritten(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice")
	todo := createTestTodo(t, db, owner.ID, "finished", true)

	updated, err := db.UpdateTodo(context.Background(), todo.ID, owner.ID,
		model.TodoPatch{Text: strPtr("renamed")})
	if err != nil {
		t.Fatalf("UpdateTodo() error = %v", err)
	}

	if updated.Done {
		t.Error("Done = true, want false after a patch without done")
	}
	if updated.Text != "renamed" {
		t.Errorf("Text = %q, want %q", updated.Text, "renamed")
	}
}

func TestUpdateTodo_SameValuesStillFound(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice")
	todo := createTestTodo(t, db, owner.ID, "same", false)

	if _, err := db.UpdateTodo(context.Background(), todo.ID, owner.ID, model.TodoPatch{}); err != nil {
		t.Errorf("UpdateTodo() with unchanged values error = %v", err)
	}
}

func TestUpdateTodo_OtherOwnerLooksMissing(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner")
	intruder := createTestUser(t, db, "intruder")
	todo := createTestTodo(t, db, owner.ID, "private", true)

	_, wrongOwnerErr := db.UpdateTodo(context.Background(), todo.ID, intruder.ID,
		model.TodoPatch{Text: strPtr("hijacked")})
	_, missingErr := db.UpdateTodo(context.Background(), 999, owner.ID,
		model.TodoPatch{Text: strPtr("hijacked")})

	if !errors.Is(wrongOwnerErr, apperror.ErrNotFound) {
		t.Errorf("wrong owner error = %v, want ErrNotFound", wrongOwnerErr)
	}
	if !errors.Is(missingErr, apperror.ErrNotFound) {
		t.Errorf("missing id error = %v, want ErrNotFound", missingErr)
	}

	// The row must be untouched.
	todos, err := db.ListTodos(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("ListTodos() error = %v", err)
	}
	if todos[0].Text != "private" || !todos[0].Done {
		t.Errorf("row changed by a foreign owner: %+v", todos[0])
	}
}

// =========================================================================
// DELETE
// =========================================================================

func TestDeleteTodo_SecondCallReportsFalse(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice")
	todo := createTestTodo(t, db, owner.ID, "temp", false)

	deleted, err := db.DeleteTodo(context.Background(), todo.ID, owner.ID)
	if err != nil {
		t.Fatalf("first DeleteTodo() error = %v", err)
	}
	if !deleted {
		t.Error("first DeleteTodo() = false, want true")
	}

	deleted, err = db.DeleteTodo(context.Background(), todo.ID, owner.ID)
	if err != nil {
		t.Fatalf("second DeleteTodo() error = %v", err)
	}
	if deleted {
		t.Error("second DeleteTodo() = true, want false")
	}
}

func TestDeleteTodo_OtherOwnerLooksMissing(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner")
	intruder := createTestUser(t, db, "intruder")
	todo := createTestTodo(t, db, owner.ID, "private", false)

	deleted, err := db.DeleteTodo(context.Background(), todo.ID, intruder.ID)
	if err != nil || deleted {
		t.Errorf("DeleteTodo(wrong owner) = (%v, %v), want (false, nil)", deleted, err)
	}

	deleted, err = db.DeleteTodo(context.Background(), 999, owner.ID)
	if err != nil || deleted {
		t.Errorf("DeleteTodo(missing id) = (%v, %v), want (false, nil)", deleted, err)
	}

	todos, err := db.ListTodos(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("ListTodos() error = %v", err)
	}
	if len(todos) != 1 {
		t.Errorf("len(todos) = %d, want 1 (row must survive)", len(todos))
	}
}

func TestDeleteTodo_IDsAreNotReused(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice")
	todo := createTestTodo(t, db, owner.ID, "gone soon", false)

	if _, err := db.DeleteTodo(context.Background(), todo.ID, owner.ID); err != nil {
		t.Fatalf("DeleteTodo() error = %v", err)
	}

	next := createTestTodo(t, db, owner.ID, "next", false)
	if next.ID <= todo.ID {
		t.Errorf("new ID %d reused or below deleted ID %d", next.ID, todo.ID)
	}
}
