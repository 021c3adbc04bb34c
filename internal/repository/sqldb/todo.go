package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/sakif/todolist/internal/apperror"
	"github.com/sakif/todolist/internal/model"
	"github.com/sakif/todolist/internal/repository"
)

// compile-time check that *DB implements repository.TodoRepository
var _ repository.TodoRepository = (*DB)(nil)

const todoColumns = `id, content, done, user_id`

// ListTodos returns the owner's items, newest (highest id) first. An owner
// with no items gets an empty, non-nil slice.
func (db *DB) ListTodos(ctx context.Context, ownerID int64) ([]model.Todo, error) {
	todos := make([]model.Todo, 0)

	err := db.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx,
			db.dialect.Rebind(`SELECT `+todoColumns+` FROM todos WHERE user_id = ? ORDER BY id DESC`),
			ownerID,
		)
		if err != nil {
			return apperror.Persistence("listing todos", err)
		}
		defer rows.Close()

		for rows.Next() {
			var t model.Todo
			if err := rows.Scan(&t.ID, &t.Text, &t.Done, &t.OwnerID); err != nil {
				return apperror.Persistence("scanning todo row", err)
			}
			todos = append(todos, t)
		}
		if err := rows.Err(); err != nil {
			return apperror.Persistence("iterating todos", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return todos, nil
}

// CreateTodo inserts the item and returns the stored row with its new id.
// The caller must have validated that OwnerID is set.
func (db *DB) CreateTodo(ctx context.Context, todo *model.Todo) (*model.Todo, error) {
	var created *model.Todo

	err := db.withConn(ctx, func(conn *sql.Conn) error {
		id, err := db.insertID(ctx, conn, "todo",
			`INSERT INTO todos (content, done, user_id) VALUES (?, ?, ?)`,
			todo.Text, todo.Done, todo.OwnerID,
		)
		if err != nil {
			return err
		}

		created, err = db.todoByID(ctx, conn, id)
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.Persistence("creating todo failed, row vanished after insert", nil)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateTodo applies a partial update to the item matching both id and
// ownerID.
//
// content is written only when patch.Text is set. done is always written:
// a bool cannot tell "omitted" from "false", so omission means false.
//
// Zero affected rows means the id does not exist or belongs to another
// owner; both come back as apperror.ErrNotFound. On success the row is
// re-read by id alone.
func (db *DB) UpdateTodo(ctx context.Context, id, ownerID int64, patch model.TodoPatch) (*model.Todo, error) {
	b := newUpdate("todos")
	if patch.Text != nil {
		b.Set("content", *patch.Text)
	}
	b.Set("done", patch.Done)
	b.Where("id", id).Where("user_id", ownerID)

	query, args, err := b.Build(db.dialect)
	if err != nil {
		return nil, apperror.Persistence("building todo update", err)
	}

	var updated *model.Todo
	err = db.withConn(ctx, func(conn *sql.Conn) error {
		result, err := conn.ExecContext(ctx, query, args...)
		if err != nil {
			return apperror.Persistence("updating todo", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return apperror.Persistence("checking rows affected", err)
		}
		if affected == 0 {
			return apperror.NotFound("todo", strconv.FormatInt(id, 10))
		}

		updated, err = db.todoByID(ctx, conn, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteTodo removes the item matching both id and ownerID and reports
// whether a row was removed. A missing id and a foreign owner both yield
// false with a nil error.
func (db *DB) DeleteTodo(ctx context.Context, id, ownerID int64) (bool, error) {
	var deleted bool

	err := db.withConn(ctx, func(conn *sql.Conn) error {
		result, err := conn.ExecContext(ctx,
			db.dialect.Rebind(`DELETE FROM todos WHERE id = ? AND user_id = ?`),
			id, ownerID,
		)
		if err != nil {
			return apperror.Persistence("deleting todo", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return apperror.Persistence("checking rows affected", err)
		}
		deleted = affected > 0
		return nil
	})
	if err != nil {
		return false, err
	}

	return deleted, nil
}

func (db *DB) todoByID(ctx context.Context, conn *sql.Conn, id int64) (*model.Todo, error) {
	var t model.Todo

	err := conn.QueryRowContext(ctx,
		db.dialect.Rebind(`SELECT `+todoColumns+` FROM todos WHERE id = ?`),
		id,
	).Scan(&t.ID, &t.Text, &t.Done, &t.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("todo", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, apperror.Persistence("reading todo", err)
	}

	return &t, nil
}
