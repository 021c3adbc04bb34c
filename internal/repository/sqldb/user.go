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

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a user row and returns it as stored.
//
// A duplicate username trips the UNIQUE constraint; the driver error is
// surfaced as a plain persistence failure, not specialised by constraint.
func (db *DB) CreateUser(ctx context.Context, username, passwordHash string) (*model.User, error) {
	var user *model.User

	err := db.withConn(ctx, func(conn *sql.Conn) error {
		id, err := db.insertID(ctx, conn, "user",
			`INSERT INTO users (username, password) VALUES (?, ?)`,
			username, passwordHash,
		)
		if err != nil {
			return err
		}

		user, err = db.userByID(ctx, conn, id)
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.Persistence("creating user failed, row vanished after insert", nil)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetUserByUsername returns the user with the given username, or
// apperror.ErrNotFound. LIMIT 1 makes the first row win should the UNIQUE
// constraint ever be missing.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User

	err := db.withConn(ctx, func(conn *sql.Conn) error {
		err := conn.QueryRowContext(ctx,
			db.dialect.Rebind(`SELECT id, username, password FROM users WHERE username = ? LIMIT 1`),
			username,
		).Scan(&user.ID, &user.Username, &user.PasswordHash)
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.NotFound("user", username)
		}
		if err != nil {
			return apperror.Persistence("looking up user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (db *DB) userByID(ctx context.Context, conn *sql.Conn, id int64) (*model.User, error) {
	var user model.User

	err := conn.QueryRowContext(ctx,
		db.dialect.Rebind(`SELECT id, username, password FROM users WHERE id = ?`),
		id,
	).Scan(&user.ID, &user.Username, &user.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, apperror.Persistence("reading user", err)
	}

	return &user, nil
}
