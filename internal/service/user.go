// Package service contains the business rules of the to-do backend.
//
//	Handler (HTTP) → Service (validation, hashing, ownership) → Repository (SQL)
//
// Services accept plain Go values, never *http.Request, and return
// apperror kinds that the handler layer maps onto status codes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/todolist/internal/apperror"
	"github.com/sakif/todolist/internal/auth"
	"github.com/sakif/todolist/internal/model"
	"github.com/sakif/todolist/internal/repository"
)

// errInvalidCredentials is the single outcome for an unknown username and a
// wrong password.
var errInvalidCredentials = &apperror.AppError{
	Err:     apperror.ErrNotFound,
	Message: "Invalid username or password",
}

// UserService handles signup and login.
type UserService struct {
	users  repository.UserRepository
	hasher *auth.PasswordHasher
	logger *slog.Logger

	// dummyHash is compared against when the username is unknown, so both
	// failure paths spend the same bcrypt time.
	dummyHash string
}

// NewUserService wires the user repository and password hasher.
func NewUserService(users repository.UserRepository, hasher *auth.PasswordHasher, logger *slog.Logger) *UserService {
	dummy, err := hasher.Hash("todolist-dummy-password")
	if err != nil {
		logger.Warn("could not precompute dummy password hash", slog.String("error", err.Error()))
	}
	return &UserService{
		users:     users,
		hasher:    hasher,
		logger:    logger,
		dummyHash: dummy,
	}
}

// Signup stores a new user with a bcrypt hash of the password and returns the
// stored record. A taken username fails as a persistence error.
func (s *UserService) Signup(ctx context.Context, username, password string) (*model.User, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, username, hash)
	if err != nil {
		s.logger.Error("failed to create user",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("signing up %q: %w", username, err)
	}

	s.logger.Info("user signed up",
		slog.Int64("id", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// Login returns the user whose username matches exactly and whose password
// verifies against the stored hash. Any mismatch is apperror.ErrNotFound.
func (s *UserService) Login(ctx context.Context, username, password string) (*model.User, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, apperror.ErrNotFound) {
		_ = s.hasher.Verify(s.dummyHash, password)
		return nil, errInvalidCredentials
	}
	if err != nil {
		s.logger.Error("failed to look up user",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("logging in %q: %w", username, err)
	}

	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			// A row whose password column is not a bcrypt hash can never match.
			s.logger.Warn("stored password is not a valid hash",
				slog.Int64("id", user.ID),
				slog.String("error", err.Error()),
			)
		}
		return nil, errInvalidCredentials
	}

	s.logger.Info("user logged in", slog.Int64("id", user.ID))
	return user, nil
}

func validateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" {
		return apperror.ValidationFailed("username", "username is required")
	}
	if password == "" {
		return apperror.ValidationFailed("password", "password is required")
	}
	return nil
}
