package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	driverErr := errors.New("UNIQUE constraint failed: users.username")

	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("todo", "5"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("userId", "userId is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Persistence wraps ErrPersistence",
			err:       Persistence("inserting user", driverErr),
			target:    ErrPersistence,
			wantMatch: true,
		},
		{
			name:      "Persistence exposes its cause",
			err:       Persistence("inserting user", driverErr),
			target:    driverErr,
			wantMatch: true,
		},
		{
			name:      "Configuration wraps ErrConfiguration",
			err:       Configuration("DB_URL is not set"),
			target:    ErrConfiguration,
			wantMatch: true,
		},
		{
			name:      "wrapped NotFound still matches",
			err:       fmt.Errorf("updating todo: %w", NotFound("todo", "5")),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrPersistence",
			err:       NotFound("todo", "5"),
			target:    ErrPersistence,
			wantMatch: false,
		},
		{
			name:      "ValidationFailed does NOT match ErrNotFound",
			err:       ValidationFailed("text", "too long"),
			target:    ErrNotFound,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("todo", "5"),
			wantMessage: "todo not found with id 5",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("userId", "userId is required"),
			wantMessage: "userId is required",
		},
		{
			name:        "Persistence appends the cause",
			err:         Persistence("inserting todo", errors.New("database is locked")),
			wantMessage: "inserting todo: database is locked",
		},
		{
			name:        "Persistence without cause",
			err:         Persistence("creating todo failed, no rows affected", nil),
			wantMessage: "creating todo failed, no rows affected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestErrorsAs(t *testing.T) {
	err := fmt.Errorf("service: %w", ValidationFailed("username", "username is required"))

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("errors.As() did not find *AppError in %v", err)
	}
	if appErr.Field != "username" {
		t.Errorf("Field = %q, want %q", appErr.Field, "username")
	}
}
