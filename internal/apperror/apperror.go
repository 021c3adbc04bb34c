// Package apperror defines the error kinds shared by every layer of the service.
//
// Each kind is a sentinel (ErrNotFound, ErrValidation, ...) wrapped inside an
// *AppError, so callers can branch with errors.Is while handlers still get a
// human-readable message via errors.As.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("Validation Error")
	ErrPersistence   = errors.New("persistence failure")
	ErrConfiguration = errors.New("configuration error")
)

type AppError struct {
	Err     error  // kind sentinel
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Cause   error  // Optional: underlying driver/IO error
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes both the kind and the cause, so errors.Is matches either.
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Persistence wraps a failure at the datastore boundary. The message keeps the
// driver's text because it is passed through to API clients.
func Persistence(op string, cause error) *AppError {
	msg := op
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", op, cause)
	}
	return &AppError{
		Err:     ErrPersistence,
		Message: msg,
		Cause:   cause,
	}
}

// Configuration reports a setting that could not be resolved at startup.
func Configuration(message string) *AppError {
	return &AppError{
		Err:     ErrConfiguration,
		Message: message,
	}
}
