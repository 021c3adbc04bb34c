package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON or writeError, so the status codes
// and error bodies stay identical across endpoints:
//
//	400 {"error": "userId is required"}
//	404 {"error": "Invalid username or password"}
//	500 {"error": "Failed to create todo", "message": "inserting todo: FOREIGN KEY constraint failed"}

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/todolist/internal/apperror"
)

// ErrorResponse is the error body returned by all API endpoints. Message is
// only present on 500 responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeJSON sends a JSON response with the given status code.
//
// Headers and status MUST be written before the body: once Encode calls
// w.Write the headers are on the wire and later changes are ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a service error onto a status code and body.
//
// ERROR MAPPING:
//
//	apperror.ErrValidation  → 400 {"error": message}
//	apperror.ErrNotFound    → 404 {"error": message}
//	anything else           → 500 {"error": failure, "message": err}
//
// failure names the operation that failed ("Failed to fetch todos").
// errors.Is walks the whole chain, so a service error such as
// fmt.Errorf("updating todo: %w", apperror.NotFound(...)) still maps to 404.
// The 500 message carries the underlying failure text; clients of this API
// display it. 500s are also logged, 400s and 404s are not.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error, failure string) {
	var appErr *apperror.AppError
	message := err.Error()
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	switch {
	case errors.Is(err, apperror.ErrValidation):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: message})
	case errors.Is(err, apperror.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: message})
	default:
		logger.Error(failure, slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   failure,
			Message: message,
		})
	}
}

// decodeJSON reads the request body into dst. A malformed body is a
// validation error so it comes back as 400.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "Invalid JSON body")
	}
	return nil
}

// HandleNotFound answers any route the router does not know, including a
// known path with the wrong method.
//
// RESPONSE: 404 {"error": "Not Found", "message": "Route GET /api/v1/nope not found"}
func HandleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{
		Error:   "Not Found",
		Message: fmt.Sprintf("Route %s %s not found", r.Method, r.URL.RequestURI()),
	})
}
