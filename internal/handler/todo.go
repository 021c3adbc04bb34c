package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/todolist/internal/apperror"
	"github.com/sakif/todolist/internal/model"
)

// TodoService is the subset of service.TodoService the handler needs.
type TodoService interface {
	List(ctx context.Context, ownerID int64) ([]model.Todo, error)
	Create(ctx context.Context, text string, done bool, ownerID int64) (*model.Todo, error)
	Update(ctx context.Context, id, ownerID int64, patch model.TodoPatch) (*model.Todo, error)
	Delete(ctx context.Context, id, ownerID int64) (bool, error)
}

// errTodoNotFound is the 404 body for both a missing id and one owned by
// someone else.
var errTodoNotFound = &apperror.AppError{Err: apperror.ErrNotFound, Message: "Todo not found"}

// TodoHandler serves the owner-scoped to-do endpoints.
//
// OWNER PARAMETER:
// Every request names its owner with userId, either as a query parameter
// (?userId=2) or, for POST and PUT, in the JSON body. The value is trusted
// as given: there is no session, so it only scopes queries.
type TodoHandler struct {
	todos  TodoService
	logger *slog.Logger
}

func NewTodoHandler(todos TodoService, logger *slog.Logger) *TodoHandler {
	return &TodoHandler{todos: todos, logger: logger}
}

// createTodoRequest is the POST body. UserID is a pointer so an absent field
// falls back to the query parameter.
type createTodoRequest struct {
	Text   string `json:"text"`
	Done   bool   `json:"done"`
	UserID *int64 `json:"userId"`
}

// updateTodoRequest is the PUT body. Text is a pointer because an omitted
// text leaves the stored one alone; Done is a plain bool because it is always
// written, and an omitted done is false.
type updateTodoRequest struct {
	Text   *string `json:"text"`
	Done   bool    `json:"done"`
	UserID *int64  `json:"userId"`
}

// HandleList returns the owner's items, newest first.
//
// HTTP: GET /api/v1/todos?userId=2
// RESPONSE: 200 [{"id": 3, "text": "...", "done": false, "userId": 2}, ...]
func (h *TodoHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromQuery(r)
	if err != nil {
		writeError(w, h.logger, err, "Failed to fetch todos")
		return
	}

	todos, err := h.todos.List(r.Context(), ownerID)
	if err != nil {
		writeError(w, h.logger, err, "Failed to fetch todos")
		return
	}

	writeJSON(w, http.StatusOK, todos)
}

// HandleCreate stores a new item.
//
// HTTP: POST /api/v1/todos
// REQUEST BODY: {"text": "buy milk", "done": false, "userId": 2}
// RESPONSE: 201 with the stored item, including its generated id
func (h *TodoHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createTodoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err, "Failed to create todo")
		return
	}

	ownerID, err := ownerFromBodyOrQuery(req.UserID, r)
	if err != nil {
		writeError(w, h.logger, err, "Failed to create todo")
		return
	}

	todo, err := h.todos.Create(r.Context(), req.Text, req.Done, ownerID)
	if err != nil {
		writeError(w, h.logger, err, "Failed to create todo")
		return
	}

	writeJSON(w, http.StatusCreated, todo)
}

// HandleUpdate applies a partial update.
//
// HTTP: PUT /api/v1/todos/{id}?userId=2
// REQUEST BODY: {"text": "renamed", "done": true}
//
// Sending {"text": "renamed"} alone also sets done to false.
func (h *TodoHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := todoIDFromPath(r)
	if err != nil {
		writeError(w, h.logger, err, "Failed to update todo")
		return
	}

	var req updateTodoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err, "Failed to update todo")
		return
	}

	ownerID, err := ownerFromBodyOrQuery(req.UserID, r)
	if err != nil {
		writeError(w, h.logger, err, "Failed to update todo")
		return
	}

	todo, err := h.todos.Update(r.Context(), id, ownerID, model.TodoPatch{
		Text: req.Text,
		Done: req.Done,
	})
	if errors.Is(err, apperror.ErrNotFound) {
		writeError(w, h.logger, errTodoNotFound, "Failed to update todo")
		return
	}
	if err != nil {
		writeError(w, h.logger, err, "Failed to update todo")
		return
	}

	writeJSON(w, http.StatusOK, todo)
}

// HandleDelete removes one item.
//
// HTTP: DELETE /api/v1/todos/{id}?userId=2
// RESPONSE: 200 {"success": true, "message": "Todo deleted successfully"}
func (h *TodoHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := todoIDFromPath(r)
	if err != nil {
		writeError(w, h.logger, err, "Failed to delete todo")
		return
	}

	ownerID, err := ownerFromQuery(r)
	if err != nil {
		writeError(w, h.logger, err, "Failed to delete todo")
		return
	}

	deleted, err := h.todos.Delete(r.Context(), id, ownerID)
	if err != nil {
		writeError(w, h.logger, err, "Failed to delete todo")
		return
	}
	if !deleted {
		writeError(w, h.logger, errTodoNotFound, "Failed to delete todo")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Todo deleted successfully",
	})
}

// todoIDFromPath parses the {id} URL parameter. Only a value that is not an
// integer is rejected here; a well-formed id that matches no row (0, -1,
// 999) is left to the store and comes back as 404.
func todoIDFromPath(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperror.ValidationFailed("id", "Invalid todo id: "+raw)
	}
	return id, nil
}

// ownerFromQuery parses ?userId=. A missing value comes back as 0, which the
// service rejects as "userId is required".
func ownerFromQuery(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("userId"))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperror.ValidationFailed("userId", "Invalid userId: "+raw)
	}
	return checkOwner(id)
}

func ownerFromBodyOrQuery(body *int64, r *http.Request) (int64, error) {
	if body != nil {
		return checkOwner(*body)
	}
	return ownerFromQuery(r)
}

// checkOwner rejects negative ids, which can never name a user.
func checkOwner(id int64) (int64, error) {
	if id < 0 {
		return 0, apperror.ValidationFailed("userId", "Invalid userId: "+strconv.FormatInt(id, 10))
	}
	return id, nil
}
