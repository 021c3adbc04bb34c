package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/todolist/internal/model"
)

// UserService is the subset of service.UserService the handler needs.
// Declaring it here keeps handler tests free of bcrypt and SQL.
type UserService interface {
	Signup(ctx context.Context, username, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (*model.User, error)
}

// UserHandler serves signup and login.
type UserHandler struct {
	users  UserService
	logger *slog.Logger
}

func NewUserHandler(users UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// credentialsRequest is the body of both /signup and /login.
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleSignup registers a new account.
//
// HTTP: POST /api/v1/signup
// REQUEST BODY: {"username": "alice", "password": "pw1"}
// RESPONSE: 201 {"id": 1, "username": "alice"}
func (h *UserHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err, "Failed to sign up")
		return
	}

	user, err := h.users.Signup(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, h.logger, err, "Failed to sign up")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// HandleLogin checks a username/password pair.
//
// HTTP: POST /api/v1/login
// RESPONSE: 200 {"id": 1, "username": "alice"}, or
// 404 {"error": "Invalid username or password"} for any mismatch.
//
// No session or token is issued; the client keeps the returned id and sends
// it as userId on the todo endpoints.
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err, "Failed to log in")
		return
	}

	user, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, h.logger, err, "Failed to log in")
		return
	}

	writeJSON(w, http.StatusOK, user)
}
