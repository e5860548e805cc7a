// Package http provides the HTTP handlers for authentication and todos.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/akarpenko/todoapi/internal/common"
	"github.com/akarpenko/todoapi/internal/middleware"
	"github.com/akarpenko/todoapi/internal/models"
)

// UserService defines the authentication operations required by the
// HTTP handlers.
type UserService interface {
	// Register creates a user from credentials and returns it with a
	// freshly issued token.
	Register(ctx context.Context, email, password string) (*models.User, string, error)
	// Login resolves a user by credentials and returns a freshly issued
	// token.
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	// Logout removes the presented token from the user's stored list.
	Logout(ctx context.Context, user *models.User, token string) error
}

// UserHandler handles registration, login, identity, and logout requests.
type UserHandler struct {
	// Users performs the underlying authentication operations.
	Users UserService
}

// credentialsRequest is the JSON payload for registration and login.
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// Register handles user registration. The body must carry exactly
// {email, password}; unknown fields are rejected. On success the created
// user is returned and the x-auth response header carries the issued
// token.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req credentialsRequest
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, tok, err := h.Users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case common.IsValidation(err):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, common.ErrDuplicateEmail):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set(middleware.AuthHeader, tok)
	writeJSON(w, http.StatusOK, user)
}

// Login handles credential login. Any failure answers 400 with an empty
// body, without distinguishing unknown email from wrong password. On
// success the x-auth response header carries the issued token.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	user, tok, err := h.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			w.WriteHeader(http.StatusBadRequest)
		} else {
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set(middleware.AuthHeader, tok)
	writeJSON(w, http.StatusOK, user)
}

// Me returns the authenticated identity. Only id and email are
// serialized; the password hash and token list never leave the server.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Logout removes the presented token from the caller's token list and
// answers 200 with an empty body.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	tok := middleware.TokenFromContext(r.Context())
	if user == nil || tok == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if err := h.Users.Logout(r.Context(), user, tok); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
