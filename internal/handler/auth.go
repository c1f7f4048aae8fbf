package handler

import (
	"errors"
	"net/http"

	"github.com/dragonmail/dragonmail/internal/middleware"
	"github.com/dragonmail/dragonmail/internal/service"
)

// LoginRequest contains the login credentials
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates an operator and issues a session token
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "Username and password are required")
		return
	}

	session, user, err := h.authSvc.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("login failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "Login failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session": session,
		"user":    user,
	})
}

// Me returns the authenticated operator's identity
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"username": middleware.GetUsername(r.Context()),
		"role":     middleware.GetRole(r.Context()),
	})
}
