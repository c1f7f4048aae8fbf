package handler

import (
	"errors"
	"net/http"

	"github.com/dragonmail/dragonmail/internal/model"
	"github.com/dragonmail/dragonmail/internal/repository"
	"github.com/dragonmail/dragonmail/internal/service"
)

// CreateUserRequest adds an operator account
type CreateUserRequest struct {
	Username string     `json:"username"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

// ChangePasswordRequest replaces an account's password
type ChangePasswordRequest struct {
	Password string `json:"password"`
}

// ListUsers returns all operator accounts. Admin only.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.authSvc.ListUsers(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list users")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// CreateUser adds an operator account. Admin only.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "Invalid request body")
		return
	}
	if req.Role == "" {
		req.Role = model.RoleUser
	}

	err := h.authSvc.CreateUser(r.Context(), req.Username, req.Password, req.Role)
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "username_taken", "Username already taken")
		return
	case errors.Is(err, service.ErrPasswordTooShort), errors.Is(err, repository.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	case err != nil:
		h.log.Error().Err(err).Msg("failed to create user")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to create user")
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// ChangePassword replaces an account's password. Admin only.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "Invalid request body")
		return
	}

	err := h.authSvc.ChangePassword(r.Context(), r.PathValue("username"), req.Password)
	switch {
	case errors.Is(err, service.ErrPasswordTooShort):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "No user with this username")
		return
	case err != nil:
		h.log.Error().Err(err).Msg("failed to change password")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to change password")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteUser removes an operator account. Admin only.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	err := h.authSvc.DeleteUser(r.Context(), r.PathValue("username"))
	switch {
	case errors.Is(err, service.ErrLastAdmin):
		writeError(w, http.StatusConflict, "last_admin", "Cannot remove the last admin account")
		return
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "No user with this username")
		return
	case err != nil:
		h.log.Error().Err(err).Msg("failed to delete user")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to delete user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
