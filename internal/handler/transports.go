package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/dragonmail/dragonmail/internal/model"
	"github.com/dragonmail/dragonmail/internal/repository"
)

// TransportRequest is the create payload. Unlike the model it carries
// the SMTP password, which is never echoed back.
type TransportRequest struct {
	Name     string `json:"name"`
	Server   string `json:"server"`
	Port     int    `json:"port"`
	Email    string `json:"email"`
	Password string `json:"password"`
	UseTLS   bool   `json:"useTls"`
}

func (req *TransportRequest) toModel() model.TransportConfig {
	return model.TransportConfig{
		Name:      req.Name,
		Host:      req.Server,
		Port:      req.Port,
		Email:     req.Email,
		Password:  req.Password,
		UseTLS:    req.UseTLS,
		CreatedAt: time.Now().UTC(),
	}
}

// ListTransports returns the caller's transport profiles without passwords
func (h *Handler) ListTransports(w http.ResponseWriter, r *http.Request) {
	configs, err := h.store.Transports.List(r.Context(), transportOwner(r))
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list transports")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list transports")
		return
	}
	if configs == nil {
		configs = []model.TransportConfig{}
	}
	writeJSON(w, http.StatusOK, configs)
}

// CreateTransport saves a new transport profile for the caller
func (h *Handler) CreateTransport(w http.ResponseWriter, r *http.Request) {
	var req TransportRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "Invalid request body")
		return
	}
	if req.Name == "" || req.Server == "" || req.Port <= 0 || req.Email == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "Name, server, port, and email are required")
		return
	}

	cfg := req.toModel()
	err := h.store.Transports.Save(r.Context(), transportOwner(r), &cfg)
	if errors.Is(err, repository.ErrDuplicate) {
		writeError(w, http.StatusConflict, "duplicate_name", "A transport with this name already exists")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("failed to save transport")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to save transport")
		return
	}
	writeJSON(w, http.StatusCreated, cfg)
}

// DeleteTransport removes a transport profile by name
func (h *Handler) DeleteTransport(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	err := h.store.Transports.Delete(r.Context(), transportOwner(r), name)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "No transport with this name")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("failed to delete transport")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to delete transport")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// resolveTransport picks the transport for a send: an inline config
// wins, otherwise the named profile is loaded from the caller's store.
func (h *Handler) resolveTransport(r *http.Request, name string, inline *TransportRequest) (model.TransportConfig, error) {
	if inline != nil {
		return inline.toModel(), nil
	}
	if name == "" {
		return model.TransportConfig{}, repository.ErrInvalidInput
	}
	cfg, err := h.store.Transports.Get(r.Context(), transportOwner(r), name)
	if err != nil {
		return model.TransportConfig{}, err
	}
	return *cfg, nil
}
