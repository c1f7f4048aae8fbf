package handler

import (
	"errors"
	"net/http"

	"github.com/dragonmail/dragonmail/internal/dispatch"
	"github.com/dragonmail/dragonmail/internal/model"
	"github.com/dragonmail/dragonmail/internal/repository"
)

// AzureSMSSettingsRequest updates the cloud SMS credential
type AzureSMSSettingsRequest struct {
	ConnectionString string `json:"connectionString"`
	PhoneNumber      string `json:"phoneNumber"`
}

// GetAzureSMSSettings reports whether the cloud SMS credential is set.
// The connection string itself is never returned.
func (h *Handler) GetAzureSMSSettings(w http.ResponseWriter, r *http.Request) {
	cred, err := h.store.SMSCredentials.Get(r.Context())
	if errors.Is(err, repository.ErrNotFound) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"configured": false})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load SMS credential")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"configured":  true,
		"phoneNumber": cred.PhoneNumber,
	})
}

// UpdateAzureSMSSettings stores the credential and swaps the live SMS
// provider so the next send uses it. Admin only.
func (h *Handler) UpdateAzureSMSSettings(w http.ResponseWriter, r *http.Request) {
	var req AzureSMSSettingsRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "Invalid request body")
		return
	}
	cred := model.AzureSMSCredential{
		ConnectionString: req.ConnectionString,
		PhoneNumber:      req.PhoneNumber,
	}
	if !cred.Configured() {
		writeError(w, http.StatusBadRequest, "validation_error", "Connection string and phone number are required")
		return
	}

	provider, err := dispatch.NewAzureSMS(cred)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "Invalid connection string")
		return
	}

	if err := h.store.SMSCredentials.Save(r.Context(), &cred); err != nil {
		h.log.Error().Err(err).Msg("failed to save SMS credential")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to save settings")
		return
	}
	h.dispatcher.SetSmsProvider(provider)
	h.log.Info().Msg("Azure SMS credential updated")

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"configured":  true,
		"phoneNumber": cred.PhoneNumber,
	})
}
