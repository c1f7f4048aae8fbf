package handler

import (
	"net/http"

	"github.com/dragonmail/dragonmail/internal/gateway"
	"github.com/dragonmail/dragonmail/internal/model"
)

// EmailTemplates returns the built-in email template catalog
func (h *Handler) EmailTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.EmailTemplates)
}

// SMSTemplates returns the built-in SMS template catalog
func (h *Handler) SMSTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.SMSTemplates)
}

// Gateways returns the carrier gateway table, auto entry first
func (h *Handler) Gateways(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, gateway.List())
}

// SMTPPresets returns the well-known SMTP provider defaults
func (h *Handler) SMTPPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.SMTPPresets)
}
