package handler

import (
	"errors"
	"net/http"

	"github.com/dragonmail/dragonmail/internal/dispatch"
	"github.com/dragonmail/dragonmail/internal/middleware"
	"github.com/dragonmail/dragonmail/internal/repository"
	"github.com/dragonmail/dragonmail/internal/service"
)

// PreviewRequest asks for pattern tokens to be resolved without sending
type PreviewRequest struct {
	Text string `json:"text"`
	Link string `json:"customLink"`
}

// Preview resolves pattern tokens in a draft message
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "Invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"preview": h.sendSvc.Preview(req.Text, req.Link)})
}

// AttachmentRequest is one attachment; Data is base64 in the JSON body.
type AttachmentRequest struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

// SendEmailRequest is one email batch
type SendEmailRequest struct {
	Transport   string              `json:"transport"`
	SMTPConfig  *TransportRequest   `json:"smtpConfig"`
	Recipients  []string            `json:"recipients"`
	Subject     string              `json:"subject"`
	Body        string              `json:"body"`
	HTML        bool                `json:"html"`
	Link        string              `json:"customLink"`
	Attachments []AttachmentRequest `json:"attachments"`
	FromName    string              `json:"fromName"`
	ReplyTo     string              `json:"replyTo"`
}

// SendEmail sends an email batch through the caller's SMTP transport
func (h *Handler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req SendEmailRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "Invalid request body")
		return
	}
	if len(req.Recipients) == 0 {
		writeError(w, http.StatusBadRequest, "validation_error", "At least one recipient is required")
		return
	}

	transport, err := h.resolveTransport(r, req.Transport, req.SMTPConfig)
	if err != nil {
		writeTransportError(w, err)
		return
	}

	var attachments []dispatch.Attachment
	for _, a := range req.Attachments {
		attachments = append(attachments, dispatch.Attachment{Name: a.Name, Data: a.Data})
	}

	report, err := h.sendSvc.SendEmail(r.Context(), service.EmailSendRequest{
		Transport:   transport,
		Recipients:  req.Recipients,
		Subject:     req.Subject,
		Body:        req.Body,
		HTML:        req.HTML,
		Link:        req.Link,
		Attachments: attachments,
		FromName:    req.FromName,
		ReplyTo:     req.ReplyTo,
		User:        middleware.GetUsername(r.Context()),
	})
	if err != nil {
		h.log.Error().Err(err).Msg("email batch failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "Send failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// SMSRecipientRequest pairs a phone number with its carrier
type SMSRecipientRequest struct {
	Phone   string `json:"phone"`
	Carrier string `json:"carrier"`
}

// SendSMSRequest is one gateway SMS batch
type SendSMSRequest struct {
	Transport  string                `json:"transport"`
	SMTPConfig *TransportRequest     `json:"smtpConfig"`
	Recipients []SMSRecipientRequest `json:"recipients"`
	Message    string                `json:"message"`
	Link       string                `json:"customLink"`
}

// SendSMS sends an SMS batch through the carrier email gateways
func (h *Handler) SendSMS(w http.ResponseWriter, r *http.Request) {
	var req SendSMSRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "Invalid request body")
		return
	}
	if len(req.Recipients) == 0 || req.Message == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "Recipients and message are required")
		return
	}

	transport, err := h.resolveTransport(r, req.Transport, req.SMTPConfig)
	if err != nil {
		writeTransportError(w, err)
		return
	}

	recipients := make([]dispatch.SMSRecipient, 0, len(req.Recipients))
	for _, rec := range req.Recipients {
		recipients = append(recipients, dispatch.SMSRecipient{Phone: rec.Phone, Carrier: rec.Carrier})
	}

	report, err := h.sendSvc.SendSMS(r.Context(), service.SMSSendRequest{
		Transport:  transport,
		Recipients: recipients,
		Message:    req.Message,
		Link:       req.Link,
		User:       middleware.GetUsername(r.Context()),
	})
	if err != nil {
		h.log.Error().Err(err).Msg("SMS batch failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "Send failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// SendAzureSMSRequest is one direct cloud SMS batch
type SendAzureSMSRequest struct {
	Recipients []string `json:"recipients"`
	Message    string   `json:"message"`
	Link       string   `json:"customLink"`
}

// SendAzureSMS sends an SMS batch through Azure Communication Services
func (h *Handler) SendAzureSMS(w http.ResponseWriter, r *http.Request) {
	var req SendAzureSMSRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "Invalid request body")
		return
	}
	if len(req.Recipients) == 0 || req.Message == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "Recipients and message are required")
		return
	}

	report, err := h.sendSvc.SendAzureSMS(r.Context(), service.AzureSMSSendRequest{
		Recipients: req.Recipients,
		Message:    req.Message,
		Link:       req.Link,
		User:       middleware.GetUsername(r.Context()),
	})
	if err != nil {
		h.log.Error().Err(err).Msg("Azure SMS batch failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "Send failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeTransportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "validation_error", "A transport name or inline SMTP config is required")
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "No transport with this name")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load transport")
	}
}
