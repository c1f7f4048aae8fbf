package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/dragonmail/dragonmail/internal/middleware"
	"github.com/dragonmail/dragonmail/internal/model"
	"github.com/dragonmail/dragonmail/internal/repository"
	"github.com/dragonmail/dragonmail/internal/service"
)

// CreateTaskRequest schedules one deferred send
type CreateTaskRequest struct {
	Channel       model.Channel     `json:"type"`
	Recipient     string            `json:"recipient"`
	Subject       string            `json:"subject"`
	Body          string            `json:"body"`
	Link          string            `json:"customLink"`
	Carrier       string            `json:"carrier"`
	Transport     string            `json:"transport"`
	SMTPConfig    *TransportRequest `json:"smtpConfig"`
	ScheduledTime time.Time         `json:"scheduledTime"`
}

// ListTasks returns every scheduled task, pending and completed
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.scheduleSvc.List(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list tasks")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list tasks")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// CreateTask schedules a new task
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "Invalid request body")
		return
	}

	task := &model.ScheduledTask{
		Channel:       req.Channel,
		Recipient:     req.Recipient,
		Subject:       req.Subject,
		Body:          req.Body,
		Link:          req.Link,
		Carrier:       req.Carrier,
		ScheduledTime: req.ScheduledTime,
		CreatedBy:     middleware.GetUsername(r.Context()),
	}
	if req.Channel == model.ChannelEmail || req.Channel == model.ChannelSMS {
		transport, err := h.resolveTransport(r, req.Transport, req.SMTPConfig)
		if err != nil {
			writeTransportError(w, err)
			return
		}
		task.Transport = &transport
	}

	err := h.scheduleSvc.Add(r.Context(), task)
	switch {
	case errors.Is(err, service.ErrMissingRecipient),
		errors.Is(err, service.ErrMissingTransport),
		errors.Is(err, service.ErrUnknownChannel):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	case err != nil:
		h.log.Error().Err(err).Msg("failed to schedule task")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to schedule task")
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// DeleteTask removes a task by ID
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	err := h.scheduleSvc.Delete(r.Context(), r.PathValue("id"))
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "No task with this ID")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("failed to delete task")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to delete task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RunDueTasks executes every pending task whose time has passed
func (h *Handler) RunDueTasks(w http.ResponseWriter, r *http.Request) {
	results, err := h.scheduleSvc.RunDue(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to run due tasks")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to run due tasks")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"executed": len(results),
		"results":  results,
	})
}
