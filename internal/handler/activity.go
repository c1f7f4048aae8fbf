package handler

import (
	"net/http"
	"strconv"

	"github.com/dragonmail/dragonmail/internal/middleware"
	"github.com/dragonmail/dragonmail/internal/model"
	"github.com/dragonmail/dragonmail/internal/repository"
)

// ListActivity returns activity records newest first. Optional query
// parameters: type, user, limit. Non-admins only ever see their own
// records regardless of the user parameter.
func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.activityFilter(w, r)
	if !ok {
		return
	}

	records, err := h.activitySvc.List(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list activity")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list activity")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// ActivityStats returns the aggregated dashboard counters
func (h *Handler) ActivityStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.activitySvc.Stats(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to compute stats")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ExportActivity streams the matching records as a file download. The
// format query parameter selects JSON (default) or CSV.
func (h *Handler) ExportActivity(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.activityFilter(w, r)
	if !ok {
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="activity_log.json"`)
		if err := h.activitySvc.ExportJSON(r.Context(), w, filter); err != nil {
			h.log.Error().Err(err).Msg("failed to export activity")
		}
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="activity_log.csv"`)
		if err := h.activitySvc.ExportCSV(r.Context(), w, filter); err != nil {
			h.log.Error().Err(err).Msg("failed to export activity")
		}
	default:
		writeError(w, http.StatusBadRequest, "validation_error", "format must be json or csv")
	}
}

// activityFilter builds the record filter from query parameters. Non-admins
// are always restricted to their own records.
func (h *Handler) activityFilter(w http.ResponseWriter, r *http.Request) (repository.ActivityFilter, bool) {
	filter := repository.ActivityFilter{
		Channel: model.Channel(r.URL.Query().Get("type")),
		User:    r.URL.Query().Get("user"),
	}
	if middleware.GetRole(r.Context()) != model.RoleAdmin {
		filter.User = middleware.GetUsername(r.Context())
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "validation_error", "limit must be a non-negative integer")
			return repository.ActivityFilter{}, false
		}
		filter.Limit = limit
	}
	return filter, true
}

// ClearActivity wipes the activity log. Admin only.
func (h *Handler) ClearActivity(w http.ResponseWriter, r *http.Request) {
	if err := h.activitySvc.Clear(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("failed to clear activity")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to clear activity")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
