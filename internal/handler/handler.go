package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dragonmail/dragonmail/internal/config"
	"github.com/dragonmail/dragonmail/internal/database"
	"github.com/dragonmail/dragonmail/internal/dispatch"
	"github.com/dragonmail/dragonmail/internal/logger"
	"github.com/dragonmail/dragonmail/internal/middleware"
	"github.com/dragonmail/dragonmail/internal/model"
	"github.com/dragonmail/dragonmail/internal/repository"
	"github.com/dragonmail/dragonmail/internal/service"
)

// Handler holds all HTTP handlers. db and rdb are nil when the file
// backend runs without Postgres or Redis.
type Handler struct {
	db          *database.Postgres
	rdb         *database.Redis
	log         *logger.Logger
	cfg         *config.Config
	store       *repository.Store
	dispatcher  *dispatch.Dispatcher
	authSvc     *service.AuthService
	sendSvc     *service.SendService
	activitySvc *service.ActivityService
	scheduleSvc *service.ScheduleService
}

// New creates a new Handler instance
func New(db *database.Postgres, rdb *database.Redis, log *logger.Logger, cfg *config.Config, store *repository.Store, dispatcher *dispatch.Dispatcher, authSvc *service.AuthService, sendSvc *service.SendService, activitySvc *service.ActivityService, scheduleSvc *service.ScheduleService) *Handler {
	return &Handler{
		db:          db,
		rdb:         rdb,
		log:         log,
		cfg:         cfg,
		store:       store,
		dispatcher:  dispatcher,
		authSvc:     authSvc,
		sendSvc:     sendSvc,
		activitySvc: activitySvc,
		scheduleSvc: scheduleSvc,
	}
}

// JSON helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	})
}

func readJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.New("request body is empty")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// transportOwner maps the authenticated operator to a transport store:
// admins share the main store, everyone else gets a personal one.
func transportOwner(r *http.Request) string {
	if middleware.GetRole(r.Context()) == model.RoleAdmin {
		return repository.MainStore
	}
	return middleware.GetUsername(r.Context())
}
