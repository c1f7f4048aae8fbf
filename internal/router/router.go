package router

import (
	"net/http"
	"time"

	"github.com/dragonmail/dragonmail/internal/auth"
	"github.com/dragonmail/dragonmail/internal/handler"
	"github.com/dragonmail/dragonmail/internal/middleware"
)

// New creates and configures the HTTP router
func New(h *handler.Handler, mw *middleware.Middleware, tokenSvc *auth.TokenService) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no auth required)
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ready", h.Ready)

	// API v1 root
	mux.HandleFunc("GET /api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"DragonMail API v1","version":"0.1.0"}`))
	})

	// Public authentication route (rate limited)
	loginRateLimit := mw.RateLimit(middleware.RateLimitConfig{
		Limit:  5,
		Window: 15 * time.Minute,
		KeyFn:  middleware.IPKey,
	})
	mux.Handle("POST /api/v1/auth/login", loginRateLimit(http.HandlerFunc(h.Login)))

	// Protected routes (require auth)
	authMw := mw.Auth(tokenSvc)
	protected := func(fn http.HandlerFunc) http.Handler {
		return authMw(fn)
	}
	admin := func(fn http.HandlerFunc) http.Handler {
		return authMw(mw.RequireAdmin(fn))
	}

	mux.Handle("GET /api/v1/auth/me", protected(h.Me))

	// Static catalogs
	mux.Handle("GET /api/v1/templates/email", protected(h.EmailTemplates))
	mux.Handle("GET /api/v1/templates/sms", protected(h.SMSTemplates))
	mux.Handle("GET /api/v1/gateways", protected(h.Gateways))
	mux.Handle("GET /api/v1/transports/presets", protected(h.SMTPPresets))

	// Transport profiles
	mux.Handle("GET /api/v1/transports", protected(h.ListTransports))
	mux.Handle("POST /api/v1/transports", protected(h.CreateTransport))
	mux.Handle("DELETE /api/v1/transports/{name}", protected(h.DeleteTransport))

	// Sending
	mux.Handle("POST /api/v1/preview", protected(h.Preview))
	mux.Handle("POST /api/v1/send/email", protected(h.SendEmail))
	mux.Handle("POST /api/v1/send/sms", protected(h.SendSMS))
	mux.Handle("POST /api/v1/send/sms/azure", protected(h.SendAzureSMS))

	// Activity log
	mux.Handle("GET /api/v1/activity", protected(h.ListActivity))
	mux.Handle("GET /api/v1/activity/stats", protected(h.ActivityStats))
	mux.Handle("GET /api/v1/activity/export", protected(h.ExportActivity))
	mux.Handle("DELETE /api/v1/activity", admin(h.ClearActivity))

	// Scheduled tasks
	mux.Handle("GET /api/v1/tasks", protected(h.ListTasks))
	mux.Handle("POST /api/v1/tasks", protected(h.CreateTask))
	mux.Handle("DELETE /api/v1/tasks/{id}", protected(h.DeleteTask))
	mux.Handle("POST /api/v1/tasks/run-due", protected(h.RunDueTasks))

	// Settings (admin)
	mux.Handle("GET /api/v1/settings/azure-sms", admin(h.GetAzureSMSSettings))
	mux.Handle("PUT /api/v1/settings/azure-sms", admin(h.UpdateAzureSMSSettings))

	// User management (admin)
	mux.Handle("GET /api/v1/users", admin(h.ListUsers))
	mux.Handle("POST /api/v1/users", admin(h.CreateUser))
	mux.Handle("PUT /api/v1/users/{username}/password", admin(h.ChangePassword))
	mux.Handle("DELETE /api/v1/users/{username}", admin(h.DeleteUser))

	// Global middleware chain, outermost first: Recover, RequestID, Logger.
	var root http.Handler = mux
	root = mw.Logger(root)
	root = mw.RequestID(root)
	root = mw.Recover(root)
	return root
}
