package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/hbapte/portfolio-api/internal/middleware"
	"github.com/hbapte/portfolio-api/internal/services"
	"github.com/hbapte/portfolio-api/internal/util"
)

// Deps bundles everything the router needs.
type Deps struct {
	Auth          *AuthHandler
	AuditLogs     *AuditLogHandler
	Subscribers   *SubscriberHandler
	Newsletters   *NewsletterHandler
	Notifications *NotificationHandler

	AuthService *services.AuthService
	CookieName  string
}

// NewRouter mounts the public and admin API surfaces. Everything under
// /api/admin sits behind the session middleware.
func NewRouter(deps Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	requireSession := middleware.RequireSession(deps.AuthService, deps.CookieName)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", deps.Auth.Login)
		r.Post("/auth/logout", deps.Auth.Logout)
		r.With(requireSession).Get("/auth/me", deps.Auth.Me)

		r.Post("/subscribe", deps.Subscribers.Subscribe)
		r.Post("/unsubscribe", deps.Subscribers.Unsubscribe)

		r.Get("/newsletters/{id}/open", deps.Newsletters.TrackOpen)
		r.Get("/newsletters/{id}/click", deps.Newsletters.TrackClick)

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireSession)

			r.Get("/audit-logs", deps.AuditLogs.List)
			r.Post("/audit-logs", deps.AuditLogs.Create)

			r.Get("/subscribers", deps.Subscribers.List)
			r.Post("/subscribers", deps.Subscribers.Subscribe)
			r.Delete("/subscribers/{id}", deps.Subscribers.Delete)

			r.Get("/newsletters", deps.Newsletters.List)
			r.Post("/newsletters", deps.Newsletters.Create)
			r.Get("/newsletters/{id}", deps.Newsletters.Get)
			r.Patch("/newsletters/{id}", deps.Newsletters.Update)
			r.Delete("/newsletters/{id}", deps.Newsletters.Delete)
			r.Post("/newsletters/{id}/send", deps.Newsletters.Send)

			r.Get("/notifications", deps.Notifications.List)
			r.Post("/notifications/{id}/read", deps.Notifications.MarkRead)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		util.JSONResponse(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	return r
}
