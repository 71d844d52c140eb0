package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hbapte/portfolio-api/internal/repositories"
)

type NotificationHandler struct {
	notifications *repositories.NotificationRepository
	logger        *slog.Logger
}

func NewNotificationHandler(notifications *repositories.NotificationRepository, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, logger: logger}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		err    error
		notifs any
	)
	if r.URL.Query().Get("unread") == "true" {
		notifs, err = h.notifications.ListUnread(r.Context())
	} else {
		notifs, err = h.notifications.List(r.Context())
	}
	if err != nil {
		h.logger.Error("notification list failed", "error", err)
		respondInternalError(w)
		return
	}
	respondData(w, http.StatusOK, map[string]any{"notifications": notifs})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	notif, err := h.notifications.MarkRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("notification mark read failed", "error", err)
		respondInternalError(w)
		return
	}
	if notif == nil {
		respondError(w, http.StatusNotFound, "Notification not found")
		return
	}
	respondData(w, http.StatusOK, notif)
}
