package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hbapte/portfolio-api/internal/events"
	"github.com/hbapte/portfolio-api/internal/middleware"
	"github.com/hbapte/portfolio-api/internal/repositories"
	"github.com/hbapte/portfolio-api/models"
)

type NewsletterHandler struct {
	newsletters *repositories.NewsletterRepository
	bus         events.Bus
	logger      *slog.Logger
}

func NewNewsletterHandler(newsletters *repositories.NewsletterRepository, bus events.Bus, logger *slog.Logger) *NewsletterHandler {
	return &NewsletterHandler{newsletters: newsletters, bus: bus, logger: logger}
}

func (h *NewsletterHandler) List(w http.ResponseWriter, r *http.Request) {
	page := queryParamInt(r, "page", 1)
	limit := queryParamInt(r, "limit", 20)

	letters, total, err := h.newsletters.ListSorted(r.Context(), page, limit)
	if err != nil {
		h.logger.Error("newsletter list failed", "error", err)
		respondInternalError(w)
		return
	}

	totalPages := (total + limit - 1) / limit
	respondData(w, http.StatusOK, map[string]any{
		"newsletters": letters,
		"totalPages":  totalPages,
		"currentPage": page,
		"total":       total,
	})
}

type createNewsletterPayload struct {
	Title        string `json:"title" validate:"required"`
	Subject      string `json:"subject"`
	Content      string `json:"content"`
	Tags         string `json:"tags"`
	ScheduledFor string `json:"scheduledFor"`
}

func (h *NewsletterHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload createNewsletterPayload
	if err := parseAndValidate(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, "Title is required")
		return
	}

	input := repositories.CreateNewsletterInput{
		Title:   payload.Title,
		Subject: payload.Subject,
		Content: payload.Content,
		Tags:    payload.Tags,
	}
	if payload.ScheduledFor != "" {
		scheduled, err := time.Parse(time.RFC3339, payload.ScheduledFor)
		if err != nil {
			respondError(w, http.StatusBadRequest, "scheduledFor must be an RFC3339 timestamp")
			return
		}
		input.ScheduledFor = scheduled
	}

	letter, err := h.newsletters.Create(r.Context(), input)
	if err != nil {
		h.logger.Error("newsletter create failed", "error", err)
		respondInternalError(w)
		return
	}

	respondData(w, http.StatusCreated, letter)
}

func (h *NewsletterHandler) Get(w http.ResponseWriter, r *http.Request) {
	letter, err := h.newsletters.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("newsletter fetch failed", "error", err)
		respondInternalError(w)
		return
	}
	if letter == nil {
		respondError(w, http.StatusNotFound, "Newsletter not found")
		return
	}
	respondData(w, http.StatusOK, letter)
}

type updateNewsletterPayload struct {
	Title   *string `json:"title"`
	Subject *string `json:"subject"`
	Content *string `json:"content"`
	Tags    *string `json:"tags"`
	Status  *string `json:"status"`
}

func (h *NewsletterHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload updateNewsletterPayload
	if err := parseAndValidate(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	changes := make(map[string]any)
	if payload.Title != nil {
		changes["title"] = *payload.Title
	}
	if payload.Subject != nil {
		changes["subject"] = *payload.Subject
	}
	if payload.Content != nil {
		changes["content"] = *payload.Content
	}
	if payload.Tags != nil {
		changes["tags"] = *payload.Tags
	}
	if payload.Status != nil {
		changes["status"] = *payload.Status
	}
	if len(changes) == 0 {
		respondError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	letter, err := h.newsletters.UpdateByID(r.Context(), chi.URLParam(r, "id"), changes)
	if err != nil {
		h.logger.Error("newsletter update failed", "error", err)
		respondInternalError(w)
		return
	}
	if letter == nil {
		respondError(w, http.StatusNotFound, "Newsletter not found")
		return
	}
	respondData(w, http.StatusOK, letter)
}

func (h *NewsletterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.newsletters.DeleteByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNewsletterSent) {
			respondError(w, http.StatusConflict, "Cannot delete a sent newsletter")
			return
		}
		h.logger.Error("newsletter delete failed", "error", err)
		respondInternalError(w)
		return
	}
	respondData(w, http.StatusOK, map[string]any{"deleted": true})
}

// Send transitions the newsletter into "sent", stamping sentAt, and publishes
// the sent event for the notification subscribers.
func (h *NewsletterHandler) Send(w http.ResponseWriter, r *http.Request) {
	letter, err := h.newsletters.UpdateByID(r.Context(), chi.URLParam(r, "id"), map[string]any{
		"status": models.NewsletterStatusSent,
	})
	if err != nil {
		h.logger.Error("newsletter send failed", "error", err)
		respondInternalError(w)
		return
	}
	if letter == nil {
		respondError(w, http.StatusNotFound, "Newsletter not found")
		return
	}

	actor := ""
	if staff := middleware.StaffFrom(r.Context()); staff != nil {
		actor = staff.Email
	}
	if err := h.bus.Publish(r.Context(), events.Event{
		Type: events.TypeNewsletterSent,
		Payload: map[string]string{
			"title": letter.Title,
			"actor": actor,
		},
	}); err != nil {
		h.logger.Error("failed to publish newsletter event", "error", err)
	}

	respondData(w, http.StatusOK, letter)
}

// TrackOpen and TrackClick bump the engagement counters. Read-modify-write,
// so concurrent hits can undercount; accepted at this scale.
func (h *NewsletterHandler) TrackOpen(w http.ResponseWriter, r *http.Request) {
	h.track(w, r, "openCount")
}

func (h *NewsletterHandler) TrackClick(w http.ResponseWriter, r *http.Request) {
	h.track(w, r, "clickCount")
}

// track answers 200 with a zero count for an unknown id; the tracking
// endpoints never surface not-found.
func (h *NewsletterHandler) track(w http.ResponseWriter, r *http.Request, field string) {
	count, err := h.newsletters.IncrementCounter(r.Context(), chi.URLParam(r, "id"), field)
	if err != nil {
		h.logger.Error("newsletter counter increment failed", "field", field, "error", err)
		respondInternalError(w)
		return
	}
	respondData(w, http.StatusOK, map[string]any{field: count})
}
