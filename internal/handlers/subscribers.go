package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hbapte/portfolio-api/internal/events"
	"github.com/hbapte/portfolio-api/internal/repositories"
	"github.com/hbapte/portfolio-api/internal/util"
)

type SubscriberHandler struct {
	subscribers *repositories.SubscriberRepository
	bus         events.Bus
	logger      *slog.Logger
}

func NewSubscriberHandler(subscribers *repositories.SubscriberRepository, bus events.Bus, logger *slog.Logger) *SubscriberHandler {
	return &SubscriberHandler{subscribers: subscribers, bus: bus, logger: logger}
}

type subscribePayload struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}

// Subscribe is the public newsletter signup endpoint.
func (h *SubscriberHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var payload subscribePayload
	if err := util.ParseJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := util.ValidateStruct(payload); err != nil {
		respondError(w, http.StatusBadRequest, "A valid email is required")
		return
	}

	sub, err := h.subscribers.Create(r.Context(), repositories.CreateSubscriberInput{
		Email: payload.Email,
		Name:  payload.Name,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrEmailExists) {
			respondError(w, http.StatusConflict, "Email already subscribed")
			return
		}
		h.logger.Error("subscribe failed", "error", err)
		respondInternalError(w)
		return
	}

	if err := h.bus.Publish(r.Context(), events.Event{
		Type:    events.TypeSubscriberCreated,
		Payload: map[string]string{"email": sub.Email},
	}); err != nil {
		h.logger.Error("failed to publish subscriber event", "error", err)
	}

	respondData(w, http.StatusCreated, sub)
}

type unsubscribePayload struct {
	Email string `json:"email" validate:"required,email"`
}

// Unsubscribe keeps the legacy 200-with-failure-flag convention for unknown
// emails rather than a 404.
func (h *SubscriberHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var payload unsubscribePayload
	if err := util.ParseJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := util.ValidateStruct(payload); err != nil {
		respondError(w, http.StatusBadRequest, "A valid email is required")
		return
	}

	found, err := h.subscribers.Unsubscribe(r.Context(), payload.Email)
	if err != nil {
		h.logger.Error("unsubscribe failed", "error", err)
		respondInternalError(w)
		return
	}
	if !found {
		util.JSONResponse(w, http.StatusOK, map[string]any{
			"success": false,
			"error":   "Subscriber not found",
		})
		return
	}

	respondData(w, http.StatusOK, map[string]any{"unsubscribed": true})
}

func (h *SubscriberHandler) List(w http.ResponseWriter, r *http.Request) {
	page := queryParamInt(r, "page", 1)
	limit := queryParamInt(r, "limit", 20)

	subs, total, err := h.subscribers.ListSorted(r.Context(), page, limit)
	if err != nil {
		h.logger.Error("subscriber list failed", "error", err)
		respondInternalError(w)
		return
	}

	totalPages := (total + limit - 1) / limit
	respondData(w, http.StatusOK, map[string]any{
		"subscribers":      subs,
		"totalSubscribers": total,
		"totalPages":       totalPages,
		"currentPage":      page,
	})
}

func (h *SubscriberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.subscribers.DeleteByID(r.Context(), id); err != nil {
		h.logger.Error("subscriber delete failed", "error", err)
		respondInternalError(w)
		return
	}

	respondData(w, http.StatusOK, map[string]any{"deleted": true})
}
