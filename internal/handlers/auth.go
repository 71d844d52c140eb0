package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hbapte/portfolio-api/config"
	"github.com/hbapte/portfolio-api/internal/middleware"
	"github.com/hbapte/portfolio-api/internal/ratelimit"
	"github.com/hbapte/portfolio-api/internal/services"
	"github.com/hbapte/portfolio-api/internal/util"
)

type AuthHandler struct {
	auth    *services.AuthService
	limiter *ratelimit.Limiter
	cfg     *config.Config
	logger  *slog.Logger
}

func NewAuthHandler(auth *services.AuthService, limiter *ratelimit.Limiter, cfg *config.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, limiter: limiter, cfg: cfg, logger: logger}
}

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Code     string `json:"code,omitempty"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ip := util.ClientIP(r)

	limit, err := h.limiter.Allow(r.Context(), "login", ip)
	if err != nil {
		h.logger.Error("rate limit check failed", "error", err)
		respondInternalError(w)
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(limit.Reset.Unix(), 10))
	if !limit.Allowed {
		respondError(w, http.StatusTooManyRequests, "Too many login attempts, please try again later")
		return
	}

	var payload loginPayload
	if err := util.ParseJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := util.ValidateStruct(payload); err != nil {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	result, err := h.auth.Login(r.Context(), services.LoginInput{
		Email:     payload.Email,
		Password:  payload.Password,
		Code:      payload.Code,
		IPAddress: ip,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "Invalid credentials")
		case errors.Is(err, services.ErrPasswordExpired):
			util.JSONResponse(w, http.StatusUnauthorized, map[string]any{
				"success": false,
				"error":   "Password expired",
				"code":    "PASSWORD_EXPIRED",
			})
		case errors.Is(err, services.ErrInvalidTwoFactorCode):
			respondError(w, http.StatusUnauthorized, "Invalid two factor code")
		default:
			h.logger.Error("login failed", "error", err)
			respondInternalError(w)
		}
		return
	}

	if result.TwoFactorRequired {
		util.JSONResponse(w, http.StatusOK, map[string]any{
			"twoFactorRequired": true,
		})
		return
	}

	h.setSessionCookie(w, result.Token, int(h.cfg.Auth.SessionTTL.Seconds()))

	util.JSONResponse(w, http.StatusOK, map[string]any{
		"user":  result.Staff,
		"token": result.Token,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cfg.Auth.CookieName); err == nil && cookie.Value != "" {
		if err := h.auth.Logout(r.Context(), cookie.Value); err != nil {
			h.logger.Error("logout failed", "error", err)
			respondInternalError(w)
			return
		}
	}

	h.setSessionCookie(w, "", -1)
	respondData(w, http.StatusOK, map[string]any{"loggedOut": true})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	staff := middleware.StaffFrom(r.Context())
	session := middleware.SessionFrom(r.Context())

	respondData(w, http.StatusOK, map[string]any{
		"user":    staff,
		"session": session,
	})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, value string, maxAge int) {
	secure := h.cfg.Environment == "production"
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.Auth.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   maxAge,
		SameSite: sameSite,
		Secure:   secure,
	})
}
