package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/hbapte/portfolio-api/internal/services"
	"github.com/hbapte/portfolio-api/internal/util"
	"github.com/hbapte/portfolio-api/models"
)

type contextKey string

const (
	staffContextKey   contextKey = "staff"
	sessionContextKey contextKey = "session"
)

// RequireSession authenticates the request via the session cookie (or a
// bearer token) and stores the staff member and session on the context.
// Responds 401 with a generic body on any failure; no detail leaks.
func RequireSession(auth *services.AuthService, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r, cookieName)
			if token == "" {
				unauthorized(w)
				return
			}

			staff, session, err := auth.Authenticate(r.Context(), token)
			if err != nil || staff == nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), staffContextKey, staff)
			ctx = context.WithValue(ctx, sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	util.JSONResponse(w, http.StatusUnauthorized, map[string]any{
		"success": false,
		"error":   "Unauthorized",
	})
}

// StaffFrom returns the authenticated staff member, or nil outside
// RequireSession.
func StaffFrom(ctx context.Context) *models.Staff {
	staff, _ := ctx.Value(staffContextKey).(*models.Staff)
	return staff
}

func SessionFrom(ctx context.Context) *models.Session {
	session, _ := ctx.Value(sessionContextKey).(*models.Session)
	return session
}
