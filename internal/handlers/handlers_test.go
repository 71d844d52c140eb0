package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbapte/portfolio-api/config"
	"github.com/hbapte/portfolio-api/internal/events"
	"github.com/hbapte/portfolio-api/internal/ratelimit"
	"github.com/hbapte/portfolio-api/internal/repositories"
	"github.com/hbapte/portfolio-api/internal/security"
	"github.com/hbapte/portfolio-api/internal/services"
	"github.com/hbapte/portfolio-api/internal/storage"
)

type apiFixture struct {
	router      http.Handler
	cfg         *config.Config
	staff       *repositories.StaffRepository
	subscribers *repositories.SubscriberRepository
	newsletters *repositories.NewsletterRepository
	auditLogs   *repositories.AuditLogRepository
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	store := storage.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.DiscardHandler)
	bus := events.NewGoChannelBus(logger)
	t.Cleanup(func() { bus.Close() })

	cfg := &config.Config{
		Environment:   "test",
		RedisURL:      "redis://localhost:6379",
		SessionSecret: "test-secret",
		RateLimit: config.RateLimitConfig{
			Login: ratelimit.Config{Window: time.Minute, Max: 3},
		},
	}
	cfg.Auth.ApplyDefaults()
	cfg.RateLimit.ApplyDefaults()

	hasher := security.NewArgon2PasswordHasher()
	staffRepo := repositories.NewStaffRepository(store, hasher)
	subscriberRepo := repositories.NewSubscriberRepository(store)
	newsletterRepo := repositories.NewNewsletterRepository(store)
	auditLogRepo := repositories.NewAuditLogRepository(store)
	notificationRepo := repositories.NewNotificationRepository(store)

	authService := services.NewAuthService(
		staffRepo,
		repositories.NewSessionRepository(store),
		repositories.NewTwoFactorTokenRepository(store),
		hasher,
		security.NewHMACSigner(cfg.SessionSecret),
		bus,
		logger,
		cfg.Auth,
	)

	router := NewRouter(Deps{
		Auth:          NewAuthHandler(authService, ratelimit.NewLimiter(store, cfg.RateLimit.Login), cfg, logger),
		AuditLogs:     NewAuditLogHandler(auditLogRepo, logger),
		Subscribers:   NewSubscriberHandler(subscriberRepo, bus, logger),
		Newsletters:   NewNewsletterHandler(newsletterRepo, bus, logger),
		Notifications: NewNotificationHandler(notificationRepo, logger),
		AuthService:   authService,
		CookieName:    cfg.Auth.CookieName,
	})

	return &apiFixture{
		router:      router,
		cfg:         cfg,
		staff:       staffRepo,
		subscribers: subscriberRepo,
		newsletters: newsletterRepo,
		auditLogs:   auditLogRepo,
	}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any, opts ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func withToken(token string) func(*http.Request) {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

func withIP(ip string) func(*http.Request) {
	return func(r *http.Request) {
		r.Header.Set("X-Real-IP", ip)
	}
}

func (f *apiFixture) createStaff(t *testing.T) {
	t.Helper()
	_, err := f.staff.Create(context.Background(), repositories.CreateStaffInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "secret",
	})
	require.NoError(t, err)
}

// login performs a real login and returns the raw session token.
func (f *apiFixture) login(t *testing.T) string {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "ada@example.com",
		"password": "secret",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestLoginIssuesSessionCookie(t *testing.T) {
	f := newAPIFixture(t)
	f.createStaff(t)

	rec := f.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "ada@example.com",
		"password": "secret",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, f.cfg.Auth.CookieName, cookie.Name)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	// the cookie authenticates /auth/me
	me := f.do(t, http.MethodGet, "/api/auth/me", nil, func(r *http.Request) {
		r.AddCookie(cookie)
	})
	assert.Equal(t, http.StatusOK, me.Code)
}

func TestLoginInvalidCredentials(t *testing.T) {
	f := newAPIFixture(t)
	f.createStaff(t)

	rec := f.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid credentials", body["error"])
}

func TestLoginValidatesPayload(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginRateLimited(t *testing.T) {
	f := newAPIFixture(t)
	f.createStaff(t)

	payload := map[string]string{"email": "ada@example.com", "password": "wrong"}

	for i := 0; i < 3; i++ {
		rec := f.do(t, http.MethodPost, "/api/auth/login", payload, withIP("203.0.113.7"))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := f.do(t, http.MethodPost, "/api/auth/login", payload, withIP("203.0.113.7"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))

	// a different client is unaffected
	other := f.do(t, http.MethodPost, "/api/auth/login", payload, withIP("203.0.113.8"))
	assert.Equal(t, http.StatusUnauthorized, other.Code)
}

func TestAdminRoutesRequireSession(t *testing.T) {
	f := newAPIFixture(t)

	for _, path := range []string{
		"/api/admin/audit-logs",
		"/api/admin/subscribers",
		"/api/admin/newsletters",
		"/api/admin/notifications",
	} {
		rec := f.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := f.do(t, http.MethodGet, "/api/admin/subscribers", nil, withToken("bogus"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubscribeAndConflict(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/subscribe", map[string]string{
		"email": "reader@example.com",
		"name":  "Reader",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	dup := f.do(t, http.MethodPost, "/api/subscribe", map[string]string{"email": "reader@example.com"})
	require.Equal(t, http.StatusConflict, dup.Code)
	assert.Equal(t, "Email already subscribed", decodeBody(t, dup)["error"])
}

func TestUnsubscribeUnknownKeepsLegacyShape(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/unsubscribe", map[string]string{"email": "ghost@example.com"})

	// unknown email still answers 200, with the failure in the body
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Subscriber not found", body["error"])
}

func TestUnsubscribeKnown(t *testing.T) {
	f := newAPIFixture(t)

	_, err := f.subscribers.Create(context.Background(), repositories.CreateSubscriberInput{Email: "reader@example.com"})
	require.NoError(t, err)

	rec := f.do(t, http.MethodPost, "/api/unsubscribe", map[string]string{"email": "reader@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["success"])
}

func TestAuditLogListShape(t *testing.T) {
	f := newAPIFixture(t)
	f.createStaff(t)
	token := f.login(t)

	for i := 0; i < 3; i++ {
		_, err := f.auditLogs.Record(context.Background(), "LOGIN", fmt.Sprintf("u%d@example.com", i), "signed in", "10.0.0.x")
		require.NoError(t, err)
	}

	rec := f.do(t, http.MethodGet, "/api/admin/audit-logs?limit=2", nil, withToken(token))
	require.Equal(t, http.StatusOK, rec.Code)

	// the page object is the response body, not wrapped in {success, data}
	body := decodeBody(t, rec)
	assert.NotContains(t, body, "success")
	assert.EqualValues(t, 3, body["totalLogs"])
	assert.EqualValues(t, 2, body["totalPages"])
	assert.Len(t, body["logs"], 2)
}

func TestAuditLogListNestedParams(t *testing.T) {
	f := newAPIFixture(t)
	f.createStaff(t)
	token := f.login(t)

	_, err := f.auditLogs.Record(context.Background(), "LOGIN", "ada@example.com", "signed in", "10.0.0.x")
	require.NoError(t, err)
	_, err = f.auditLogs.Record(context.Background(), "LOGOUT", "ada@example.com", "signed out", "10.0.0.x")
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, "/api/admin/audit-logs?params%5BfilterAction%5D=LOGOUT", nil, withToken(token))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 1, body["totalLogs"])
}

func TestAuditLogCreateAttributedToSession(t *testing.T) {
	f := newAPIFixture(t)
	f.createStaff(t)
	token := f.login(t)

	rec := f.do(t, http.MethodPost, "/api/admin/audit-logs", map[string]string{
		"action":  "EXPORT",
		"details": "exported subscribers",
	}, withToken(token))
	require.Equal(t, http.StatusCreated, rec.Code)

	page, err := f.auditLogs.Search(context.Background(), repositories.AuditLogSearch{Action: "EXPORT"})
	require.NoError(t, err)
	require.Len(t, page.Logs, 1)
	assert.Equal(t, "ada@example.com", page.Logs[0].Actor)
}

func TestNewsletterLifecycle(t *testing.T) {
	f := newAPIFixture(t)
	f.createStaff(t)
	token := f.login(t)

	rec := f.do(t, http.MethodPost, "/api/admin/newsletters", map[string]string{
		"title":   "September",
		"subject": "What's new",
		"content": "Hello",
	}, withToken(token))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created.Data.ID
	require.NotEmpty(t, id)

	// tracking endpoints are public
	open := f.do(t, http.MethodGet, "/api/newsletters/"+id+"/open", nil)
	require.Equal(t, http.StatusOK, open.Code)
	open = f.do(t, http.MethodGet, "/api/newsletters/"+id+"/open", nil)
	require.Equal(t, http.StatusOK, open.Code)

	click := f.do(t, http.MethodGet, "/api/newsletters/"+id+"/click", nil)
	require.Equal(t, http.StatusOK, click.Code)

	letter, err := f.newsletters.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, letter.OpenCount)
	assert.Equal(t, 1, letter.ClickCount)

	send := f.do(t, http.MethodPost, "/api/admin/newsletters/"+id+"/send", nil, withToken(token))
	require.Equal(t, http.StatusOK, send.Code)

	del := f.do(t, http.MethodDelete, "/api/admin/newsletters/"+id, nil, withToken(token))
	require.Equal(t, http.StatusConflict, del.Code)
	assert.Equal(t, "Cannot delete a sent newsletter", decodeBody(t, del)["error"])
}

func TestTrackUnknownNewsletter(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/newsletters/nope/open", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok, rec.Body.String())
	assert.EqualValues(t, 0, data["openCount"])
}

func TestNewsletterUpdatePartial(t *testing.T) {
	f := newAPIFixture(t)
	f.createStaff(t)
	token := f.login(t)

	created, err := f.newsletters.Create(context.Background(), repositories.CreateNewsletterInput{
		Title: "Draft", Subject: "s", Content: "c",
	})
	require.NoError(t, err)

	rec := f.do(t, http.MethodPatch, "/api/admin/newsletters/"+created.ID, map[string]string{
		"title": "Renamed",
	}, withToken(token))
	require.Equal(t, http.StatusOK, rec.Code)

	letter, err := f.newsletters.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", letter.Title)
	assert.Equal(t, "s", letter.Subject, "unnamed fields are untouched")

	empty := f.do(t, http.MethodPatch, "/api/admin/newsletters/"+created.ID, map[string]string{}, withToken(token))
	assert.Equal(t, http.StatusBadRequest, empty.Code)

	missing := f.do(t, http.MethodPatch, "/api/admin/newsletters/nope", map[string]string{"title": "x"}, withToken(token))
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestLogoutClearsSession(t *testing.T) {
	f := newAPIFixture(t)
	f.createStaff(t)
	token := f.login(t)

	rec := f.do(t, http.MethodPost, "/api/auth/logout", nil, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: f.cfg.Auth.CookieName, Value: token})
	})
	require.Equal(t, http.StatusOK, rec.Code)

	me := f.do(t, http.MethodGet, "/api/auth/me", nil, withToken(token))
	assert.Equal(t, http.StatusUnauthorized, me.Code)
}

func TestHealthz(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}
