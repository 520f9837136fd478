package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/config"
	"github.com/clinic/clinic/internal/domain/dashboard"
	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/internal/platform/middleware"
)

var testSecret = strings.Repeat("s", 32)

func testConfig(env string) *config.Config {
	return &config.Config{
		Env:            env,
		SessionSecret:  testSecret,
		SessionTTL:     time.Hour,
		ViewCacheTTL:   30 * time.Second,
		Timezone:       "UTC",
		CurrencyLocale: "en-US",
		CORSOrigins:    []string{"http://localhost:3000"},
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
		LoginRateRPS:   1000,
		LoginRateBurst: 1000,
	}
}

// newTestServer builds the full router without a database. Only routes that
// answer before touching the store are exercised here.
func newTestServer(t *testing.T, env string) *echo.Echo {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	e, err := newServer(ctx, testConfig(env), zerolog.Nop(), nil, middleware.NewInMemoryCacheStore())
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	return e
}

func userToken(t *testing.T, role auth.Role) string {
	t.Helper()
	m := auth.NewSessionManager(auth.SessionConfig{Secret: []byte(testSecret), TTL: time.Hour})
	token, _, err := m.Issue(&auth.Session{UserID: "u-1", Name: "Test", Email: "t@nextmail.com", Role: role})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return token
}

func do(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.DefaultCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	e := newTestServer(t, "production")

	rec := do(e, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers on every response")
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("expected a request id")
	}
}

func TestServer_RequiresSession(t *testing.T) {
	e := newTestServer(t, "production")

	rec := do(e, http.MethodGet, "/dashboard", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = do(e, http.MethodGet, "/dashboard", "forged.token.value")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a bad token, got %d", rec.Code)
	}
}

func TestServer_RevenueDeniedForUserRole(t *testing.T) {
	e := newTestServer(t, "production")
	token := userToken(t, auth.RoleUser)

	rec := do(e, http.MethodGet, "/dashboard/revenue?month=1&year=2026", token)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != dashboard.AccessDeniedPath {
		t.Errorf("expected redirect to %s, got %s", dashboard.AccessDeniedPath, loc)
	}

	rec = do(e, http.MethodGet, dashboard.AccessDeniedPath, token)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestServer_InvalidIDIsNotFound(t *testing.T) {
	e := newTestServer(t, "production")
	token := userToken(t, auth.RoleAdmin)

	for _, path := range []string{
		"/dashboard/patients/not-a-uuid",
		"/dashboard/appointments/not-a-uuid/edit",
		"/dashboard/invoices/not-a-uuid/pdf",
	} {
		rec := do(e, http.MethodGet, path, token)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, rec.Code)
		}
	}
}

func TestServer_LoginRejectsMalformedEmail(t *testing.T) {
	e := newTestServer(t, "production")

	form := url.Values{"email": {"not-an-email"}, "password": {"123456"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), ".Invalid credentials") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestServer_DevModeActsAsAdmin(t *testing.T) {
	e := newTestServer(t, "development")

	rec := do(e, http.MethodGet, "/dashboard/revenue?month=13", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected the dev admin to pass the role gate and hit filter validation, got %d", rec.Code)
	}
}

func TestClearViews(t *testing.T) {
	ctx := context.Background()
	store := middleware.NewInMemoryCacheStore()
	if err := store.Set(ctx, "view:/dashboard/patients|admin|", []byte("{}"), time.Minute); err != nil {
		t.Fatal(err)
	}

	if err := clearViews(ctx, store); err != nil {
		t.Fatalf("clearViews: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "view:/dashboard/patients|admin|"); ok {
		t.Error("expected the cached view to be gone")
	}
}
