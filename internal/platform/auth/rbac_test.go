package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func runRequireRole(t *testing.T, s *Session, deniedPath string) (*httptest.ResponseRecorder, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/dashboard/revenue", nil)
	if s != nil {
		req = req.WithContext(WithSession(req.Context(), s))
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := RequireRole(deniedPath, RoleAdmin)(func(c echo.Context) error {
		called = true
		return c.String(http.StatusOK, "revenue")
	})
	err := h(c)
	return rec, called, err
}

func TestRequireRole_AdminAllowed(t *testing.T) {
	rec, called, err := runRequireRole(t, &Session{UserID: "a", Role: RoleAdmin}, "/dashboard/revenue/access-denied")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called || rec.Code != http.StatusOK {
		t.Errorf("expected admin to reach the handler, code=%d", rec.Code)
	}
}

func TestRequireRole_UserRedirectedBeforeHandler(t *testing.T) {
	rec, called, err := runRequireRole(t, &Session{UserID: "u", Role: RoleUser}, "/dashboard/revenue/access-denied")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Fatal("handler must not run for a denied role")
	}
	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/dashboard/revenue/access-denied" {
		t.Errorf("unexpected redirect %q", loc)
	}
}

func TestRequireRole_ForbiddenWithoutDeniedPath(t *testing.T) {
	_, called, err := runRequireRole(t, &Session{UserID: "u", Role: RoleUser}, "")
	if called {
		t.Fatal("handler must not run")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestRequireRole_MissingSession(t *testing.T) {
	_, called, err := runRequireRole(t, nil, "/dashboard/revenue/access-denied")
	if called {
		t.Fatal("handler must not run")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestHasRole(t *testing.T) {
	if HasRole(nil, RoleUser) {
		t.Error("nil session has no role")
	}
	if !HasRole(&Session{Role: RoleAdmin}, RoleUser) {
		t.Error("admin holds every role")
	}
	if HasRole(&Session{Role: RoleUser}, RoleAdmin) {
		t.Error("user must not hold admin")
	}
}
