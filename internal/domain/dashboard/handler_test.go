package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinic/clinic/internal/domain/appointment"
	"github.com/clinic/clinic/internal/domain/doctor"
	"github.com/clinic/clinic/internal/domain/invoice"
	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/pkg/format"
)

type stubLists struct{ doctorCalls int }

func (s *stubLists) LatestAppointments(context.Context) ([]*appointment.Row, error) {
	return []*appointment.Row{{ID: uuid.New(), PatientName: "Jane Doe", Reason: "Checkup"}}, nil
}

func (s *stubLists) LatestInvoices(context.Context) ([]*invoice.Row, error) {
	return []*invoice.Row{{ID: uuid.New(), PatientName: "Jane Doe", Amount: 2500}}, nil
}

func (s *stubLists) AllDoctors(context.Context) ([]*doctor.Doctor, error) {
	s.doctorCalls++
	return []*doctor.Doctor{{ID: uuid.New(), Name: "Dr. Adams"}}, nil
}

// withRole plays the part of the session middleware.
func withRole(role auth.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := &auth.Session{UserID: uuid.NewString(), Role: role}
			c.SetRequest(c.Request().WithContext(auth.WithSession(c.Request().Context(), s)))
			return next(c)
		}
	}
}

func newTestServer(repo *mockRepo, lists *stubLists, role auth.Role) *echo.Echo {
	svc := newTestService(repo, time.Date(2026, 10, 18, 10, 0, 0, 0, tokyo))
	e := echo.New()
	g := e.Group("/dashboard", withRole(role))
	NewHandler(svc, lists, lists, lists, format.Default).RegisterRoutes(g)
	return e
}

func get(e *echo.Echo, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandler_Overview(t *testing.T) {
	repo := &mockRepo{totals: Totals{Paid: 123456, Pending: 500}}
	e := newTestServer(repo, &stubLists{}, auth.RoleUser)

	rec := get(e, "/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"paid_today":"$1,234.56"`)
	assert.Contains(t, rec.Body.String(), `"pending_today":"$5.00"`)
	assert.Contains(t, rec.Body.String(), `"amount":"$25.00"`)
	assert.Contains(t, rec.Body.String(), `"reason":"Checkup"`)
}

func TestHandler_Revenue_DeniedBeforeAnyQuery(t *testing.T) {
	repo := &mockRepo{}
	lists := &stubLists{}
	e := newTestServer(repo, lists, auth.RoleUser)

	rec := get(e, "/dashboard/revenue?month=3&year=2026")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, AccessDeniedPath, rec.Header().Get(echo.HeaderLocation))
	assert.Zero(t, repo.calls)
	assert.Zero(t, lists.doctorCalls)

	rec = get(e, AccessDeniedPath)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandler_Revenue_Admin(t *testing.T) {
	repo := &mockRepo{totals: Totals{Count: 2, Paid: 15000}, newPatients: 1}
	e := newTestServer(repo, &stubLists{}, auth.RoleAdmin)
	doc := uuid.New()

	rec := get(e, "/dashboard/revenue?month=3&year=2026&doctor="+doc.String())
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Year  int `json:"year"`
		Month int `json:"month"`
		Cards struct {
			Invoices    int64  `json:"invoices"`
			NewPatients int64  `json:"new_patients"`
			Paid        string `json:"paid"`
		} `json:"cards"`
		History []struct {
			Paid         float64 `json:"paid"`
			PaidLabel    string  `json:"paid_label"`
			PendingLabel string  `json:"pending_label"`
		} `json:"history"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2026, body.Year)
	assert.Equal(t, 3, body.Month)
	assert.Equal(t, int64(2), body.Cards.Invoices)
	assert.Equal(t, "$150.00", body.Cards.Paid)
	require.Len(t, body.History, HistoryMonths)
	assert.Equal(t, 150.0, body.History[0].Paid)
	assert.Equal(t, "$150.00", body.History[0].PaidLabel)
	assert.Equal(t, "$19.99", body.History[0].PendingLabel)
	assert.Equal(t, "$0.00", body.History[1].PaidLabel)
	require.Len(t, repo.doctorIDs, 1)
	assert.Equal(t, doc, *repo.doctorIDs[0])
}

func TestHandler_Revenue_Defaults(t *testing.T) {
	repo := &mockRepo{}
	e := newTestServer(repo, &stubLists{}, auth.RoleAdmin)

	rec := get(e, "/dashboard/revenue")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"year":2026`)
	assert.Contains(t, rec.Body.String(), `"month":10`)
	require.Len(t, repo.doctorIDs, 1)
	assert.Nil(t, repo.doctorIDs[0])
}

func TestHandler_Revenue_BadFilter(t *testing.T) {
	e := newTestServer(&mockRepo{}, &stubLists{}, auth.RoleAdmin)

	assert.Equal(t, http.StatusBadRequest, get(e, "/dashboard/revenue?month=13").Code)
	assert.Equal(t, http.StatusBadRequest, get(e, "/dashboard/revenue?year=abc").Code)
	assert.Equal(t, http.StatusBadRequest, get(e, "/dashboard/revenue?doctor=nope").Code)
}
