package dashboard

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/clinic/clinic/internal/domain/appointment"
	"github.com/clinic/clinic/internal/domain/doctor"
	"github.com/clinic/clinic/internal/domain/invoice"
	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/pkg/format"
)

const (
	RevenuePath      = "/dashboard/revenue"
	AccessDeniedPath = "/dashboard/revenue/access-denied"
)

type LatestAppointments interface {
	LatestAppointments(ctx context.Context) ([]*appointment.Row, error)
}

type LatestInvoices interface {
	LatestInvoices(ctx context.Context) ([]*invoice.Row, error)
}

type DoctorOptions interface {
	AllDoctors(ctx context.Context) ([]*doctor.Doctor, error)
}

type Handler struct {
	svc          *Service
	appointments LatestAppointments
	invoices     LatestInvoices
	doctors      DoctorOptions
	money        *format.Formatter
}

func NewHandler(svc *Service, appointments LatestAppointments, invoices LatestInvoices, doctors DoctorOptions, money *format.Formatter) *Handler {
	return &Handler{svc: svc, appointments: appointments, invoices: invoices, doctors: doctors, money: money}
}

// RegisterRoutes mounts the overview and revenue pages. The revenue page is
// admin only and the check runs before any revenue query.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.Overview)
	g.GET("/revenue", h.Revenue, auth.RequireRole(AccessDeniedPath, auth.RoleAdmin))
	g.GET("/revenue/access-denied", h.AccessDenied)
}

type cardsView struct {
	AppointmentsToday    int64  `json:"appointments_today"`
	AppointmentsTomorrow int64  `json:"appointments_tomorrow"`
	PaidToday            string `json:"paid_today"`
	PendingToday         string `json:"pending_today"`
}

func (h *Handler) Overview(c echo.Context) error {
	var cards *Cards
	var appts []*appointment.Row
	var invs []*invoice.Row

	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() (err error) {
		cards, err = h.svc.Cards(ctx)
		return err
	})
	g.Go(func() (err error) {
		appts, err = h.appointments.LatestAppointments(ctx)
		return err
	})
	g.Go(func() (err error) {
		invs, err = h.invoices.LatestInvoices(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	loc := h.svc.Location()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"cards": cardsView{
			AppointmentsToday:    cards.AppointmentsToday,
			AppointmentsTomorrow: cards.AppointmentsTomorrow,
			PaidToday:            h.money.Currency(cards.PaidToday),
			PendingToday:         h.money.Currency(cards.PendingToday),
		},
		"latest_appointments": appointment.Views(appts, loc),
		"latest_invoices":     invoice.Views(invs, h.money, loc),
	})
}

type revenueCardsView struct {
	Invoices    int64  `json:"invoices"`
	NewPatients int64  `json:"new_patients"`
	Paid        string `json:"paid"`
	Pending     string `json:"pending"`
}

// historyView is one chart bar. Paid and Pending stay numeric for plotting;
// the labels are the formatted amounts.
type historyView struct {
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	Paid         float64 `json:"paid"`
	Pending      float64 `json:"pending"`
	PaidLabel    string  `json:"paid_label"`
	PendingLabel string  `json:"pending_label"`
}

func (h *Handler) historyViews(history []MonthRevenue) []historyView {
	out := make([]historyView, len(history))
	for i, m := range history {
		out[i] = historyView{
			Year:         m.Year,
			Month:        m.Month,
			Paid:         m.Paid,
			Pending:      m.Pending,
			PaidLabel:    h.money.Major(m.Paid),
			PendingLabel: h.money.Major(m.Pending),
		}
	}
	return out
}

// revenueFilter reads month, year and doctor. Missing month or year default
// to the current one.
func (h *Handler) revenueFilter(c echo.Context) (int, time.Month, *uuid.UUID, error) {
	now := h.svc.Now()
	year, month := now.Year(), now.Month()

	if v := c.QueryParam("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 || y > 9999 {
			return 0, 0, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid year")
		}
		year = y
	}
	if v := c.QueryParam("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid month")
		}
		month = time.Month(m)
	}

	var doctorID *uuid.UUID
	if v := c.QueryParam("doctor"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return 0, 0, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid doctor")
		}
		doctorID = &id
	}
	return year, month, doctorID, nil
}

func (h *Handler) Revenue(c echo.Context) error {
	year, month, doctorID, err := h.revenueFilter(c)
	if err != nil {
		return err
	}

	var cards *RevenueCards
	var history []MonthRevenue
	var doctors []*doctor.Doctor
	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() (err error) {
		cards, err = h.svc.RevenueCards(ctx, year, month, doctorID)
		return err
	})
	g.Go(func() (err error) {
		history, err = h.svc.RevenueHistory(ctx)
		return err
	})
	g.Go(func() (err error) {
		doctors, err = h.doctors.AllDoctors(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"year":    year,
		"month":   int(month),
		"doctor":  doctorID,
		"doctors": doctors,
		"cards": revenueCardsView{
			Invoices:    cards.Invoices,
			NewPatients: cards.NewPatients,
			Paid:        h.money.Currency(cards.Paid),
			Pending:     h.money.Currency(cards.Pending),
		},
		"history": h.historyViews(history),
	})
}

func (h *Handler) AccessDenied(c echo.Context) error {
	return c.JSON(http.StatusForbidden, map[string]string{
		"message": "You do not have permission to view revenue.",
	})
}
