package patient

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/clinic/clinic/internal/platform/action"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/pkg/format"
	"github.com/clinic/clinic/pkg/pagination"
)

type Handler struct {
	svc   *Service
	money *format.Formatter
	loc   *time.Location
}

func NewHandler(svc *Service, money *format.Formatter, loc *time.Location) *Handler {
	return &Handler{svc: svc, money: money, loc: loc}
}

// RegisterRoutes mounts the patient pages on the /dashboard group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/patients", h.List)
	g.GET("/patients/create", h.CreateForm)
	g.POST("/patients", h.Create)
	g.GET("/patients/:id", h.Detail)
	g.GET("/patients/:id/edit", h.EditForm)
	g.POST("/patients/:id", h.Update)
	g.DELETE("/patients/:id", h.Delete)
}

type tableRowView struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Phone         *string   `json:"phone"`
	TotalInvoices int64     `json:"total_invoices"`
	TotalPending  string    `json:"total_pending"`
	TotalPaid     string    `json:"total_paid"`
}

type invoiceView struct {
	ID     uuid.UUID `json:"id"`
	Amount string    `json:"amount"`
	Date   string    `json:"date"`
	Reason string    `json:"reason"`
	Status string    `json:"status"`
	Doctor string    `json:"doctor"`
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return id, nil
}

func notFound(err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return err
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()

	var rows []*TableRow
	var totalPages int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rows, err = h.svc.FilteredPatients(gctx, pg.Query, pg.Page)
		return err
	})
	g.Go(func() (err error) {
		totalPages, err = h.svc.PatientPages(gctx, pg.Query)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	views := make([]tableRowView, 0, len(rows))
	for _, r := range rows {
		views = append(views, tableRowView{
			ID:            r.ID,
			Name:          r.Name,
			Phone:         r.Phone,
			TotalInvoices: r.TotalInvoices,
			TotalPending:  h.money.Currency(r.TotalPending),
			TotalPaid:     h.money.Currency(r.TotalPaid),
		})
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(views, pg, totalPages))
}

func (h *Handler) CreateForm(c echo.Context) error {
	flow := c.QueryParam("type")
	if !returnFlows[flow] {
		flow = ""
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"type":           flow,
		"phone_required": h.svc.PhoneRequired(),
	})
}

func (h *Handler) Create(c echo.Context) error {
	var f Form
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	return action.Respond(c, h.svc.Create(c.Request().Context(), f))
}

func (h *Handler) Detail(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	var p *Patient
	var invoices []*InvoiceHistoryItem
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		p, err = h.svc.PatientByID(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		invoices, err = h.svc.InvoiceHistory(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return notFound(err)
	}

	views := make([]invoiceView, 0, len(invoices))
	for _, inv := range invoices {
		views = append(views, invoiceView{
			ID:     inv.ID,
			Amount: h.money.Currency(inv.Amount),
			Date:   format.Date(inv.Date, h.loc),
			Reason: inv.Reason,
			Status: inv.Status,
			Doctor: inv.DoctorName,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"patient":  p,
		"invoices": views,
	})
}

func (h *Handler) EditForm(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.PatientByID(c.Request().Context(), id)
	if err != nil {
		return notFound(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"patient":        p,
		"phone_required": h.svc.PhoneRequired(),
	})
}

func (h *Handler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var f Form
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	return action.Respond(c, h.svc.Update(c.Request().Context(), id, f))
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	return action.Respond(c, h.svc.Delete(c.Request().Context(), id))
}
