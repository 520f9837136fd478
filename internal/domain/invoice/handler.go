package invoice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/clinic/clinic/internal/domain/doctor"
	"github.com/clinic/clinic/internal/domain/patient"
	"github.com/clinic/clinic/internal/platform/action"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/pkg/format"
	"github.com/clinic/clinic/pkg/pagination"
)

type PatientOptions interface {
	AllPatients(ctx context.Context) ([]*patient.Option, error)
}

type DoctorOptions interface {
	AllDoctors(ctx context.Context) ([]*doctor.Doctor, error)
}

type Handler struct {
	svc      *Service
	patients PatientOptions
	doctors  DoctorOptions
	money    *format.Formatter
	loc      *time.Location
}

func NewHandler(svc *Service, patients PatientOptions, doctors DoctorOptions, money *format.Formatter, loc *time.Location) *Handler {
	return &Handler{svc: svc, patients: patients, doctors: doctors, money: money, loc: loc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/invoices", h.List)
	g.GET("/invoices/create", h.CreateForm)
	g.POST("/invoices", h.Create)
	g.GET("/invoices/:id/edit", h.EditForm)
	g.GET("/invoices/:id/pdf", h.PDF)
	g.POST("/invoices/:id", h.Update)
	g.DELETE("/invoices/:id", h.Delete)
}

// RowView is a Row with its amount and date rendered for display.
type RowView struct {
	ID     uuid.UUID `json:"id"`
	Amount string    `json:"amount"`
	Name   string    `json:"name"`
	Phone  *string   `json:"phone"`
	Doctor string    `json:"doctor"`
	Date   string    `json:"date"`
	Reason string    `json:"reason"`
	Status string    `json:"status"`
	PDF    string    `json:"pdf"`
}

func Views(rows []*Row, money *format.Formatter, loc *time.Location) []RowView {
	out := make([]RowView, 0, len(rows))
	for _, r := range rows {
		out = append(out, RowView{
			ID:     r.ID,
			Amount: money.Currency(r.Amount),
			Name:   r.PatientName,
			Phone:  r.Phone,
			Doctor: r.DoctorName,
			Date:   format.Date(r.Date, loc),
			Reason: r.Reason,
			Status: r.Status,
			PDF:    PDFPath(r.ID),
		})
	}
	return out
}

var errNotFound = echo.NewHTTPError(http.StatusNotFound, "invoice not found")

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, errNotFound
	}
	return id, nil
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)

	var rows []*Row
	var totalPages int
	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() (err error) {
		rows, err = h.svc.FilteredInvoices(ctx, pg.Query, pg.Page)
		return err
	})
	g.Go(func() (err error) {
		totalPages, err = h.svc.InvoicePages(ctx, pg.Query)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(Views(rows, h.money, h.loc), pg, totalPages))
}

func (h *Handler) options(ctx context.Context) (map[string]interface{}, error) {
	var patients []*patient.Option
	var doctors []*doctor.Doctor
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		patients, err = h.patients.AllPatients(ctx)
		return err
	})
	g.Go(func() (err error) {
		doctors, err = h.doctors.AllDoctors(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return map[string]interface{}{"patients": patients, "doctors": doctors}, nil
}

func (h *Handler) CreateForm(c echo.Context) error {
	model, err := h.options(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, model)
}

func (h *Handler) Create(c echo.Context) error {
	var f Form
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	return action.Respond(c, h.svc.Create(c.Request().Context(), f))
}

func (h *Handler) EditForm(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	inv, err := h.svc.InvoiceByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return errNotFound
	}
	if err != nil {
		return err
	}
	model, err := h.options(ctx)
	if err != nil {
		return err
	}
	model["invoice"] = inv
	return c.JSON(http.StatusOK, model)
}

func (h *Handler) PDF(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	inv, err := h.svc.InvoiceDetail(c.Request().Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		return errNotFound
	}
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := WritePDF(&buf, inv, h.money, h.loc); err != nil {
		return fmt.Errorf("render invoice pdf: %w", err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`inline; filename="invoice-%s.pdf"`, inv.ID))
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
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
