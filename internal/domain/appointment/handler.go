package appointment

import (
	"context"
	"errors"
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

// PatientOptions and DoctorOptions fill the select inputs of the forms.
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
	loc      *time.Location
}

func NewHandler(svc *Service, patients PatientOptions, doctors DoctorOptions, loc *time.Location) *Handler {
	return &Handler{svc: svc, patients: patients, doctors: doctors, loc: loc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/appointments", h.List)
	g.GET("/appointments/create", h.CreateForm)
	g.POST("/appointments", h.Create)
	g.GET("/appointments/:id/edit", h.EditForm)
	g.POST("/appointments/:id", h.Update)
	g.DELETE("/appointments/:id", h.Delete)
}

// RowView is a Row with its dates rendered for display.
type RowView struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Phone           *string   `json:"phone"`
	Doctor          string    `json:"doctor"`
	AppointmentDate string    `json:"appointment_date"`
	Reason          string    `json:"reason"`
	Date            string    `json:"date"`
}

// Views renders rows in loc.
func Views(rows []*Row, loc *time.Location) []RowView {
	out := make([]RowView, 0, len(rows))
	for _, r := range rows {
		out = append(out, RowView{
			ID:              r.ID,
			Name:            r.PatientName,
			Phone:           r.Phone,
			Doctor:          r.DoctorName,
			AppointmentDate: format.DateTime(r.AppointmentDate, loc),
			Reason:          r.Reason,
			Date:            format.Date(r.Date, loc),
		})
	}
	return out
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	return id, nil
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)

	var rows []*Row
	var totalPages int
	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() (err error) {
		rows, err = h.svc.FilteredAppointments(ctx, pg.Query, pg.Page)
		return err
	})
	g.Go(func() (err error) {
		totalPages, err = h.svc.AppointmentPages(ctx, pg.Query)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(Views(rows, h.loc), pg, totalPages))
}

// options loads both select lists concurrently.
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

	a, err := h.svc.AppointmentByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	if err != nil {
		return err
	}
	model, err := h.options(ctx)
	if err != nil {
		return err
	}
	model["appointment"] = a
	return c.JSON(http.StatusOK, model)
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
