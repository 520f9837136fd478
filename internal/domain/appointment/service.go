package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/action"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/pkg/pagination"
)

const (
	entity        = "Appointment"
	ListPath      = "/dashboard/appointments"
	dashboardPath = "/dashboard"

	// LatestLimit is how many upcoming appointments the overview shows.
	LatestLimit = 5
)

type Service struct {
	repo      Repository
	pipeline  *action.Pipeline
	validator *action.Validator
	logger    zerolog.Logger
	loc       *time.Location
}

// NewService wires the appointment service. Submitted dates without a zone
// are read in loc.
func NewService(repo Repository, pipeline *action.Pipeline, validator *action.Validator, logger zerolog.Logger, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		repo:      repo,
		pipeline:  pipeline,
		validator: validator,
		logger:    logger.With().Str("domain", "appointment").Logger(),
		loc:       loc,
	}
}

func (s *Service) FilteredAppointments(ctx context.Context, query string, page int) ([]*Row, error) {
	items, err := s.repo.Filtered(ctx, query, pagination.AppointmentPageSize, pagination.Offset(page, pagination.AppointmentPageSize))
	if err != nil {
		return nil, db.FetchFailed(s.logger, "appointments", err)
	}
	return items, nil
}

func (s *Service) AppointmentPages(ctx context.Context, query string) (int, error) {
	n, err := s.repo.Count(ctx, query)
	if err != nil {
		return 0, db.FetchFailed(s.logger, "total number of appointments", err)
	}
	return pagination.TotalPages(n, pagination.AppointmentPageSize), nil
}

func (s *Service) AppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, db.FetchFailed(s.logger, "appointment", err)
	}
	return a, nil
}

func (s *Service) LatestAppointments(ctx context.Context) ([]*Row, error) {
	items, err := s.repo.Latest(ctx, LatestLimit)
	if err != nil {
		return nil, db.FetchFailed(s.logger, "the latest appointments", err)
	}
	return items, nil
}

// build validates f and converts it. The returned state is non-empty when
// validation failed.
func (s *Service) build(f Form) (*Appointment, action.State) {
	f.normalize()
	st := s.validator.Check(&f, formMessages)
	if st.HasErrors() {
		return nil, st
	}
	at, err := action.ParseTimestamp(f.AppointmentDate, s.loc)
	if err != nil {
		st.AddError("appointment_date", formMessages["appointment_date"])
		return nil, st
	}
	return &Appointment{
		PatientID:       uuid.MustParse(f.PatientID),
		DoctorID:        uuid.MustParse(f.DoctorID),
		AppointmentDate: at,
		Reason:          f.Reason,
	}, st
}

func (s *Service) Create(ctx context.Context, f Form) action.Outcome {
	a, st := s.build(f)
	if st.HasErrors() {
		return action.Rejected(st, action.OpCreate, entity)
	}
	return s.pipeline.Commit(ctx, action.OpCreate, entity,
		func(ctx context.Context) error { return s.repo.Create(ctx, a) },
		ListPath,
		ListPath, dashboardPath)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, f Form) action.Outcome {
	a, st := s.build(f)
	if st.HasErrors() {
		return action.Rejected(st, action.OpUpdate, entity)
	}
	a.ID = id
	return s.pipeline.Commit(ctx, action.OpUpdate, entity,
		func(ctx context.Context) error { return s.repo.Update(ctx, a) },
		ListPath,
		ListPath, dashboardPath, EditPath(id))
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) action.Outcome {
	return s.pipeline.Delete(ctx, entity,
		func(ctx context.Context) error { return s.repo.Delete(ctx, id) },
		ListPath, dashboardPath, EditPath(id))
}

func EditPath(id uuid.UUID) string {
	return ListPath + "/" + id.String() + "/edit"
}
