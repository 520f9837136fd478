package patient

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/action"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/pkg/pagination"
)

const (
	entity   = "Patient"
	ListPath = "/dashboard/patients"

	appointmentsPath = "/dashboard/appointments"
	invoicesPath     = "/dashboard/invoices"
	dashboardPath    = "/dashboard"
	revenuePath      = "/dashboard/revenue"
)

// optionViews are the appointment and invoice create and edit forms, which
// all carry the patient option list.
var optionViews = []string{action.Subtree(appointmentsPath), action.Subtree(invoicesPath)}

type Service struct {
	repo          Repository
	pipeline      *action.Pipeline
	validator     *action.Validator
	logger        zerolog.Logger
	phoneRequired bool
}

// NewService wires the patient service. phoneRequired selects whether an
// empty phone is a validation error or stored as NULL.
func NewService(repo Repository, pipeline *action.Pipeline, validator *action.Validator, logger zerolog.Logger, phoneRequired bool) *Service {
	return &Service{
		repo:          repo,
		pipeline:      pipeline,
		validator:     validator,
		logger:        logger.With().Str("domain", "patient").Logger(),
		phoneRequired: phoneRequired,
	}
}

func (s *Service) PhoneRequired() bool { return s.phoneRequired }

// -- Reads --

func (s *Service) FilteredPatients(ctx context.Context, query string, page int) ([]*TableRow, error) {
	items, err := s.repo.Filtered(ctx, query, pagination.PatientPageSize, pagination.Offset(page, pagination.PatientPageSize))
	if err != nil {
		return nil, db.FetchFailed(s.logger, "patient table", err)
	}
	return items, nil
}

func (s *Service) PatientPages(ctx context.Context, query string) (int, error) {
	n, err := s.repo.Count(ctx, query)
	if err != nil {
		return 0, db.FetchFailed(s.logger, "total number of patients", err)
	}
	return pagination.TotalPages(n, pagination.PatientPageSize), nil
}

// PatientByID returns db.ErrNotFound when no patient has id.
func (s *Service) PatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, db.FetchFailed(s.logger, "patient", err)
	}
	return p, nil
}

func (s *Service) AllPatients(ctx context.Context) ([]*Option, error) {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, db.FetchFailed(s.logger, "all patients", err)
	}
	return items, nil
}

func (s *Service) InvoiceHistory(ctx context.Context, id uuid.UUID) ([]*InvoiceHistoryItem, error) {
	items, err := s.repo.Invoices(ctx, id)
	if err != nil {
		return nil, db.FetchFailed(s.logger, "patient invoices", err)
	}
	return items, nil
}

// -- Actions --

func (s *Service) check(f *Form) action.State {
	st := s.validator.Check(f, formMessages)
	if s.phoneRequired && f.Phone == "" {
		st.AddError("phone", phoneMessage)
	}
	return st
}

// Create adds a patient. When the form came from an appointment or invoice
// create flow the caller is sent back there; any other type is ignored.
func (s *Service) Create(ctx context.Context, f Form) action.Outcome {
	f.normalize()
	if st := s.check(&f); st.HasErrors() {
		return action.Rejected(st, action.OpCreate, entity)
	}

	redirect := ListPath
	if returnFlows[f.Type] {
		redirect = "/dashboard/" + f.Type + "/create"
	}

	p := &Patient{Name: f.Name, Phone: f.phone()}
	return s.pipeline.Commit(ctx, action.OpCreate, entity,
		func(ctx context.Context) error { return s.repo.Create(ctx, p) },
		redirect,
		append([]string{ListPath, revenuePath}, optionViews...)...)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, f Form) action.Outcome {
	f.normalize()
	if st := s.check(&f); st.HasErrors() {
		return action.Rejected(st, action.OpUpdate, entity)
	}

	p := &Patient{ID: id, Name: f.Name, Phone: f.phone()}
	// Names appear in the appointment and invoice lists too.
	stale := append([]string{ListPath, DetailPath(id), action.Subtree(DetailPath(id)),
		appointmentsPath, invoicesPath, dashboardPath}, optionViews...)
	return s.pipeline.Commit(ctx, action.OpUpdate, entity,
		func(ctx context.Context) error { return s.repo.Update(ctx, p) },
		ListPath,
		stale...)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) action.Outcome {
	stale := append([]string{ListPath, DetailPath(id), action.Subtree(DetailPath(id)), revenuePath}, optionViews...)
	return s.pipeline.Delete(ctx, entity,
		func(ctx context.Context) error { return s.repo.Delete(ctx, id) },
		stale...)
}

func DetailPath(id uuid.UUID) string {
	return ListPath + "/" + id.String()
}
