package invoice

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/domain/patient"
	"github.com/clinic/clinic/internal/platform/action"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/pkg/pagination"
)

const (
	entity        = "Invoice"
	ListPath      = "/dashboard/invoices"
	dashboardPath = "/dashboard"
	revenuePath   = "/dashboard/revenue"

	// LatestLimit is how many recent invoices the overview shows.
	LatestLimit = 5
)

type Service struct {
	repo      Repository
	pipeline  *action.Pipeline
	validator *action.Validator
	logger    zerolog.Logger
}

func NewService(repo Repository, pipeline *action.Pipeline, validator *action.Validator, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		pipeline:  pipeline,
		validator: validator,
		logger:    logger.With().Str("domain", "invoice").Logger(),
	}
}

func (s *Service) FilteredInvoices(ctx context.Context, query string, page int) ([]*Row, error) {
	items, err := s.repo.Filtered(ctx, query, pagination.InvoicePageSize, pagination.Offset(page, pagination.InvoicePageSize))
	if err != nil {
		return nil, db.FetchFailed(s.logger, "invoices", err)
	}
	return items, nil
}

func (s *Service) InvoicePages(ctx context.Context, query string) (int, error) {
	n, err := s.repo.Count(ctx, query)
	if err != nil {
		return 0, db.FetchFailed(s.logger, "total number of invoices", err)
	}
	return pagination.TotalPages(n, pagination.InvoicePageSize), nil
}

func (s *Service) InvoiceByID(ctx context.Context, id uuid.UUID) (*Editable, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, db.FetchFailed(s.logger, "invoice", err)
	}
	return inv, nil
}

func (s *Service) InvoiceDetail(ctx context.Context, id uuid.UUID) (*Row, error) {
	inv, err := s.repo.Detail(ctx, id)
	if err != nil {
		return nil, db.FetchFailed(s.logger, "invoice", err)
	}
	return inv, nil
}

func (s *Service) LatestInvoices(ctx context.Context) ([]*Row, error) {
	items, err := s.repo.Latest(ctx, LatestLimit)
	if err != nil {
		return nil, db.FetchFailed(s.logger, "the latest invoices", err)
	}
	return items, nil
}

func (s *Service) build(f Form) (*Invoice, action.State) {
	f.normalize()
	st := s.validator.Check(&f, formMessages)
	if st.HasErrors() {
		return nil, st
	}
	amount, err := action.ParseAmount(f.Amount)
	if err != nil {
		st.AddError("amount", formMessages["amount"])
		return nil, st
	}
	return &Invoice{
		PatientID: uuid.MustParse(f.PatientID),
		DoctorID:  uuid.MustParse(f.DoctorID),
		Amount:    action.Cents(amount),
		Reason:    f.Reason,
		Status:    f.Status,
	}, st
}

// stale lists the views whose totals include inv.
func stale(inv *Invoice, extra ...string) []string {
	return append([]string{ListPath, dashboardPath, revenuePath, patient.DetailPath(inv.PatientID), patient.ListPath}, extra...)
}

func (s *Service) Create(ctx context.Context, f Form) action.Outcome {
	inv, st := s.build(f)
	if st.HasErrors() {
		return action.Rejected(st, action.OpCreate, entity)
	}
	return s.pipeline.Commit(ctx, action.OpCreate, entity,
		func(ctx context.Context) error { return s.repo.Create(ctx, inv) },
		ListPath,
		stale(inv)...)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, f Form) action.Outcome {
	inv, st := s.build(f)
	if st.HasErrors() {
		return action.Rejected(st, action.OpUpdate, entity)
	}
	inv.ID = id
	return s.pipeline.Commit(ctx, action.OpUpdate, entity,
		func(ctx context.Context) error { return s.repo.Update(ctx, inv) },
		ListPath,
		stale(inv, action.Subtree(itemPath(id)))...)
}

// Delete removes an invoice. The owner is looked up first so their detail
// view can be dropped too; if that lookup fails the delete still runs. The
// invoice's own edit and pdf views are always dropped.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) action.Outcome {
	paths := []string{ListPath, dashboardPath, revenuePath, patient.ListPath, action.Subtree(itemPath(id))}
	if inv, err := s.repo.GetByID(ctx, id); err == nil {
		paths = append(paths, patient.DetailPath(inv.PatientID))
	}
	return s.pipeline.Delete(ctx, entity,
		func(ctx context.Context) error { return s.repo.Delete(ctx, id) },
		paths...)
}

func itemPath(id uuid.UUID) string {
	return ListPath + "/" + id.String()
}

func EditPath(id uuid.UUID) string {
	return itemPath(id) + "/edit"
}

func PDFPath(id uuid.UUID) string {
	return itemPath(id) + "/pdf"
}
