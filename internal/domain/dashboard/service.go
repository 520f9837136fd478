package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/clinic/clinic/internal/platform/db"
)

// HistoryMonths is the length of the revenue chart.
const HistoryMonths = 12

type Service struct {
	repo   Repository
	logger zerolog.Logger
	loc    *time.Location
	now    func() time.Time
}

// NewService wires the aggregate queries. loc decides where a day or month
// starts; it is read on every call, never cached.
func NewService(repo Repository, logger zerolog.Logger, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		repo:   repo,
		logger: logger.With().Str("domain", "dashboard").Logger(),
		loc:    loc,
		now:    time.Now,
	}
}

func (s *Service) Location() *time.Location { return s.loc }

// Now is the current time in the configured location.
func (s *Service) Now() time.Time { return s.now().In(s.loc) }

// Cards counts today's and tomorrow's appointments and sums today's
// invoices.
func (s *Service) Cards(ctx context.Context) (*Cards, error) {
	today := DayRange(s.now(), s.loc)
	tomorrow := Range{Start: today.End, End: today.End.AddDate(0, 0, 1)}

	var cards Cards
	var totals Totals
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cards.AppointmentsToday, err = s.repo.CountAppointments(ctx, today)
		return err
	})
	g.Go(func() (err error) {
		cards.AppointmentsTomorrow, err = s.repo.CountAppointments(ctx, tomorrow)
		return err
	})
	g.Go(func() (err error) {
		totals, err = s.repo.InvoiceTotals(ctx, today, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, db.FetchFailed(s.logger, "card data", err)
	}
	cards.PaidToday, cards.PendingToday = totals.Paid, totals.Pending
	return &cards, nil
}

// RevenueCards summarises one month. New patients are not attributed to a
// doctor, so doctorID only narrows the invoice figures.
func (s *Service) RevenueCards(ctx context.Context, year int, month time.Month, doctorID *uuid.UUID) (*RevenueCards, error) {
	rg := MonthRange(year, month, s.loc)

	var totals Totals
	var newPatients int64
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totals, err = s.repo.InvoiceTotals(ctx, rg, doctorID)
		return err
	})
	g.Go(func() (err error) {
		newPatients, err = s.repo.CountNewPatients(ctx, rg)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, db.FetchFailed(s.logger, "card data", err)
	}
	return &RevenueCards{
		Invoices:    totals.Count,
		NewPatients: newPatients,
		Paid:        totals.Paid,
		Pending:     totals.Pending,
	}, nil
}

// RevenueHistory returns the last HistoryMonths months, current month first.
func (s *Service) RevenueHistory(ctx context.Context) ([]MonthRevenue, error) {
	now := s.Now()
	current := MonthRange(now.Year(), now.Month(), s.loc)

	months := make([]Range, HistoryMonths)
	for i := range months {
		start := current.Start.AddDate(0, -i, 0)
		months[i] = Range{Start: start, End: start.AddDate(0, 1, 0)}
	}

	amounts, err := s.repo.MonthlyRevenue(ctx, months)
	if err != nil {
		return nil, db.FetchFailed(s.logger, "revenue data", err)
	}

	out := make([]MonthRevenue, len(months))
	for i, m := range months {
		out[i] = MonthRevenue{Year: m.Start.Year(), Month: int(m.Start.Month())}
		if i < len(amounts) {
			out[i].Paid, out[i].Pending = amounts[i].Paid, amounts[i].Pending
		}
	}
	return out, nil
}
