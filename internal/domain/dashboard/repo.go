package dashboard

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CountAppointments(ctx context.Context, r Range) (int64, error)
	// InvoiceTotals sums invoices dated in r. A nil doctorID covers all
	// doctors.
	InvoiceTotals(ctx context.Context, r Range, doctorID *uuid.UUID) (Totals, error)
	CountNewPatients(ctx context.Context, r Range) (int64, error)
	// MonthlyRevenue returns one entry per range, in the same order.
	MonthlyRevenue(ctx context.Context, months []Range) ([]MonthAmounts, error)
}
