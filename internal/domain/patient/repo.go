package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Filtered returns one page of patients matching query by name or
	// phone, ordered by name, with invoice totals.
	Filtered(ctx context.Context, query string, limit, offset int) ([]*TableRow, error)
	Count(ctx context.Context, query string) (int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	ListAll(ctx context.Context) ([]*Option, error)
	Invoices(ctx context.Context, patientID uuid.UUID) ([]*InvoiceHistoryItem, error)
	Create(ctx context.Context, p *Patient) error
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
}
