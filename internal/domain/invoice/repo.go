package invoice

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Filtered(ctx context.Context, query string, limit, offset int) ([]*Row, error)
	Count(ctx context.Context, query string) (int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Editable, error)
	// Detail returns one invoice with patient and doctor names.
	Detail(ctx context.Context, id uuid.UUID) (*Row, error)
	// Latest returns the newest limit invoices.
	Latest(ctx context.Context, limit int) ([]*Row, error)
	Create(ctx context.Context, inv *Invoice) error
	Update(ctx context.Context, inv *Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
}
