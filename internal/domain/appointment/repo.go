package appointment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Filtered(ctx context.Context, query string, limit, offset int) ([]*Row, error)
	Count(ctx context.Context, query string) (int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// Latest returns the first limit appointments by appointment date.
	Latest(ctx context.Context, limit int) ([]*Row, error)
	Create(ctx context.Context, a *Appointment) error
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
}
