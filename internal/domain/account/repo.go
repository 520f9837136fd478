package account

import (
	"context"

	"github.com/clinic/clinic/internal/platform/auth"
)

type Repository interface {
	// UserByEmail returns db.ErrNotFound when no account has email.
	UserByEmail(ctx context.Context, email string) (*auth.User, error)
	Create(ctx context.Context, u *auth.User) error
}
