package doctor

import "context"

type Repository interface {
	ListAll(ctx context.Context) ([]*Doctor, error)
}
