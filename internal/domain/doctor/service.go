package doctor

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/db"
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger.With().Str("domain", "doctor").Logger()}
}

// AllDoctors lists every doctor by name for select inputs and the revenue
// filter.
func (s *Service) AllDoctors(ctx context.Context) ([]*Doctor, error) {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, db.FetchFailed(s.logger, "all doctors", err)
	}
	return items, nil
}
