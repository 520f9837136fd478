package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned by single-row reads that matched nothing. It is
// never a persistence failure.
var ErrNotFound = errors.New("not found")

// FetchError is the only error a failed read surfaces to callers. The driver
// error is logged where it happens and deliberately not wrapped.
type FetchError struct {
	Resource string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("Failed to fetch %s.", e.Resource)
}

// FetchFailed logs err with full detail and returns a *FetchError for
// resource. pgx.ErrNoRows is translated to ErrNotFound instead.
func FetchFailed(logger zerolog.Logger, resource string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	logger.Error().Err(err).Str("resource", resource).Msg("database error")
	return &FetchError{Resource: resource}
}
