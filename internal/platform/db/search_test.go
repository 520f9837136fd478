package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

func TestContainsPattern(t *testing.T) {
	cases := map[string]string{
		"":         "%%",
		"ali":      "%ali%",
		"50%":      `%50\%%`,
		"a_b":      `%a\_b%`,
		`back\sl`:  `%back\\sl%`,
		"2026-10-": "%2026-10-%",
	}
	for in, want := range cases {
		if got := ContainsPattern(in); got != want {
			t.Errorf("ContainsPattern(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestILikeAny(t *testing.T) {
	got := ILikeAny(1, "patients.name", "patients.phone", "doctors.name")
	want := "(patients.name ILIKE $1 OR patients.phone ILIKE $1 OR doctors.name ILIKE $1)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFetchFailed(t *testing.T) {
	logger := zerolog.Nop()

	if err := FetchFailed(logger, "invoice", pgx.ErrNoRows); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for no rows, got %v", err)
	}

	err := FetchFailed(logger, "invoices", fmt.Errorf("dial tcp 10.0.0.1:5432: connection refused"))
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %T", err)
	}
	if err.Error() != "Failed to fetch invoices." {
		t.Errorf("unexpected message %q", err.Error())
	}
	if errors.Unwrap(err) != nil {
		t.Error("fetch error must not carry the driver error")
	}
}
