// Package dbtest gives repository tests a migrated, throwaway schema on the
// database named by CLINIC_TEST_DATABASE_URL. Tests skip when it is unset.
package dbtest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/db"
)

const EnvURL = "CLINIC_TEST_DATABASE_URL"

// Open creates a schema named after a random id, applies every migration to
// it, and returns a pool whose sessions resolve unqualified names there. The
// schema is dropped when the test ends.
func Open(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv(EnvURL)
	if url == "" {
		t.Skipf("%s not set; skipping PostgreSQL test", EnvURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	schema := "clinic_test_" + uuid.NewString()[:8]

	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		t.Fatalf("parse %s: %v", EnvURL, err)
	}
	cfg.MaxConns = 4
	cfg.ConnConfig.RuntimeParams["search_path"] = schema + ",public"

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	if _, err := db.NewMigrator(pool, MigrationsDir()).Up(ctx, schema); err != nil {
		pool.Close()
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		drop := fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", pgx.Identifier{schema}.Sanitize())
		if _, err := pool.Exec(ctx, drop); err != nil {
			t.Logf("drop schema %s: %v", schema, err)
		}
		pool.Close()
	})
	return pool
}

// Conn pins one pooled connection for the rest of the test and returns a
// context that routes repository queries through it via db.WithConn.
func Conn(t *testing.T, pool *pgxpool.Pool) context.Context {
	t.Helper()
	conn, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	t.Cleanup(conn.Release)
	return db.WithConn(context.Background(), conn)
}

// MigrationsDir is the absolute path of the repository's migrations/.
func MigrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "migrations")
}

// SeedDoctor inserts a doctor and returns its id. Doctors have no write path
// in the application, so tests create them directly.
func SeedDoctor(t *testing.T, pool *pgxpool.Pool, name string) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	if err := pool.QueryRow(context.Background(),
		`INSERT INTO doctors (name) VALUES ($1) RETURNING id`, name).Scan(&id); err != nil {
		t.Fatalf("seed doctor: %v", err)
	}
	return id
}

// SeedPatient inserts a patient and returns its id.
func SeedPatient(t *testing.T, pool *pgxpool.Pool, name string, phone *string) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	if err := pool.QueryRow(context.Background(),
		`INSERT INTO patients (name, phone) VALUES ($1, $2) RETURNING id`, name, phone).Scan(&id); err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	return id
}
