package doctor

import (
	"context"
	"testing"

	"github.com/clinic/clinic/internal/platform/db/dbtest"
)

func TestRepoPG_ListAllOrderedByName(t *testing.T) {
	pool := dbtest.Open(t)
	dbtest.SeedDoctor(t, pool, "Zoe Quinn")
	dbtest.SeedDoctor(t, pool, "Amir Patel")

	items, err := NewRepoPG(pool).ListAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || items[0].Name != "Amir Patel" || items[1].Name != "Zoe Quinn" {
		t.Errorf("unexpected order: %+v", items)
	}
}
