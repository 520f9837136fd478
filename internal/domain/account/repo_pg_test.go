package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/internal/platform/db/dbtest"
)

func TestRepoPG_UserByEmail(t *testing.T) {
	pool := dbtest.Open(t)
	repo := NewRepoPG(pool)
	ctx := dbtest.Conn(t, pool)

	u := &auth.User{Name: "Admin", Email: "admin@nextmail.com", PasswordHash: "$2a$10$hash", Role: auth.RoleAdmin}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotEmpty(t, u.ID)

	got, err := repo.UserByEmail(ctx, "admin@nextmail.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, auth.RoleAdmin, got.Role)

	_, err = repo.UserByEmail(ctx, "nobody@nextmail.com")
	assert.ErrorIs(t, err, db.ErrNotFound)

	assert.Error(t, repo.Create(ctx, &auth.User{Name: "Dup", Email: "admin@nextmail.com", PasswordHash: "x", Role: auth.RoleUser}))
}
