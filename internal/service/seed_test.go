package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tucarrito/marketplace/internal/model"
	"github.com/tucarrito/marketplace/internal/repository"
)

func TestSeedDemoIsIdempotent(t *testing.T) {
	store := newTestStore()
	users := repository.NewUserRepo(store)
	vehicles := repository.NewVehicleRepo(store)
	ident := NewIdentity(users, store, 4)
	ctx := context.Background()

	require.NoError(t, SeedDemo(ctx, users, vehicles, ident))

	all, err := users.List(ctx)
	require.NoError(t, err)
	userCount := len(all)
	catalog, err := vehicles.ListForSale(ctx)
	require.NoError(t, err)
	listingCount := len(catalog)
	assert.NotZero(t, listingCount)

	// second run must not duplicate anything
	require.NoError(t, SeedDemo(ctx, users, vehicles, ident))
	all, err = users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, userCount)
	catalog, err = vehicles.ListForSale(ctx)
	require.NoError(t, err)
	assert.Len(t, catalog, listingCount)

	// seeded admins log in without approval workflow
	admin, err := ident.Login(ctx, "admin1@tucarrito.com", "Admin123!")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)

	// seeded regular users are pre-approved
	seller, err := ident.Login(ctx, "vendedor@test.com", "Test123!")
	require.NoError(t, err)
	assert.True(t, seller.IsApproved)
}
