package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tucarrito/marketplace/internal/model"
)

func TestMemoryKVCopiesValues(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	val := []byte("hello")
	require.NoError(t, kv.Set(ctx, "k", val))
	val[0] = 'X'

	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	got[0] = 'Y'
	again, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), again)
}

func TestMemoryKVMissingKey(t *testing.T) {
	kv := NewMemoryKV()
	_, err := kv.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreMissingCollectionReadsEmpty(t *testing.T) {
	store := NewStore(NewMemoryKV())
	users, err := store.Users(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestStoreMutatePersists(t *testing.T) {
	store := NewStore(NewMemoryKV())
	ctx := context.Background()

	err := store.MutateUsers(ctx, func(users []model.User) ([]model.User, error) {
		return append(users, model.User{ID: "u1", Email: "a@b.co", CreatedAt: time.Now().UTC()}), nil
	})
	require.NoError(t, err)

	users, err := store.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u1", users[0].ID)
}

func TestStoreMutateAbortsOnError(t *testing.T) {
	store := NewStore(NewMemoryKV())
	ctx := context.Background()

	require.NoError(t, store.MutateVehicles(ctx, func(vs []model.Vehicle) ([]model.Vehicle, error) {
		return append(vs, model.Vehicle{ID: "v1"}), nil
	}))
	err := store.MutateVehicles(ctx, func(vs []model.Vehicle) ([]model.Vehicle, error) {
		return nil, ErrNotFound
	})
	assert.ErrorIs(t, err, ErrNotFound)

	vs, err := store.Vehicles(ctx)
	require.NoError(t, err)
	assert.Len(t, vs, 1)
}

func TestCurrentUserSlot(t *testing.T) {
	store := NewStore(NewMemoryKV())
	ctx := context.Background()

	id, err := store.CurrentUserID(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, store.SetCurrentUserID(ctx, "u42"))
	id, err = store.CurrentUserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u42", id)

	require.NoError(t, store.ClearCurrentUser(ctx))
	require.NoError(t, store.ClearCurrentUser(ctx)) // idempotent
	id, err = store.CurrentUserID(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestUserRepoEmailUniqueness(t *testing.T) {
	store := NewStore(NewMemoryKV())
	repo := NewUserRepo(store)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, model.User{ID: "u1", Email: "dup@test.com"}))
	err := repo.Create(ctx, model.User{ID: "u2", Email: "DUP@test.com"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestVehicleRepoUpdateCanVeto(t *testing.T) {
	store := NewStore(NewMemoryKV())
	repo := NewVehicleRepo(store)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, model.Vehicle{ID: "v1", Price: 100}))
	veto := assert.AnError
	_, err := repo.Update(ctx, "v1", func(v *model.Vehicle) error {
		v.Price = 999
		return veto
	})
	assert.ErrorIs(t, err, veto)

	v, err := repo.GetByID(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, float64(100), v.Price)
}

func TestTemporaryVehiclePurge(t *testing.T) {
	store := NewStore(NewMemoryKV())
	repo := NewTemporaryVehicleRepo(store)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, model.TemporaryVehicle{ID: "old", CreatedAt: now.AddDate(0, 0, -40)}))
	require.NoError(t, repo.Create(ctx, model.TemporaryVehicle{ID: "new", CreatedAt: now}))

	removed, err := repo.PurgeOlderThan(ctx, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = repo.GetByID(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetByID(ctx, "new")
	assert.NoError(t, err)
}
