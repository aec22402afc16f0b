package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tucarrito/marketplace/internal/model"
	"github.com/tucarrito/marketplace/internal/repository"
)

func newTestStore() *repository.Store {
	return repository.NewStore(repository.NewMemoryKV())
}

func newTestIdentity(store *repository.Store) (*Identity, *repository.UserRepo) {
	users := repository.NewUserRepo(store)
	return NewIdentity(users, store, 4), users
}

func seedAdmin(t *testing.T, ident *Identity, users *repository.UserRepo, email string) model.User {
	t.Helper()
	u, err := ident.Register(context.Background(), RegisterInput{
		Email: email, Password: "Admin123!", FullName: "Admin",
	})
	require.NoError(t, err)
	u, err = users.Update(context.Background(), u.ID, func(u *model.User) {
		u.Role = model.RoleAdmin
		u.IsApproved = true
		u.ValidationStatus = model.ValidationApproved
	})
	require.NoError(t, err)
	return u
}

func TestRegisterStartsPending(t *testing.T) {
	store := newTestStore()
	ident, _ := newTestIdentity(store)

	u, err := ident.Register(context.Background(), RegisterInput{
		Email: "Maria@Test.com", Password: "Secret1!", FullName: "María Pérez", UserType: "invalid",
	})
	require.NoError(t, err)

	assert.Equal(t, "maria@test.com", u.Email)
	assert.Equal(t, model.RoleUser, u.Role)
	assert.Equal(t, model.ValidationPending, u.ValidationStatus)
	assert.False(t, u.IsApproved)
	assert.Equal(t, model.UserTypeBoth, u.UserType)
	assert.NotEqual(t, "Secret1!", u.PasswordHash)
	assert.NotEmpty(t, u.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newTestStore()
	ident, _ := newTestIdentity(store)
	ctx := context.Background()

	_, err := ident.Register(ctx, RegisterInput{Email: "dup@test.com", Password: "x"})
	require.NoError(t, err)
	_, err = ident.Register(ctx, RegisterInput{Email: "DUP@test.com", Password: "y"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

// Full approval round trip: a fresh registration cannot log in until
// an admin approves it.
func TestApprovalGate(t *testing.T) {
	store := newTestStore()
	ident, users := newTestIdentity(store)
	ctx := context.Background()

	admin := seedAdmin(t, ident, users, "admin@tucarrito.com")

	u, err := ident.Register(ctx, RegisterInput{Email: "nuevo@test.com", Password: "Pass123!"})
	require.NoError(t, err)

	_, err = ident.Login(ctx, "nuevo@test.com", "Pass123!")
	assert.ErrorIs(t, err, ErrPendingApproval)

	approved, err := ident.ApproveUser(ctx, u.ID, admin.ID)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)
	assert.Equal(t, model.ValidationApproved, approved.ValidationStatus)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, admin.ID, *approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)

	got, err := ident.Login(ctx, "nuevo@test.com", "Pass123!")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	cur, err := ident.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, u.ID, cur.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	store := newTestStore()
	ident, users := newTestIdentity(store)
	ctx := context.Background()

	admin := seedAdmin(t, ident, users, "admin@tucarrito.com")
	u, err := ident.Register(ctx, RegisterInput{Email: "user@test.com", Password: "Right1!"})
	require.NoError(t, err)
	_, err = ident.ApproveUser(ctx, u.ID, admin.ID)
	require.NoError(t, err)

	_, err = ident.Login(ctx, "user@test.com", "Wrong1!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = ident.Login(ctx, "nobody@test.com", "Right1!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAdminBypassesApproval(t *testing.T) {
	store := newTestStore()
	ident, users := newTestIdentity(store)
	ctx := context.Background()

	admin, err := ident.Register(ctx, RegisterInput{Email: "root@tucarrito.com", Password: "Root123!"})
	require.NoError(t, err)
	_, err = users.Update(ctx, admin.ID, func(u *model.User) { u.Role = model.RoleAdmin })
	require.NoError(t, err)

	got, err := ident.Login(ctx, "root@tucarrito.com", "Root123!")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, got.Role)
}

func TestRejectedAccountCannotLogin(t *testing.T) {
	store := newTestStore()
	ident, users := newTestIdentity(store)
	ctx := context.Background()

	admin := seedAdmin(t, ident, users, "admin@tucarrito.com")
	u, err := ident.Register(ctx, RegisterInput{Email: "malo@test.com", Password: "Pass123!"})
	require.NoError(t, err)

	rejected, err := ident.RejectUser(ctx, u.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ValidationRejected, rejected.ValidationStatus)
	assert.False(t, rejected.IsApproved)

	_, err = ident.Login(ctx, "malo@test.com", "Pass123!")
	assert.ErrorIs(t, err, ErrAccountRejected)
}

func TestLogoutClearsCurrentUser(t *testing.T) {
	store := newTestStore()
	ident, users := newTestIdentity(store)
	ctx := context.Background()

	seedAdmin(t, ident, users, "admin@tucarrito.com")
	_, err := ident.Login(ctx, "admin@tucarrito.com", "Admin123!")
	require.NoError(t, err)

	require.NoError(t, ident.Logout(ctx))
	require.NoError(t, ident.Logout(ctx)) // idempotent

	_, err = ident.CurrentUser(ctx)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPendingUsersExcludesAdminsAndApproved(t *testing.T) {
	store := newTestStore()
	ident, users := newTestIdentity(store)
	ctx := context.Background()

	admin := seedAdmin(t, ident, users, "admin@tucarrito.com")
	p1, err := ident.Register(ctx, RegisterInput{Email: "p1@test.com", Password: "x"})
	require.NoError(t, err)
	p2, err := ident.Register(ctx, RegisterInput{Email: "p2@test.com", Password: "x"})
	require.NoError(t, err)
	_, err = ident.ApproveUser(ctx, p2.ID, admin.ID)
	require.NoError(t, err)

	pending, err := ident.PendingUsers(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, p1.ID, pending[0].ID)
}
