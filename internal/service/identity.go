package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tucarrito/marketplace/internal/model"
	"github.com/tucarrito/marketplace/internal/repository"
	"github.com/tucarrito/marketplace/internal/utils"
)

// Identity handles registration, login and the two-stage approval
// gate. Registered accounts always start as pending `user` role;
// admin accounts are seeded, never registered, and bypass approval.
type Identity struct {
	users      *repository.UserRepo
	store      *repository.Store
	bcryptCost int
}

// NewIdentity returns an Identity manager.
func NewIdentity(users *repository.UserRepo, store *repository.Store, bcryptCost int) *Identity {
	return &Identity{users: users, store: store, bcryptCost: bcryptCost}
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Phone    string
	IDNumber string
	UserType string
}

// Register creates a pending, unapproved user. It does not log the
// user in. ErrEmailExists when the email is taken.
func (s *Identity) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return model.User{}, err
	}
	userType := in.UserType
	switch userType {
	case model.UserTypeBuyer, model.UserTypeSeller, model.UserTypeBoth:
	default:
		userType = model.UserTypeBoth
	}
	u := model.User{
		ID:               uuid.NewString(),
		Email:            email,
		PasswordHash:     hash,
		FullName:         strings.TrimSpace(in.FullName),
		Phone:            strings.TrimSpace(in.Phone),
		IDNumber:         strings.TrimSpace(in.IDNumber),
		UserType:         userType,
		Role:             model.RoleUser,
		ValidationStatus: model.ValidationPending,
		IsApproved:       false,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	return u, nil
}

// Login checks credentials and the approval gate, then records the
// session in the current-user slot. Admins log in unconditionally;
// regular users fail with ErrPendingApproval until approved and with
// ErrAccountRejected once rejected.
func (s *Identity) Login(ctx context.Context, email, password string) (model.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, ErrInvalidCredentials
	}
	if u.Role != model.RoleAdmin {
		if u.ValidationStatus == model.ValidationRejected {
			return model.User{}, ErrAccountRejected
		}
		if !u.IsApproved {
			return model.User{}, ErrPendingApproval
		}
	}
	if err := s.store.SetCurrentUserID(ctx, u.ID); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// Logout clears the current-user slot. Always succeeds; idempotent.
func (s *Identity) Logout(ctx context.Context) error {
	return s.store.ClearCurrentUser(ctx)
}

// CurrentUser resolves the current-user slot, ErrUserNotFound when
// nobody is logged in.
func (s *Identity) CurrentUser(ctx context.Context) (model.User, error) {
	id, err := s.store.CurrentUserID(ctx)
	if err != nil {
		return model.User{}, err
	}
	if id == "" {
		return model.User{}, ErrUserNotFound
	}
	return s.UserByID(ctx, id)
}

// UserByID fetches a user, ErrUserNotFound when absent.
func (s *Identity) UserByID(ctx context.Context, id string) (model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	return u, nil
}

// ApproveUser marks the account approved and records who resolved
// it. Re-approving an approved account is accepted (idempotent).
func (s *Identity) ApproveUser(ctx context.Context, userID, adminID string) (model.User, error) {
	return s.resolve(ctx, userID, adminID, true)
}

// RejectUser marks the account rejected. The user can no longer log
// in.
func (s *Identity) RejectUser(ctx context.Context, userID, adminID string) (model.User, error) {
	return s.resolve(ctx, userID, adminID, false)
}

func (s *Identity) resolve(ctx context.Context, userID, adminID string, approve bool) (model.User, error) {
	now := time.Now().UTC()
	u, err := s.users.Update(ctx, userID, func(u *model.User) {
		u.IsApproved = approve
		if approve {
			u.ValidationStatus = model.ValidationApproved
		} else {
			u.ValidationStatus = model.ValidationRejected
		}
		u.ApprovedBy = &adminID
		u.ApprovedAt = &now
	})
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// PendingUsers lists non-admin accounts awaiting approval, in
// insertion order.
func (s *Identity) PendingUsers(ctx context.Context) ([]model.User, error) {
	return s.users.ListPending(ctx)
}

// AllUsers lists every account, for the admin dashboard.
func (s *Identity) AllUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}
