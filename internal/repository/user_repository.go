package repository

import (
	"context"
	"strings"

	"github.com/tucarrito/marketplace/internal/model"
)

// UserRepo provides per-record access to the users collection.
type UserRepo struct{ store *Store }

// NewUserRepo returns a UserRepo over the given store.
func NewUserRepo(store *Store) *UserRepo { return &UserRepo{store: store} }

// Create appends a new user. Email uniqueness is checked inside the
// collection lock; ErrEmailExists is returned on a duplicate.
func (r *UserRepo) Create(ctx context.Context, u model.User) error {
	return r.store.MutateUsers(ctx, func(users []model.User) ([]model.User, error) {
		for _, existing := range users {
			if strings.EqualFold(existing.Email, u.Email) {
				return nil, ErrEmailExists
			}
		}
		return append(users, u), nil
	})
}

// GetByEmail fetches a user by normalized email, ErrNotFound when
// absent.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	users, err := r.store.Users(ctx)
	if err != nil {
		return model.User{}, err
	}
	for _, u := range users {
		if strings.ToLower(u.Email) == email {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

// GetByID fetches a user by id, ErrNotFound when absent.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	users, err := r.store.Users(ctx)
	if err != nil {
		return model.User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

// Update applies fn to the user with the given id under the
// collection lock and returns the updated record. ErrNotFound when
// the id does not resolve.
func (r *UserRepo) Update(ctx context.Context, id string, fn func(*model.User)) (model.User, error) {
	var updated model.User
	err := r.store.MutateUsers(ctx, func(users []model.User) ([]model.User, error) {
		for i := range users {
			if users[i].ID == id {
				fn(&users[i])
				updated = users[i]
				return users, nil
			}
		}
		return nil, ErrNotFound
	})
	return updated, err
}

// List returns all users in insertion order.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	return r.store.Users(ctx)
}

// ListPending returns non-admin users awaiting approval, in
// insertion order.
func (r *UserRepo) ListPending(ctx context.Context) ([]model.User, error) {
	users, err := r.store.Users(ctx)
	if err != nil {
		return nil, err
	}
	pending := make([]model.User, 0)
	for _, u := range users {
		if u.Role == model.RoleUser && !u.IsApproved {
			pending = append(pending, u)
		}
	}
	return pending, nil
}
