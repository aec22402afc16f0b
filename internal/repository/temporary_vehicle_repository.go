package repository

import (
	"context"
	"time"

	"github.com/tucarrito/marketplace/internal/model"
)

// TemporaryVehicleRepo provides per-record access to the temporary
// vehicles collection (session-scoped, pre-account listings).
type TemporaryVehicleRepo struct{ store *Store }

// NewTemporaryVehicleRepo returns a repo over the given store.
func NewTemporaryVehicleRepo(store *Store) *TemporaryVehicleRepo {
	return &TemporaryVehicleRepo{store: store}
}

// Create appends a new temporary vehicle record.
func (r *TemporaryVehicleRepo) Create(ctx context.Context, v model.TemporaryVehicle) error {
	return r.store.MutateTemporaryVehicles(ctx, func(vs []model.TemporaryVehicle) ([]model.TemporaryVehicle, error) {
		return append(vs, v), nil
	})
}

// GetByID fetches a temporary vehicle by id, ErrNotFound when absent.
func (r *TemporaryVehicleRepo) GetByID(ctx context.Context, id string) (model.TemporaryVehicle, error) {
	vs, err := r.store.TemporaryVehicles(ctx)
	if err != nil {
		return model.TemporaryVehicle{}, err
	}
	for _, v := range vs {
		if v.ID == id {
			return v, nil
		}
	}
	return model.TemporaryVehicle{}, ErrNotFound
}

// Update applies fn to the record with the given id under the
// collection lock and returns the updated record.
func (r *TemporaryVehicleRepo) Update(ctx context.Context, id string, fn func(*model.TemporaryVehicle)) (model.TemporaryVehicle, error) {
	var updated model.TemporaryVehicle
	err := r.store.MutateTemporaryVehicles(ctx, func(vs []model.TemporaryVehicle) ([]model.TemporaryVehicle, error) {
		for i := range vs {
			if vs[i].ID == id {
				fn(&vs[i])
				vs[i].UpdatedAt = time.Now().UTC()
				updated = vs[i]
				return vs, nil
			}
		}
		return nil, ErrNotFound
	})
	return updated, err
}

// Delete removes the record permanently, ErrNotFound when absent.
func (r *TemporaryVehicleRepo) Delete(ctx context.Context, id string) error {
	return r.store.MutateTemporaryVehicles(ctx, func(vs []model.TemporaryVehicle) ([]model.TemporaryVehicle, error) {
		for i := range vs {
			if vs[i].ID == id {
				return append(vs[:i], vs[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
}

// ListBySession returns the still-temporary records of one anonymous
// session.
func (r *TemporaryVehicleRepo) ListBySession(ctx context.Context, sessionID string) ([]model.TemporaryVehicle, error) {
	vs, err := r.store.TemporaryVehicles(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.TemporaryVehicle, 0)
	for _, v := range vs {
		if v.SessionID == sessionID && v.Status == model.TempStatusTemporary {
			out = append(out, v)
		}
	}
	return out, nil
}

// PurgeOlderThan removes temporary records created before the cutoff
// and returns how many were removed. Converted records are purged
// too; they are soft leftovers of completed conversions.
func (r *TemporaryVehicleRepo) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	removed := 0
	err := r.store.MutateTemporaryVehicles(ctx, func(vs []model.TemporaryVehicle) ([]model.TemporaryVehicle, error) {
		kept := make([]model.TemporaryVehicle, 0, len(vs))
		for _, v := range vs {
			if v.CreatedAt.After(cutoff) {
				kept = append(kept, v)
			} else {
				removed++
			}
		}
		return kept, nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
