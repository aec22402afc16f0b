package repository

import (
	"context"
	"strings"

	"github.com/tucarrito/marketplace/internal/model"
)

// VehicleRepo provides per-record access to the vehicles collection.
type VehicleRepo struct{ store *Store }

// NewVehicleRepo returns a VehicleRepo over the given store.
func NewVehicleRepo(store *Store) *VehicleRepo { return &VehicleRepo{store: store} }

// Create appends a new vehicle record.
func (r *VehicleRepo) Create(ctx context.Context, v model.Vehicle) error {
	return r.store.MutateVehicles(ctx, func(vehicles []model.Vehicle) ([]model.Vehicle, error) {
		return append(vehicles, v), nil
	})
}

// GetByID fetches a vehicle by id, ErrNotFound when absent.
func (r *VehicleRepo) GetByID(ctx context.Context, id string) (model.Vehicle, error) {
	vehicles, err := r.store.Vehicles(ctx)
	if err != nil {
		return model.Vehicle{}, err
	}
	for _, v := range vehicles {
		if v.ID == id {
			return v, nil
		}
	}
	return model.Vehicle{}, ErrNotFound
}

// GetByPlate fetches a vehicle by license plate, ErrNotFound when no
// record carries it.
func (r *VehicleRepo) GetByPlate(ctx context.Context, plate string) (model.Vehicle, error) {
	vehicles, err := r.store.Vehicles(ctx)
	if err != nil {
		return model.Vehicle{}, err
	}
	for _, v := range vehicles {
		if v.LicensePlate != "" && strings.EqualFold(v.LicensePlate, plate) {
			return v, nil
		}
	}
	return model.Vehicle{}, ErrNotFound
}

// Update applies fn to the vehicle with the given id under the
// collection lock and returns the updated record. fn may return an
// error to abort the mutation without writing.
func (r *VehicleRepo) Update(ctx context.Context, id string, fn func(*model.Vehicle) error) (model.Vehicle, error) {
	var updated model.Vehicle
	err := r.store.MutateVehicles(ctx, func(vehicles []model.Vehicle) ([]model.Vehicle, error) {
		for i := range vehicles {
			if vehicles[i].ID == id {
				if err := fn(&vehicles[i]); err != nil {
					return nil, err
				}
				updated = vehicles[i]
				return vehicles, nil
			}
		}
		return nil, ErrNotFound
	})
	return updated, err
}

// Delete removes the vehicle permanently, ErrNotFound when absent.
// guard is consulted before removal and may veto it.
func (r *VehicleRepo) Delete(ctx context.Context, id string, guard func(model.Vehicle) error) error {
	return r.store.MutateVehicles(ctx, func(vehicles []model.Vehicle) ([]model.Vehicle, error) {
		for i := range vehicles {
			if vehicles[i].ID == id {
				if guard != nil {
					if err := guard(vehicles[i]); err != nil {
						return nil, err
					}
				}
				return append(vehicles[:i], vehicles[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
}

// ListByUser returns all vehicles owned by the user.
func (r *VehicleRepo) ListByUser(ctx context.Context, userID string) ([]model.Vehicle, error) {
	return r.filter(ctx, func(v model.Vehicle) bool { return v.UserID == userID })
}

// ListForSale returns the public catalog: active and approved for
// sale.
func (r *VehicleRepo) ListForSale(ctx context.Context) ([]model.Vehicle, error) {
	return r.filter(ctx, model.Vehicle.PubliclyVisible)
}

// ListPendingValidation returns vehicles awaiting review.
func (r *VehicleRepo) ListPendingValidation(ctx context.Context) ([]model.Vehicle, error) {
	return r.filter(ctx, func(v model.Vehicle) bool { return v.SaleStatus == model.SalePendingValidation })
}

func (r *VehicleRepo) filter(ctx context.Context, keep func(model.Vehicle) bool) ([]model.Vehicle, error) {
	vehicles, err := r.store.Vehicles(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Vehicle, 0)
	for _, v := range vehicles {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out, nil
}
