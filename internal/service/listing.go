package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tucarrito/marketplace/internal/model"
	"github.com/tucarrito/marketplace/internal/repository"
)

// Image blob constraints, enforced before anything reaches the
// store. Blobs arrive as self-contained data URLs.
const maxImageBytes = 2 * 1024 * 1024 // 2MB decoded

var allowedImagePrefixes = []string{
	"data:image/jpeg;base64,",
	"data:image/jpg;base64,",
	"data:image/png;base64,",
	"data:image/webp;base64,",
}

// ValidateImageBlob rejects a blob unless its MIME type is on the
// allow-list and its decoded size is under the cap.
func ValidateImageBlob(blob string) error {
	var payload string
	for _, p := range allowedImagePrefixes {
		if strings.HasPrefix(blob, p) {
			payload = blob[len(p):]
			break
		}
	}
	if payload == "" {
		return ErrBadImage
	}
	// base64 expands by 4/3; compare against the encoded equivalent
	if len(payload) > maxImageBytes*4/3+4 {
		return ErrBadImage
	}
	return nil
}

// Listings manages the vehicle listing lifecycle: creation in draft,
// the draft -> pending_validation -> for_sale/rejected pipeline, and
// search over the public catalog. Every pipeline mutation goes
// through the SaleStatus transition table.
type Listings struct {
	vehicles *repository.VehicleRepo
}

// NewListings returns a Listings manager.
func NewListings(vehicles *repository.VehicleRepo) *Listings {
	return &Listings{vehicles: vehicles}
}

// CreateVehicleInput carries the listing form plus the owner contact
// snapshot captured at creation time.
type CreateVehicleInput struct {
	UserID          string
	UserEmail       string
	UserName        string
	UserPhone       string
	Brand           string
	Model           string
	Year            int
	Price           float64
	Description     string
	Mileage         int
	Transmission    string
	FuelType        string
	Images          []string
	LicensePlate    string
	OwnershipCard   string
	SOAT            string
	TechnicalReview string
}

// CreateVehicle validates the input and stores a new listing in
// draft. Listings require 1..10 valid image blobs and a positive
// price.
func (s *Listings) CreateVehicle(ctx context.Context, in CreateVehicleInput) (model.Vehicle, error) {
	if len(in.Images) == 0 {
		return model.Vehicle{}, ErrNoImages
	}
	if len(in.Images) > 10 {
		return model.Vehicle{}, ErrTooManyImages
	}
	for _, img := range in.Images {
		if err := ValidateImageBlob(img); err != nil {
			return model.Vehicle{}, err
		}
	}
	if in.Price <= 0 {
		return model.Vehicle{}, ErrInvalidPrice
	}
	now := time.Now().UTC()
	v := model.Vehicle{
		ID:              uuid.NewString(),
		UserID:          in.UserID,
		UserEmail:       in.UserEmail,
		UserName:        in.UserName,
		UserPhone:       in.UserPhone,
		Brand:           in.Brand,
		Model:           in.Model,
		Year:            in.Year,
		Price:           in.Price,
		Description:     in.Description,
		Mileage:         in.Mileage,
		Transmission:    in.Transmission,
		FuelType:        in.FuelType,
		Images:          in.Images,
		LicensePlate:    strings.ToUpper(strings.TrimSpace(in.LicensePlate)),
		OwnershipCard:   in.OwnershipCard,
		SOAT:            in.SOAT,
		TechnicalReview: in.TechnicalReview,
		Status:          model.StatusActive,
		SaleStatus:      model.SaleDraft,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.vehicles.Create(ctx, v); err != nil {
		return model.Vehicle{}, err
	}
	return v, nil
}

// VehicleUpdate carries a partial edit; nil fields are left as-is.
type VehicleUpdate struct {
	Brand           *string
	Model           *string
	Year            *int
	Price           *float64
	Description     *string
	Mileage         *int
	Transmission    *string
	FuelType        *string
	Images          *[]string
	LicensePlate    *string
	OwnershipCard   *string
	SOAT            *string
	TechnicalReview *string
}

// UpdateVehicle merges the given fields and bumps updatedAt. Sold
// vehicles cannot be edited. Editing a listing that is mid-validation
// or already published resets it to draft, so it must pass validation
// again.
func (s *Listings) UpdateVehicle(ctx context.Context, id string, up VehicleUpdate) (model.Vehicle, error) {
	v, err := s.vehicles.Update(ctx, id, func(v *model.Vehicle) error {
		if v.Status == model.StatusSold {
			return ErrVehicleSold
		}
		if up.Images != nil {
			if len(*up.Images) == 0 {
				return ErrNoImages
			}
			if len(*up.Images) > 10 {
				return ErrTooManyImages
			}
			for _, img := range *up.Images {
				if err := ValidateImageBlob(img); err != nil {
					return err
				}
			}
			v.Images = *up.Images
		}
		if up.Price != nil {
			if *up.Price <= 0 {
				return ErrInvalidPrice
			}
			v.Price = *up.Price
		}
		if up.Brand != nil {
			v.Brand = *up.Brand
		}
		if up.Model != nil {
			v.Model = *up.Model
		}
		if up.Year != nil {
			v.Year = *up.Year
		}
		if up.Description != nil {
			v.Description = *up.Description
		}
		if up.Mileage != nil {
			v.Mileage = *up.Mileage
		}
		if up.Transmission != nil {
			v.Transmission = *up.Transmission
		}
		if up.FuelType != nil {
			v.FuelType = *up.FuelType
		}
		if up.LicensePlate != nil {
			v.LicensePlate = strings.ToUpper(strings.TrimSpace(*up.LicensePlate))
		}
		if up.OwnershipCard != nil {
			v.OwnershipCard = *up.OwnershipCard
		}
		if up.SOAT != nil {
			v.SOAT = *up.SOAT
		}
		if up.TechnicalReview != nil {
			v.TechnicalReview = *up.TechnicalReview
		}
		if v.SaleStatus == model.SalePendingValidation || v.SaleStatus == model.SaleForSale {
			v.SaleStatus = model.SaleDraft
			v.ValidationMessage = ""
			v.ValidationDate = nil
		}
		v.UpdatedAt = time.Now().UTC()
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return model.Vehicle{}, ErrVehicleNotFound
	}
	return v, err
}

// DeleteVehicle removes the listing permanently. Sold vehicles are
// kept for transaction history and cannot be deleted.
func (s *Listings) DeleteVehicle(ctx context.Context, id string) error {
	err := s.vehicles.Delete(ctx, id, func(v model.Vehicle) error {
		if v.Status == model.StatusSold {
			return ErrVehicleSold
		}
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return ErrVehicleNotFound
	}
	return err
}

// RegisterForSale moves a draft listing into pending_validation. Any
// other current state yields a StateTransitionError naming it.
func (s *Listings) RegisterForSale(ctx context.Context, id string) (model.Vehicle, error) {
	v, err := s.vehicles.Update(ctx, id, func(v *model.Vehicle) error {
		if v.SaleStatus != model.SaleDraft || !v.SaleStatus.CanTransition(model.SalePendingValidation) {
			return &StateTransitionError{Current: v.SaleStatus}
		}
		v.SaleStatus = model.SalePendingValidation
		v.ValidationMessage = "Se están validando los datos del vehículo. Este proceso puede tardar hasta 24 horas."
		v.UpdatedAt = time.Now().UTC()
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return model.Vehicle{}, ErrVehicleNotFound
	}
	return v, err
}

// AdminApprove publishes a listing under review. Only
// pending_validation listings can be approved; approving from any
// other state is rejected by the transition table.
func (s *Listings) AdminApprove(ctx context.Context, id, adminID string) (model.Vehicle, error) {
	now := time.Now().UTC()
	v, err := s.vehicles.Update(ctx, id, func(v *model.Vehicle) error {
		if v.SaleStatus != model.SalePendingValidation {
			return &StateTransitionError{Current: v.SaleStatus}
		}
		v.SaleStatus = model.SaleForSale
		v.ValidationMessage = fmt.Sprintf("Aprobado por administrador el %s", now.Format("2006-01-02"))
		v.ValidationDate = &now
		v.UpdatedAt = now
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return model.Vehicle{}, ErrVehicleNotFound
	}
	return v, err
}

// AdminReject declines a listing under review, recording the reason
// for the owner.
func (s *Listings) AdminReject(ctx context.Context, id, adminID, reason string) (model.Vehicle, error) {
	now := time.Now().UTC()
	v, err := s.vehicles.Update(ctx, id, func(v *model.Vehicle) error {
		if v.SaleStatus != model.SalePendingValidation {
			return &StateTransitionError{Current: v.SaleStatus}
		}
		v.SaleStatus = model.SaleRejected
		v.ValidationMessage = fmt.Sprintf("Rechazado: %s", reason)
		v.ValidationDate = &now
		v.UpdatedAt = now
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return model.Vehicle{}, ErrVehicleNotFound
	}
	return v, err
}

// VehicleByID fetches any vehicle, ErrVehicleNotFound when absent.
func (s *Listings) VehicleByID(ctx context.Context, id string) (model.Vehicle, error) {
	v, err := s.vehicles.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Vehicle{}, ErrVehicleNotFound
	}
	return v, err
}

// UserVehicles returns every listing of one owner, any state.
func (s *Listings) UserVehicles(ctx context.Context, userID string) ([]model.Vehicle, error) {
	return s.vehicles.ListByUser(ctx, userID)
}

// PendingVehicles returns listings awaiting review, for the admin
// dashboard.
func (s *Listings) PendingVehicles(ctx context.Context) ([]model.Vehicle, error) {
	return s.vehicles.ListPendingValidation(ctx)
}

// Catalog returns the public catalog: active listings approved for
// sale.
func (s *Listings) Catalog(ctx context.Context) ([]model.Vehicle, error) {
	return s.vehicles.ListForSale(ctx)
}

// SearchFilters narrows the public catalog. Zero values mean the
// criterion is not applied. Range sanity (min<=max, plausible years,
// non-negative prices) is the caller's responsibility.
type SearchFilters struct {
	Brand        string
	Model        string
	MinYear      int
	MaxYear      int
	MinPrice     float64
	MaxPrice     float64
	Transmission string
	FuelType     string
}

// Search filters the public catalog: case-insensitive substring
// match on brand/model, inclusive ranges on year/price, exact match
// on transmission/fuel type.
func (s *Listings) Search(ctx context.Context, f SearchFilters) ([]model.Vehicle, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Vehicle, 0, len(catalog))
	for _, v := range catalog {
		if f.Brand != "" && !strings.Contains(strings.ToLower(v.Brand), strings.ToLower(f.Brand)) {
			continue
		}
		if f.Model != "" && !strings.Contains(strings.ToLower(v.Model), strings.ToLower(f.Model)) {
			continue
		}
		if f.MinYear != 0 && v.Year < f.MinYear {
			continue
		}
		if f.MaxYear != 0 && v.Year > f.MaxYear {
			continue
		}
		if f.MinPrice != 0 && v.Price < f.MinPrice {
			continue
		}
		if f.MaxPrice != 0 && v.Price > f.MaxPrice {
			continue
		}
		if f.Transmission != "" && v.Transmission != f.Transmission {
			continue
		}
		if f.FuelType != "" && v.FuelType != f.FuelType {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// Sort keys accepted by SortVehicles. "none" returns the input
// order.
const (
	SortNone        = "none"
	SortPriceAsc    = "price_asc"
	SortPriceDesc   = "price_desc"
	SortYearAsc     = "year_asc"
	SortYearDesc    = "year_desc"
	SortMileageAsc  = "mileage_asc"
	SortMileageDesc = "mileage_desc"
)

// SortVehicles stable-sorts a listing slice by the given key. The
// input slice is not modified; an unknown key behaves like "none".
func SortVehicles(vehicles []model.Vehicle, key string) []model.Vehicle {
	out := make([]model.Vehicle, len(vehicles))
	copy(out, vehicles)
	var less func(a, b model.Vehicle) bool
	switch key {
	case SortPriceAsc:
		less = func(a, b model.Vehicle) bool { return a.Price < b.Price }
	case SortPriceDesc:
		less = func(a, b model.Vehicle) bool { return a.Price > b.Price }
	case SortYearAsc:
		less = func(a, b model.Vehicle) bool { return a.Year < b.Year }
	case SortYearDesc:
		less = func(a, b model.Vehicle) bool { return a.Year > b.Year }
	case SortMileageAsc:
		less = func(a, b model.Vehicle) bool { return a.Mileage < b.Mileage }
	case SortMileageDesc:
		less = func(a, b model.Vehicle) bool { return a.Mileage > b.Mileage }
	default:
		return out
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
