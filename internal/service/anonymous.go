package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tucarrito/marketplace/internal/model"
	"github.com/tucarrito/marketplace/internal/repository"
)

// Anonymous manages listings created before registration. Records
// are bound to a device-scoped session id and live in the temporary
// vehicles collection until the creator signs up and converts them.
type Anonymous struct {
	temps    *repository.TemporaryVehicleRepo
	vehicles *repository.VehicleRepo
	store    *repository.Store
}

// NewAnonymous returns an Anonymous listings manager.
func NewAnonymous(temps *repository.TemporaryVehicleRepo, vehicles *repository.VehicleRepo, store *repository.Store) *Anonymous {
	return &Anonymous{temps: temps, vehicles: vehicles, store: store}
}

// SessionID returns the anonymous session id, creating and persisting
// one on first use.
func (s *Anonymous) SessionID(ctx context.Context) (string, error) {
	id, err := s.store.SessionID(ctx)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}
	id = newSessionID()
	if err := s.store.SetSessionID(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}

func newSessionID() string {
	rand := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("session_%d_%s", time.Now().Unix(), rand)
}

// TemporaryVehicleInput carries the anonymous listing form.
type TemporaryVehicleInput struct {
	ContactName  string
	ContactEmail string
	ContactPhone string
	Brand        string
	Model        string
	Year         int
	Price        float64
	Description  string
	Mileage      int
	Transmission string
	FuelType     string
	Images       []string
}

// CreateTemporary stores a new session-bound listing. The same image
// and price rules as permanent listings apply.
func (s *Anonymous) CreateTemporary(ctx context.Context, sessionID string, in TemporaryVehicleInput) (model.TemporaryVehicle, error) {
	if len(in.Images) == 0 {
		return model.TemporaryVehicle{}, ErrNoImages
	}
	if len(in.Images) > 10 {
		return model.TemporaryVehicle{}, ErrTooManyImages
	}
	for _, img := range in.Images {
		if err := ValidateImageBlob(img); err != nil {
			return model.TemporaryVehicle{}, err
		}
	}
	if in.Price <= 0 {
		return model.TemporaryVehicle{}, ErrInvalidPrice
	}
	now := time.Now().UTC()
	v := model.TemporaryVehicle{
		ID:           fmt.Sprintf("temp_%d", now.UnixMilli()),
		SessionID:    sessionID,
		ContactName:  strings.TrimSpace(in.ContactName),
		ContactEmail: strings.ToLower(strings.TrimSpace(in.ContactEmail)),
		ContactPhone: strings.TrimSpace(in.ContactPhone),
		Brand:        in.Brand,
		Model:        in.Model,
		Year:         in.Year,
		Price:        in.Price,
		Description:  in.Description,
		Mileage:      in.Mileage,
		Transmission: in.Transmission,
		FuelType:     in.FuelType,
		Images:       in.Images,
		Status:       model.TempStatusTemporary,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.temps.Create(ctx, v); err != nil {
		return model.TemporaryVehicle{}, err
	}
	return v, nil
}

// UpdateTemporary merges edits into a session listing. Records of
// other sessions read as absent rather than editable.
func (s *Anonymous) UpdateTemporary(ctx context.Context, id, sessionID string, in TemporaryVehicleInput) (model.TemporaryVehicle, error) {
	if len(in.Images) > 10 {
		return model.TemporaryVehicle{}, ErrTooManyImages
	}
	for _, img := range in.Images {
		if err := ValidateImageBlob(img); err != nil {
			return model.TemporaryVehicle{}, err
		}
	}
	if err := s.ownedBySession(ctx, id, sessionID); err != nil {
		return model.TemporaryVehicle{}, err
	}
	v, err := s.temps.Update(ctx, id, func(v *model.TemporaryVehicle) {
		if in.ContactName != "" {
			v.ContactName = strings.TrimSpace(in.ContactName)
		}
		if in.ContactEmail != "" {
			v.ContactEmail = strings.ToLower(strings.TrimSpace(in.ContactEmail))
		}
		if in.ContactPhone != "" {
			v.ContactPhone = strings.TrimSpace(in.ContactPhone)
		}
		if in.Brand != "" {
			v.Brand = in.Brand
		}
		if in.Model != "" {
			v.Model = in.Model
		}
		if in.Year != 0 {
			v.Year = in.Year
		}
		if in.Price > 0 {
			v.Price = in.Price
		}
		if in.Description != "" {
			v.Description = in.Description
		}
		if in.Mileage != 0 {
			v.Mileage = in.Mileage
		}
		if in.Transmission != "" {
			v.Transmission = in.Transmission
		}
		if in.FuelType != "" {
			v.FuelType = in.FuelType
		}
		if len(in.Images) > 0 {
			v.Images = in.Images
		}
	})
	if errors.Is(err, repository.ErrNotFound) {
		return model.TemporaryVehicle{}, ErrTempVehicleNotFound
	}
	return v, err
}

// DeleteTemporary removes a session listing permanently. Records of
// other sessions read as absent.
func (s *Anonymous) DeleteTemporary(ctx context.Context, id, sessionID string) error {
	if err := s.ownedBySession(ctx, id, sessionID); err != nil {
		return err
	}
	err := s.temps.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTempVehicleNotFound
	}
	return err
}

// ownedBySession resolves the record and checks it belongs to the
// session.
func (s *Anonymous) ownedBySession(ctx context.Context, id, sessionID string) error {
	v, err := s.temps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTempVehicleNotFound
		}
		return err
	}
	if v.SessionID != sessionID {
		return ErrTempVehicleNotFound
	}
	return nil
}

// SessionVehicles returns the still-temporary listings of a session.
func (s *Anonymous) SessionVehicles(ctx context.Context, sessionID string) ([]model.TemporaryVehicle, error) {
	return s.temps.ListBySession(ctx, sessionID)
}

// ConvertToPermanent turns a temporary listing into a permanent draft
// owned by the newly registered user. The new listing gets a
// placeholder plate until the owner supplies the real one; the
// temporary record is kept, marked converted. The original creation
// time is carried over.
func (s *Anonymous) ConvertToPermanent(ctx context.Context, tempID string, owner model.User) (model.Vehicle, error) {
	t, err := s.temps.GetByID(ctx, tempID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Vehicle{}, ErrTempVehicleNotFound
		}
		return model.Vehicle{}, err
	}
	now := time.Now().UTC()
	ms := fmt.Sprintf("%d", now.UnixMilli())
	v := model.Vehicle{
		ID:           uuid.NewString(),
		UserID:       owner.ID,
		UserEmail:    owner.Email,
		UserName:     owner.FullName,
		UserPhone:    owner.Phone,
		Brand:        t.Brand,
		Model:        t.Model,
		Year:         t.Year,
		Price:        t.Price,
		Description:  t.Description,
		Mileage:      t.Mileage,
		Transmission: t.Transmission,
		FuelType:     t.FuelType,
		Images:       t.Images,
		LicensePlate: "TEMP-" + ms[len(ms)-6:],
		Status:       model.StatusActive,
		SaleStatus:   model.SaleDraft,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    now,
	}
	if err := s.vehicles.Create(ctx, v); err != nil {
		return model.Vehicle{}, err
	}
	if _, err := s.temps.Update(ctx, tempID, func(t *model.TemporaryVehicle) {
		t.Status = model.TempStatusConverted
	}); err != nil {
		return model.Vehicle{}, err
	}
	return v, nil
}

// CleanExpired purges temporary records older than the given number
// of days and reports how many were removed.
func (s *Anonymous) CleanExpired(ctx context.Context, daysOld int) (int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -daysOld)
	return s.temps.PurgeOlderThan(ctx, cutoff)
}
