package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/tucarrito/marketplace/internal/model"
	"github.com/tucarrito/marketplace/internal/repository"
)

// placeholder 1x1 PNG used for demo listings
const demoImage = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

// SeedDemo loads the demo dataset: two admin accounts, a pair of
// approved regular users and a few published listings. Existing
// emails are skipped, so running it on every boot is safe.
func SeedDemo(ctx context.Context, users *repository.UserRepo, vehicles *repository.VehicleRepo, ident *Identity) error {
	now := time.Now().UTC()

	admins := []RegisterInput{
		{Email: "admin1@tucarrito.com", Password: "Admin123!", FullName: "Administrador Uno", Phone: "3000000001", IDNumber: "900000001"},
		{Email: "admin2@tucarrito.com", Password: "Admin123!", FullName: "Administrador Dos", Phone: "3000000002", IDNumber: "900000002"},
	}
	for _, in := range admins {
		u, err := ident.Register(ctx, in)
		if errors.Is(err, ErrEmailExists) {
			continue
		}
		if err != nil {
			return err
		}
		if _, err := users.Update(ctx, u.ID, func(u *model.User) {
			u.Role = model.RoleAdmin
			u.IsApproved = true
			u.ValidationStatus = model.ValidationApproved
		}); err != nil {
			return err
		}
		log.Printf("seed: created admin %s", in.Email)
	}

	demo := []RegisterInput{
		{Email: "vendedor@test.com", Password: "Test123!", FullName: "Carlos Vendedor", Phone: "3001234567", IDNumber: "100000001", UserType: model.UserTypeSeller},
		{Email: "comprador@test.com", Password: "Test123!", FullName: "Ana Compradora", Phone: "3007654321", IDNumber: "100000002", UserType: model.UserTypeBuyer},
	}
	seller := model.User{}
	for _, in := range demo {
		u, err := ident.Register(ctx, in)
		if errors.Is(err, ErrEmailExists) {
			existing, err := users.GetByEmail(ctx, in.Email)
			if err != nil {
				return err
			}
			if existing.UserType == model.UserTypeSeller {
				seller = existing
			}
			continue
		}
		if err != nil {
			return err
		}
		u, err = users.Update(ctx, u.ID, func(u *model.User) {
			u.IsApproved = true
			u.ValidationStatus = model.ValidationApproved
		})
		if err != nil {
			return err
		}
		if u.UserType == model.UserTypeSeller {
			seller = u
		}
		log.Printf("seed: created user %s", in.Email)
	}
	if seller.ID == "" {
		return nil
	}

	existing, err := vehicles.ListByUser(ctx, seller.ID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	listings := []model.Vehicle{
		{Brand: "Chevrolet", Model: "Onix", Year: 2021, Price: 58000000, Mileage: 32000, Transmission: model.TransmissionManual, FuelType: model.FuelGasoline, LicensePlate: "ABC123", Description: "Único dueño, mantenimientos al día."},
		{Brand: "Mazda", Model: "CX-30", Year: 2022, Price: 112000000, Mileage: 18000, Transmission: model.TransmissionAutomatic, FuelType: model.FuelGasoline, LicensePlate: "DEF456", Description: "Versión Grand Touring, como nueva."},
		{Brand: "Renault", Model: "Duster", Year: 2019, Price: 62000000, Mileage: 61000, Transmission: model.TransmissionManual, FuelType: model.FuelGasoline, LicensePlate: "GHI789", Description: "Ideal para carretera."},
	}
	for _, v := range listings {
		v.ID = uuid.NewString()
		v.UserID = seller.ID
		v.UserEmail = seller.Email
		v.UserName = seller.FullName
		v.UserPhone = seller.Phone
		v.Images = []string{demoImage}
		v.Status = model.StatusActive
		v.SaleStatus = model.SaleForSale
		v.ValidationMessage = "Aprobado por administrador"
		v.ValidationDate = &now
		v.CreatedAt = now
		v.UpdatedAt = now
		if err := vehicles.Create(ctx, v); err != nil {
			return err
		}
		log.Printf("seed: created listing %s %s", v.Brand, v.Model)
	}
	return nil
}
