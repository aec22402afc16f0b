package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tucarrito/marketplace/internal/model"
	"github.com/tucarrito/marketplace/internal/repository"
)

// plateRe matches Colombian-style plates: three letters, two digits,
// one digit or letter.
var plateRe = regexp.MustCompile(`^[A-Z]{3}[0-9]{2}[0-9A-Z]$`)

// BackgroundChecker simulates an external vehicle history registry.
// Whether a plate has accidents, theft reports or fines is a pure
// function of the plate itself, so repeated lookups agree; the
// synthesized detail rows vary per call like a live registry would.
// Plates on record report the stored vehicle's identity and owner.
type BackgroundChecker struct {
	vehicles *repository.VehicleRepo
	delay    time.Duration
}

// NewBackgroundChecker returns a checker. delay simulates registry
// latency; pass zero in tests.
func NewBackgroundChecker(vehicles *repository.VehicleRepo, delay time.Duration) *BackgroundChecker {
	return &BackgroundChecker{vehicles: vehicles, delay: delay}
}

// NormalizePlate uppercases a plate and strips all whitespace.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.Join(strings.Fields(plate), ""))
}

// ValidatePlate reports whether the normalized plate has a valid
// format.
func ValidatePlate(plate string) bool {
	return plateRe.MatchString(NormalizePlate(plate))
}

// Report looks up the background report for a plate. An invalid
// format yields ErrInvalidPlate. Plates on record hydrate the report
// from the stored vehicle; unknown plates starting with ZZZ simulate
// a registry miss and yield ErrPlateNotFound.
func (s *BackgroundChecker) Report(ctx context.Context, plate string) (model.VehicleBackground, error) {
	p := NormalizePlate(plate)
	if !plateRe.MatchString(p) {
		return model.VehicleBackground{}, ErrInvalidPlate
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return model.VehicleBackground{}, ctx.Err()
		}
	}

	var onRecord *model.Vehicle
	switch v, err := s.vehicles.GetByPlate(ctx, p); {
	case err == nil:
		onRecord = &v
	case !errors.Is(err, repository.ErrNotFound):
		return model.VehicleBackground{}, err
	}
	if onRecord == nil && strings.HasPrefix(p, "ZZZ") {
		return model.VehicleBackground{LicensePlate: p, Found: false, LastUpdated: time.Now().UTC()}, ErrPlateNotFound
	}

	hasAccidents := strings.Contains(p, "Z") || strings.HasSuffix(p, "0")
	hasTheft := strings.HasPrefix(p, "X")
	lastTwo, _ := strconv.Atoi(p[len(p)-2:])
	hasFines := lastTwo > 80

	// identity comes from the stored vehicle when the plate is on
	// record, synthesized otherwise
	info := &model.BackgroundCar{
		Brand: pick(p, brands),
		Model: pick(p+"m", models),
		Year:  2010 + int(p[0]-'A')%15,
		VIN:   fmt.Sprintf("VIN%s%010d", p, rand.Int63n(1e10)),
	}
	owner := "Propietario Registrado"
	if onRecord != nil {
		info.Brand = onRecord.Brand
		info.Model = onRecord.Model
		info.Year = onRecord.Year
		if onRecord.UserName != "" {
			owner = onRecord.UserName
		}
	}

	now := time.Now().UTC()
	report := model.VehicleBackground{
		LicensePlate: p,
		Found:        true,
		VehicleInfo:  info,
		Ownership: &model.Ownership{
			CurrentOwner:   owner,
			OwnershipDate:  now.AddDate(-1-rand.Intn(5), 0, 0),
			PreviousOwners: rand.Intn(4),
		},
		TechnicalReview: &model.TechnicalReview{
			Status:         "approved",
			LastReviewDate: now.AddDate(0, -rand.Intn(11)-1, 0),
			NextReviewDate: now.AddDate(1, 0, 0),
			Observations:   "Sin observaciones",
		},
		LastUpdated: now,
	}

	accidents := &model.AccidentReport{HasAccidents: hasAccidents}
	if hasAccidents {
		accidents.TotalAccidents = 1 + rand.Intn(3)
		severities := []string{"minor", "moderate", "severe"}
		for i := 0; i < accidents.TotalAccidents; i++ {
			accidents.Details = append(accidents.Details, model.AccidentDetail{
				Date:        now.AddDate(-rand.Intn(5)-1, -rand.Intn(12), 0),
				Severity:    severities[rand.Intn(len(severities))],
				Description: "Colisión reportada ante autoridad de tránsito",
			})
		}
	}
	report.Accidents = accidents

	theft := &model.TheftReport{HasReports: hasTheft}
	if hasTheft {
		theft.TotalReports = 1
		theft.Details = []model.TheftDetail{{
			ReportDate:  now.AddDate(-rand.Intn(3)-1, 0, 0),
			Status:      "recovered",
			Description: "Denuncia de hurto registrada y vehículo recuperado",
		}}
	}
	report.TheftReports = theft

	fines := &model.FineReport{HasFines: hasFines}
	if hasFines {
		fines.TotalFines = 1 + rand.Intn(4)
		fines.TotalAmount = float64(fines.TotalFines) * float64(200000+rand.Intn(400000))
	}
	report.Fines = fines

	return report, nil
}

// ReportByVehicle resolves a stored vehicle's plate and looks it up.
// Vehicles without a plate yield ErrNoPlate.
func (s *BackgroundChecker) ReportByVehicle(ctx context.Context, vehicleID string) (model.VehicleBackground, error) {
	v, err := s.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.VehicleBackground{}, ErrVehicleNotFound
		}
		return model.VehicleBackground{}, err
	}
	if v.LicensePlate == "" {
		return model.VehicleBackground{}, ErrNoPlate
	}
	return s.Report(ctx, v.LicensePlate)
}

var brands = []string{"Chevrolet", "Renault", "Mazda", "Toyota", "Kia", "Nissan"}
var models = []string{"Sedán", "Hatchback", "SUV", "Pickup", "Coupé"}

// pick chooses deterministically from options based on the seed text,
// so the vehicle on record for a plate does not change between calls.
func pick(seed string, options []string) string {
	sum := 0
	for _, r := range seed {
		sum += int(r)
	}
	return options[sum%len(options)]
}
