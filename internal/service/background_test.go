package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tucarrito/marketplace/internal/model"
	"github.com/tucarrito/marketplace/internal/repository"
)

func newTestChecker() (*BackgroundChecker, *repository.VehicleRepo) {
	vehicles := repository.NewVehicleRepo(newTestStore())
	return NewBackgroundChecker(vehicles, 0), vehicles
}

func TestValidatePlate(t *testing.T) {
	assert.True(t, ValidatePlate("ABC123"))
	assert.True(t, ValidatePlate("abc 12 3")) // normalized
	assert.True(t, ValidatePlate("XYZ45A"))
	assert.False(t, ValidatePlate("AB1234"))
	assert.False(t, ValidatePlate("ABCD12"))
	assert.False(t, ValidatePlate("ABC12"))
	assert.False(t, ValidatePlate(""))
}

func TestReportInvalidPlate(t *testing.T) {
	svc, _ := newTestChecker()
	_, err := svc.Report(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrInvalidPlate)
}

func TestReportRegistryMiss(t *testing.T) {
	svc, _ := newTestChecker()
	report, err := svc.Report(context.Background(), "ZZZ999")
	assert.ErrorIs(t, err, ErrPlateNotFound)
	assert.False(t, report.Found)
}

func TestReportOnRecordZZZPlate(t *testing.T) {
	svc, vehicles := newTestChecker()
	ctx := context.Background()

	// a ZZZ plate only misses the registry when no vehicle carries it
	require.NoError(t, vehicles.Create(ctx, model.Vehicle{
		ID: "v1", UserName: "Carlos Vendedor",
		Brand: "Renault", Model: "Duster", Year: 2019, LicensePlate: "ZZZ123",
	}))

	report, err := svc.Report(ctx, "ZZZ123")
	require.NoError(t, err)
	assert.True(t, report.Found)
	require.NotNil(t, report.VehicleInfo)
	assert.Equal(t, "Renault", report.VehicleInfo.Brand)
}

func TestReportHydratesFromStoredVehicle(t *testing.T) {
	svc, vehicles := newTestChecker()
	ctx := context.Background()

	require.NoError(t, vehicles.Create(ctx, model.Vehicle{
		ID: "v1", UserName: "Ana Compradora",
		Brand: "Mazda", Model: "CX-30", Year: 2022, LicensePlate: "JKL456",
	}))

	report, err := svc.Report(ctx, "jkl 456")
	require.NoError(t, err)
	assert.True(t, report.Found)
	require.NotNil(t, report.VehicleInfo)
	assert.Equal(t, "Mazda", report.VehicleInfo.Brand)
	assert.Equal(t, "CX-30", report.VehicleInfo.Model)
	assert.Equal(t, 2022, report.VehicleInfo.Year)
	require.NotNil(t, report.Ownership)
	assert.Equal(t, "Ana Compradora", report.Ownership.CurrentOwner)
}

func TestReportFlagsAreDeterministic(t *testing.T) {
	svc, _ := newTestChecker()
	ctx := context.Background()

	// X prefix -> theft on record, every single time
	for i := 0; i < 5; i++ {
		report, err := svc.Report(ctx, "XAB123")
		require.NoError(t, err)
		require.NotNil(t, report.TheftReports)
		assert.True(t, report.TheftReports.HasReports)
	}

	// trailing 0 -> accidents
	report, err := svc.Report(ctx, "ABC120")
	require.NoError(t, err)
	require.NotNil(t, report.Accidents)
	assert.True(t, report.Accidents.HasAccidents)
	assert.NotEmpty(t, report.Accidents.Details)

	// last two digits over 80 -> fines
	report, err = svc.Report(ctx, "ABC999")
	require.NoError(t, err)
	require.NotNil(t, report.Fines)
	assert.True(t, report.Fines.HasFines)
	assert.Positive(t, report.Fines.TotalAmount)

	// clean plate: no Z, no X prefix, no trailing 0, low digits
	report, err = svc.Report(ctx, "ABC123")
	require.NoError(t, err)
	assert.True(t, report.Found)
	assert.False(t, report.Accidents.HasAccidents)
	assert.False(t, report.TheftReports.HasReports)
	assert.False(t, report.Fines.HasFines)
	require.NotNil(t, report.VehicleInfo)
	require.NotNil(t, report.Ownership)
	require.NotNil(t, report.TechnicalReview)
}

func TestReportVehicleIdentityIsStable(t *testing.T) {
	svc, _ := newTestChecker()
	ctx := context.Background()

	first, err := svc.Report(ctx, "DEF456")
	require.NoError(t, err)
	second, err := svc.Report(ctx, "DEF456")
	require.NoError(t, err)

	assert.Equal(t, first.VehicleInfo.Brand, second.VehicleInfo.Brand)
	assert.Equal(t, first.VehicleInfo.Model, second.VehicleInfo.Model)
	assert.Equal(t, first.VehicleInfo.Year, second.VehicleInfo.Year)
}

func TestReportByVehicle(t *testing.T) {
	svc, vehicles := newTestChecker()
	ctx := context.Background()

	require.NoError(t, vehicles.Create(ctx, model.Vehicle{ID: "v1", LicensePlate: "GHI789"}))
	require.NoError(t, vehicles.Create(ctx, model.Vehicle{ID: "v2"}))

	report, err := svc.ReportByVehicle(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "GHI789", report.LicensePlate)

	_, err = svc.ReportByVehicle(ctx, "v2")
	assert.ErrorIs(t, err, ErrNoPlate)

	_, err = svc.ReportByVehicle(ctx, "missing")
	assert.ErrorIs(t, err, ErrVehicleNotFound)
}
