package model

import "time"

// VehicleBackground is the mocked background-check report derived
// deterministically from a license plate. The presence flags
// (accidents, theft, fines) are a pure function of the plate; the
// synthesized detail content (dates, amounts, counts) may vary per
// call.
type VehicleBackground struct {
	LicensePlate    string            `json:"licensePlate"`
	Found           bool              `json:"found"`
	VehicleInfo     *BackgroundCar    `json:"vehicleInfo,omitempty"`
	Ownership       *Ownership        `json:"ownership,omitempty"`
	Accidents       *AccidentReport   `json:"accidents,omitempty"`
	TechnicalReview *TechnicalReview  `json:"technicalReview,omitempty"`
	TheftReports    *TheftReport      `json:"theftReports,omitempty"`
	Fines           *FineReport       `json:"fines,omitempty"`
	LastUpdated     time.Time         `json:"lastUpdated"`
}

// BackgroundCar identifies the vehicle on record for the plate.
type BackgroundCar struct {
	Brand string `json:"brand"`
	Model string `json:"model"`
	Year  int    `json:"year"`
	VIN   string `json:"vin"`
}

// Ownership summarizes the registered ownership history.
type Ownership struct {
	CurrentOwner   string    `json:"currentOwner"`
	OwnershipDate  time.Time `json:"ownershipDate"`
	PreviousOwners int       `json:"previousOwners"`
}

// AccidentReport lists recorded accidents for the plate.
type AccidentReport struct {
	HasAccidents   bool             `json:"hasAccidents"`
	TotalAccidents int              `json:"totalAccidents"`
	Details        []AccidentDetail `json:"details"`
}

// AccidentDetail is a single recorded accident.
type AccidentDetail struct {
	Date        time.Time `json:"date"`
	Severity    string    `json:"severity"` // minor | moderate | severe
	Description string    `json:"description"`
}

// TechnicalReview is the roadworthiness inspection record.
type TechnicalReview struct {
	Status         string    `json:"status"` // approved | pending | rejected
	LastReviewDate time.Time `json:"lastReviewDate"`
	NextReviewDate time.Time `json:"nextReviewDate"`
	Observations   string    `json:"observations"`
}

// TheftReport lists theft reports filed against the plate.
type TheftReport struct {
	HasReports   bool          `json:"hasReports"`
	TotalReports int           `json:"totalReports"`
	Details      []TheftDetail `json:"details"`
}

// TheftDetail is a single theft report.
type TheftDetail struct {
	ReportDate  time.Time `json:"reportDate"`
	Status      string    `json:"status"` // active | recovered | closed
	Description string    `json:"description"`
}

// FineReport aggregates outstanding traffic fines.
type FineReport struct {
	HasFines    bool    `json:"hasFines"`
	TotalFines  int     `json:"totalFines"`
	TotalAmount float64 `json:"totalAmount"`
}
