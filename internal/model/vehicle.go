package model

import "time"

// Vehicle record statuses. Status tracks the record itself;
// SaleStatus tracks the approval pipeline. Both must align for a
// listing to be publicly visible.
const (
	StatusActive   = "active"
	StatusSold     = "sold"
	StatusInactive = "inactive"
)

// SaleStatus is the closed set of listing pipeline states. Illegal
// transitions are rejected by the transition table below rather than
// by scattered string checks.
type SaleStatus string

const (
	SaleDraft             SaleStatus = "draft"
	SalePendingValidation SaleStatus = "pending_validation"
	SaleValidated         SaleStatus = "validated"
	SaleForSale           SaleStatus = "for_sale"
	SaleRejected          SaleStatus = "rejected"
)

// saleTransitions maps each state to the states it may move to.
// for_sale -> validated is the purchase-completion side effect
// performed by the payment engine. pending_validation/for_sale ->
// draft is the owner-edit reset.
var saleTransitions = map[SaleStatus][]SaleStatus{
	SaleDraft:             {SalePendingValidation},
	SalePendingValidation: {SaleForSale, SaleRejected, SaleDraft},
	SaleForSale:           {SaleValidated, SaleDraft},
	SaleValidated:         {},
	SaleRejected:          {},
}

// CanTransition reports whether moving from s to next is allowed.
func (s SaleStatus) CanTransition(next SaleStatus) bool {
	for _, t := range saleTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Label returns the human-readable (Spanish) name of the state, used
// verbatim in user-facing messages.
func (s SaleStatus) Label() string {
	switch s {
	case SaleDraft:
		return "Borrador"
	case SalePendingValidation:
		return "En Validación"
	case SaleValidated:
		return "Validado"
	case SaleForSale:
		return "En Venta"
	case SaleRejected:
		return "Rechazado"
	}
	return string(s)
}

// Transmission and fuel type enumerations.
const (
	TransmissionManual    = "manual"
	TransmissionAutomatic = "automatic"

	FuelGasoline = "gasoline"
	FuelDiesel   = "diesel"
	FuelElectric = "electric"
	FuelHybrid   = "hybrid"
)

// Vehicle is a listing stored in the vehicles collection. Owner
// contact data is denormalized at creation time, not live-joined.
//
// Fields:
//  ID              - unique identifier.
//  UserID          - owning user.
//  UserEmail       - owner email snapshot.
//  UserName        - owner name snapshot.
//  UserPhone       - owner phone snapshot.
//  Brand, Model    - descriptive attributes.
//  Year            - model year.
//  Price           - asking price, positive.
//  Description     - free text.
//  Mileage         - odometer reading in km.
//  Transmission    - manual or automatic.
//  FuelType        - gasoline, diesel, electric or hybrid.
//  Images          - 1..10 encoded image blobs (data URLs).
//  LicensePlate    - optional plate.
//  OwnershipCard   - optional encoded document image.
//  SOAT            - optional encoded insurance document image.
//  TechnicalReview - optional encoded inspection certificate image.
//  Status          - active, sold or inactive.
//  SaleStatus      - pipeline state, see SaleStatus.
//  ValidationMessage / ValidationDate - reviewer outcome, if any.
//  CreatedAt / UpdatedAt - timestamps.
type Vehicle struct {
	ID                string     `json:"id"`
	UserID            string     `json:"userId"`
	UserEmail         string     `json:"userEmail"`
	UserName          string     `json:"userName"`
	UserPhone         string     `json:"userPhone"`
	Brand             string     `json:"brand"`
	Model             string     `json:"model"`
	Year              int        `json:"year"`
	Price             float64    `json:"price"`
	Description       string     `json:"description"`
	Mileage           int        `json:"mileage"`
	Transmission      string     `json:"transmission"`
	FuelType          string     `json:"fuelType"`
	Images            []string   `json:"images"`
	LicensePlate      string     `json:"licensePlate,omitempty"`
	OwnershipCard     string     `json:"ownershipCard,omitempty"`
	SOAT              string     `json:"soat,omitempty"`
	TechnicalReview   string     `json:"technicalReview,omitempty"`
	Status            string     `json:"status"`
	SaleStatus        SaleStatus `json:"saleStatus"`
	ValidationMessage string     `json:"validationMessage,omitempty"`
	ValidationDate    *time.Time `json:"validationDate,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// PubliclyVisible reports whether the vehicle appears in the public
// catalog: the record must be active and the listing approved.
func (v Vehicle) PubliclyVisible() bool {
	return v.Status == StatusActive && v.SaleStatus == SaleForSale
}
