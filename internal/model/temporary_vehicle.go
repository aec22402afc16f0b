package model

import "time"

// Temporary vehicle statuses.
const (
	TempStatusTemporary = "temporary"
	TempStatusConverted = "converted"
	TempStatusExpired   = "expired"
)

// TemporaryVehicle is a listing created without an account, bound to
// an anonymous browser/device session. It mirrors Vehicle's
// descriptive attributes but carries free-form contact data instead
// of an owning user. Once the creator registers, the record is
// converted into a permanent Vehicle and marked converted (the
// temporary row itself is kept).
//
// Fields:
//  ID           - unique identifier (temp_ prefixed).
//  SessionID    - anonymous session the record belongs to.
//  ContactName / ContactEmail / ContactPhone - seller contact.
//  Brand..Images - descriptive attributes, as in Vehicle.
//  Status       - temporary, converted or expired.
//  CreatedAt / UpdatedAt - timestamps.
type TemporaryVehicle struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"sessionId"`
	ContactName  string    `json:"contactName"`
	ContactEmail string    `json:"contactEmail"`
	ContactPhone string    `json:"contactPhone"`
	Brand        string    `json:"brand"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Price        float64   `json:"price"`
	Description  string    `json:"description"`
	Mileage      int       `json:"mileage"`
	Transmission string    `json:"transmission"`
	FuelType     string    `json:"fuelType"`
	Images       []string  `json:"images"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
