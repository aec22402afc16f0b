// Package service implements the marketplace managers: identity and
// approval, listing lifecycle, anonymous listings, payment
// simulation, background checks and messaging. Managers return
// sentinel errors for expected domain failures; only serialization
// or connectivity faults propagate as plain errors. The HTTP layer
// translates sentinels into the user-facing reason strings.
package service

import (
	"errors"
	"fmt"

	"github.com/tucarrito/marketplace/internal/model"
)

// Identity failures.
var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPendingApproval    = errors.New("account pending approval")
	ErrAccountRejected    = errors.New("account rejected")
	ErrUserNotFound       = errors.New("user not found")
)

// Listing failures.
var (
	ErrVehicleNotFound     = errors.New("vehicle not found")
	ErrTempVehicleNotFound = errors.New("temporary vehicle not found")
	ErrVehicleSold         = errors.New("vehicle already sold")
	ErrNoImages            = errors.New("at least one image required")
	ErrTooManyImages       = errors.New("too many images")
	ErrBadImage            = errors.New("unsupported or oversized image")
	ErrInvalidPrice        = errors.New("price must be positive")
)

// Payment failures.
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrVehicleNotForSale   = errors.New("vehicle not for sale")
	ErrSelfPurchase        = errors.New("cannot buy own vehicle")
	ErrAlreadyProcessed    = errors.New("transaction already processed")
	ErrNotCancellable      = errors.New("transaction not cancellable")
	ErrCardDeclined        = errors.New("card declined")
)

// Background check failures.
var (
	ErrInvalidPlate  = errors.New("invalid license plate format")
	ErrPlateNotFound = errors.New("no record for license plate")
	ErrNoPlate       = errors.New("vehicle has no license plate")
)

// Messaging failures.
var (
	ErrEmptyMessage         = errors.New("message content empty")
	ErrConversationNotFound = errors.New("conversation not found")
)

// StateTransitionError reports an operation attempted from a sale
// status that does not permit it. The current state travels with the
// error so the user-facing message can name it.
type StateTransitionError struct {
	Current model.SaleStatus
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from state %s", e.Current)
}
