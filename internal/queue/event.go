// Package queue defines message payloads exchanged over the message broker.
package queue

import "time"

// SaleCompletedEvent is published when a commission payment is approved
// and the vehicle is marked sold. It carries enough information for
// downstream consumers to log, notify, or trigger analytics without
// querying the primary store.
type SaleCompletedEvent struct {
	TransactionID    string    `json:"transaction_id"`
	VehicleID        string    `json:"vehicle_id"`
	BuyerID          string    `json:"buyer_id"`
	SellerID         string    `json:"seller_id"`
	CommissionAmount float64   `json:"commission_amount"`
	CompletedAt      time.Time `json:"completed_at"`
}
