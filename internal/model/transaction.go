package model

import "time"

// TxStatus is the closed set of payment transaction states. A
// transaction leaves pending exactly once; completed, rejected and
// cancelled are terminal and immutable.
type TxStatus string

const (
	TxPending    TxStatus = "pending"
	TxProcessing TxStatus = "processing"
	TxCompleted  TxStatus = "completed"
	TxRejected   TxStatus = "rejected"
	TxCancelled  TxStatus = "cancelled"
)

// Terminal reports whether the status admits no further transition.
func (s TxStatus) Terminal() bool {
	return s == TxCompleted || s == TxRejected || s == TxCancelled
}

// Payment methods accepted by the simulated gateway.
const (
	PayCreditCard = "credit_card"
	PayDebitCard  = "debit_card"
	PayPSE        = "pse"
	PayNequi      = "nequi"
)

// GatewayResponse is the simulated gateway payload recorded on a
// processed transaction.
type GatewayResponse struct {
	Success           bool   `json:"success"`
	AuthorizationCode string `json:"authorizationCode,omitempty"`
	ErrorCode         string `json:"errorCode,omitempty"`
	Message           string `json:"message"`
}

// PaymentTransaction is one attempted commission payment per
// purchase attempt, stored in the transactions collection. Vehicle
// and party data are snapshots taken at creation; the buyer pays
// only the commission, never the vehicle price.
//
// Fields:
//  ID                - TXN- prefixed identifier.
//  VehicleID..VehiclePrice - vehicle snapshot.
//  BuyerID..SellerEmail    - party snapshots.
//  CommissionRate    - percentage (5 means 5%).
//  CommissionAmount  - Price * CommissionRate / 100.
//  TotalAmount       - equal to CommissionAmount.
//  Status            - see TxStatus.
//  PaymentMethod     - optional, set when processed.
//  TransactionReference - gateway reference on approval.
//  GatewayResponse   - simulated gateway payload.
//  RejectedReason    - reason on decline.
//  CreatedAt / CompletedAt / CancelledAt - timestamps.
type PaymentTransaction struct {
	ID                   string           `json:"id"`
	VehicleID            string           `json:"vehicleId"`
	VehicleBrand         string           `json:"vehicleBrand"`
	VehicleModel         string           `json:"vehicleModel"`
	VehicleYear          int              `json:"vehicleYear"`
	VehiclePrice         float64          `json:"vehiclePrice"`
	BuyerID              string           `json:"buyerId"`
	BuyerName            string           `json:"buyerName"`
	BuyerEmail           string           `json:"buyerEmail"`
	SellerID             string           `json:"sellerId"`
	SellerName           string           `json:"sellerName"`
	SellerEmail          string           `json:"sellerEmail"`
	CommissionRate       float64          `json:"commissionRate"`
	CommissionAmount     float64          `json:"commissionAmount"`
	TotalAmount          float64          `json:"totalAmount"`
	Status               TxStatus         `json:"status"`
	PaymentMethod        string           `json:"paymentMethod,omitempty"`
	TransactionReference string           `json:"transactionReference,omitempty"`
	GatewayResponse      *GatewayResponse `json:"paymentGatewayResponse,omitempty"`
	RejectedReason       string           `json:"rejectedReason,omitempty"`
	CreatedAt            time.Time        `json:"createdAt"`
	CompletedAt          *time.Time       `json:"completedAt,omitempty"`
	CancelledAt          *time.Time       `json:"cancelledAt,omitempty"`
}
