package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tucarrito/marketplace/internal/model"
	"github.com/tucarrito/marketplace/internal/queue"
	"github.com/tucarrito/marketplace/internal/repository"
)

// EventPublisher emits domain events after a sale completes. A nil
// publisher is allowed; the sale still completes.
type EventPublisher interface {
	PublishSaleCompleted(ctx context.Context, ev queue.SaleCompletedEvent) error
}

// Payments runs the commission payment flow against a simulated
// gateway. The buyer pays only the platform commission; the vehicle
// price itself never moves through the system.
type Payments struct {
	txs      *repository.TransactionRepo
	vehicles *repository.VehicleRepo
	users    *repository.UserRepo
	pub      EventPublisher

	commissionRate float64
	gatewayDelay   time.Duration
}

// NewPayments returns a payment engine. rate is a percentage (5
// means 5%); delay is the simulated gateway latency, zero in tests.
func NewPayments(txs *repository.TransactionRepo, vehicles *repository.VehicleRepo, users *repository.UserRepo, pub EventPublisher, rate float64, delay time.Duration) *Payments {
	return &Payments{
		txs:            txs,
		vehicles:       vehicles,
		users:          users,
		pub:            pub,
		commissionRate: rate,
		gatewayDelay:   delay,
	}
}

// CreateTransaction opens a pending commission payment for a buyer
// and a publicly listed vehicle. Vehicle and party data are
// snapshotted so later edits do not alter the record. Buying your own
// vehicle is refused.
func (s *Payments) CreateTransaction(ctx context.Context, vehicleID, buyerID string) (model.PaymentTransaction, error) {
	v, err := s.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.PaymentTransaction{}, ErrVehicleNotFound
		}
		return model.PaymentTransaction{}, err
	}
	if !v.PubliclyVisible() {
		return model.PaymentTransaction{}, ErrVehicleNotForSale
	}
	if v.UserID == buyerID {
		return model.PaymentTransaction{}, ErrSelfPurchase
	}
	buyer, err := s.users.GetByID(ctx, buyerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.PaymentTransaction{}, ErrUserNotFound
		}
		return model.PaymentTransaction{}, err
	}
	seller, err := s.users.GetByID(ctx, v.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.PaymentTransaction{}, ErrUserNotFound
		}
		return model.PaymentTransaction{}, err
	}
	commission := v.Price * s.commissionRate / 100
	tx := model.PaymentTransaction{
		ID:               fmt.Sprintf("TXN-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8]),
		VehicleID:        v.ID,
		VehicleBrand:     v.Brand,
		VehicleModel:     v.Model,
		VehicleYear:      v.Year,
		VehiclePrice:     v.Price,
		BuyerID:          buyer.ID,
		BuyerName:        buyer.FullName,
		BuyerEmail:       buyer.Email,
		SellerID:         seller.ID,
		SellerName:       seller.FullName,
		SellerEmail:      seller.Email,
		CommissionRate:   s.commissionRate,
		CommissionAmount: commission,
		TotalAmount:      commission,
		Status:           model.TxPending,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.txs.Create(ctx, tx); err != nil {
		return model.PaymentTransaction{}, err
	}
	return tx, nil
}

// PaymentDetails carries the simulated payment instrument.
type PaymentDetails struct {
	Method     string
	CardNumber string
	CardHolder string
}

// Process charges a pending transaction through the simulated
// gateway. Card numbers ending in 0000 are declined for insufficient
// funds; everything else is approved. On approval the vehicle is
// marked sold/validated and a sale.completed event is published. A
// decline leaves the vehicle publicly listed. Either way the
// transaction becomes terminal; processing it again fails with
// ErrAlreadyProcessed.
func (s *Payments) Process(ctx context.Context, txID string, details PaymentDetails) (model.PaymentTransaction, error) {
	if s.gatewayDelay > 0 {
		select {
		case <-time.After(s.gatewayDelay):
		case <-ctx.Done():
			return model.PaymentTransaction{}, ctx.Err()
		}
	}

	declined := strings.HasSuffix(details.CardNumber, "0000")
	now := time.Now().UTC()

	tx, err := s.txs.Update(ctx, txID, func(tx *model.PaymentTransaction) error {
		if tx.Status.Terminal() {
			return ErrAlreadyProcessed
		}
		tx.PaymentMethod = details.Method
		if declined {
			tx.Status = model.TxRejected
			tx.RejectedReason = "Fondos insuficientes en la tarjeta"
			tx.GatewayResponse = &model.GatewayResponse{
				Success:   false,
				ErrorCode: "INSUFFICIENT_FUNDS",
				Message:   "Fondos insuficientes en la tarjeta",
			}
			return nil
		}
		tx.Status = model.TxCompleted
		tx.CompletedAt = &now
		tx.TransactionReference = fmt.Sprintf("REF-%d", now.UnixMilli())
		tx.GatewayResponse = &model.GatewayResponse{
			Success:           true,
			AuthorizationCode: fmt.Sprintf("AUTH-%d", now.UnixMilli()),
			Message:           "Pago procesado exitosamente",
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.PaymentTransaction{}, ErrTransactionNotFound
		}
		return model.PaymentTransaction{}, err
	}
	if declined {
		return tx, ErrCardDeclined
	}

	// Approval side effect: the vehicle leaves the public catalog.
	if _, err := s.vehicles.Update(ctx, tx.VehicleID, func(v *model.Vehicle) error {
		v.Status = model.StatusSold
		v.SaleStatus = model.SaleValidated
		v.UpdatedAt = now
		return nil
	}); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return tx, err
	}

	if s.pub != nil {
		ev := queue.SaleCompletedEvent{
			TransactionID:    tx.ID,
			VehicleID:        tx.VehicleID,
			BuyerID:          tx.BuyerID,
			SellerID:         tx.SellerID,
			CommissionAmount: tx.CommissionAmount,
			CompletedAt:      now,
		}
		if err := s.pub.PublishSaleCompleted(ctx, ev); err != nil {
			return tx, err
		}
	}
	return tx, nil
}

// Cancel abandons a pending transaction before payment. Terminal
// transactions cannot be cancelled.
func (s *Payments) Cancel(ctx context.Context, txID string) (model.PaymentTransaction, error) {
	now := time.Now().UTC()
	tx, err := s.txs.Update(ctx, txID, func(tx *model.PaymentTransaction) error {
		if tx.Status != model.TxPending {
			return ErrNotCancellable
		}
		tx.Status = model.TxCancelled
		tx.CancelledAt = &now
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return model.PaymentTransaction{}, ErrTransactionNotFound
	}
	return tx, err
}

// Transaction fetches one transaction by id.
func (s *Payments) Transaction(ctx context.Context, txID string) (model.PaymentTransaction, error) {
	tx, err := s.txs.GetByID(ctx, txID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.PaymentTransaction{}, ErrTransactionNotFound
	}
	return tx, err
}

// UserTransactions returns transactions where the user participates
// as buyer or seller.
func (s *Payments) UserTransactions(ctx context.Context, userID string) ([]model.PaymentTransaction, error) {
	return s.txs.ListByUser(ctx, userID)
}
