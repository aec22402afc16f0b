package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tucarrito/marketplace/internal/model"
	"github.com/tucarrito/marketplace/internal/queue"
	"github.com/tucarrito/marketplace/internal/repository"
)

type fakePublisher struct {
	events []queue.SaleCompletedEvent
	err    error
}

func (f *fakePublisher) PublishSaleCompleted(_ context.Context, ev queue.SaleCompletedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

type paymentFixture struct {
	payments *Payments
	vehicles *repository.VehicleRepo
	pub      *fakePublisher
	seller   model.User
	buyer    model.User
	vehicle  model.Vehicle
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	store := newTestStore()
	users := repository.NewUserRepo(store)
	vehicles := repository.NewVehicleRepo(store)
	txs := repository.NewTransactionRepo(store)
	pub := &fakePublisher{}
	ctx := context.Background()

	seller := model.User{ID: "seller-1", Email: "seller@test.com", FullName: "Carlos Vendedor"}
	buyer := model.User{ID: "buyer-1", Email: "buyer@test.com", FullName: "Ana Compradora"}
	require.NoError(t, users.Create(ctx, seller))
	require.NoError(t, users.Create(ctx, buyer))

	vehicle := model.Vehicle{
		ID: "veh-1", UserID: seller.ID, Brand: "Mazda", Model: "CX-30", Year: 2022,
		Price: 100000000, Status: model.StatusActive, SaleStatus: model.SaleForSale,
	}
	require.NoError(t, vehicles.Create(ctx, vehicle))

	return &paymentFixture{
		payments: NewPayments(txs, vehicles, users, pub, 5, 0),
		vehicles: vehicles,
		pub:      pub,
		seller:   seller,
		buyer:    buyer,
		vehicle:  vehicle,
	}
}

func TestCreateTransactionComputesCommission(t *testing.T) {
	fx := newPaymentFixture(t)
	ctx := context.Background()

	tx, err := fx.payments.CreateTransaction(ctx, fx.vehicle.ID, fx.buyer.ID)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(tx.ID, "TXN-"))
	assert.Equal(t, model.TxPending, tx.Status)
	assert.Equal(t, float64(5), tx.CommissionRate)
	assert.Equal(t, float64(5000000), tx.CommissionAmount)
	assert.Equal(t, tx.CommissionAmount, tx.TotalAmount)
	assert.Equal(t, fx.vehicle.Price, tx.VehiclePrice)
	assert.Equal(t, fx.buyer.FullName, tx.BuyerName)
	assert.Equal(t, fx.seller.Email, tx.SellerEmail)
}

func TestCreateTransactionGuards(t *testing.T) {
	fx := newPaymentFixture(t)
	ctx := context.Background()

	_, err := fx.payments.CreateTransaction(ctx, "missing", fx.buyer.ID)
	assert.ErrorIs(t, err, ErrVehicleNotFound)

	_, err = fx.payments.CreateTransaction(ctx, fx.vehicle.ID, fx.seller.ID)
	assert.ErrorIs(t, err, ErrSelfPurchase)

	_, err = fx.vehicles.Update(ctx, fx.vehicle.ID, func(v *model.Vehicle) error {
		v.SaleStatus = model.SaleDraft
		return nil
	})
	require.NoError(t, err)
	_, err = fx.payments.CreateTransaction(ctx, fx.vehicle.ID, fx.buyer.ID)
	assert.ErrorIs(t, err, ErrVehicleNotForSale)
}

func TestProcessApprovedSale(t *testing.T) {
	fx := newPaymentFixture(t)
	ctx := context.Background()

	tx, err := fx.payments.CreateTransaction(ctx, fx.vehicle.ID, fx.buyer.ID)
	require.NoError(t, err)

	tx, err = fx.payments.Process(ctx, tx.ID, PaymentDetails{
		Method: model.PayCreditCard, CardNumber: "4111111111111111", CardHolder: "ANA COMPRADORA",
	})
	require.NoError(t, err)

	assert.Equal(t, model.TxCompleted, tx.Status)
	assert.NotNil(t, tx.CompletedAt)
	assert.True(t, strings.HasPrefix(tx.TransactionReference, "REF-"))
	require.NotNil(t, tx.GatewayResponse)
	assert.True(t, tx.GatewayResponse.Success)
	assert.True(t, strings.HasPrefix(tx.GatewayResponse.AuthorizationCode, "AUTH-"))

	v, err := fx.vehicles.GetByID(ctx, fx.vehicle.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSold, v.Status)
	assert.Equal(t, model.SaleValidated, v.SaleStatus)
	assert.False(t, v.PubliclyVisible())

	require.Len(t, fx.pub.events, 1)
	assert.Equal(t, tx.ID, fx.pub.events[0].TransactionID)
	assert.Equal(t, tx.CommissionAmount, fx.pub.events[0].CommissionAmount)
}

func TestProcessDeclinedCard(t *testing.T) {
	fx := newPaymentFixture(t)
	ctx := context.Background()

	tx, err := fx.payments.CreateTransaction(ctx, fx.vehicle.ID, fx.buyer.ID)
	require.NoError(t, err)

	tx, err = fx.payments.Process(ctx, tx.ID, PaymentDetails{
		Method: model.PayCreditCard, CardNumber: "4111111111110000",
	})
	assert.ErrorIs(t, err, ErrCardDeclined)

	assert.Equal(t, model.TxRejected, tx.Status)
	assert.Equal(t, "Fondos insuficientes en la tarjeta", tx.RejectedReason)
	require.NotNil(t, tx.GatewayResponse)
	assert.False(t, tx.GatewayResponse.Success)
	assert.Equal(t, "INSUFFICIENT_FUNDS", tx.GatewayResponse.ErrorCode)

	// the vehicle stays on sale
	v, err := fx.vehicles.GetByID(ctx, fx.vehicle.ID)
	require.NoError(t, err)
	assert.True(t, v.PubliclyVisible())
	assert.Empty(t, fx.pub.events)
}

func TestTerminalTransactionsAreImmutable(t *testing.T) {
	fx := newPaymentFixture(t)
	ctx := context.Background()

	tx, err := fx.payments.CreateTransaction(ctx, fx.vehicle.ID, fx.buyer.ID)
	require.NoError(t, err)
	_, err = fx.payments.Process(ctx, tx.ID, PaymentDetails{CardNumber: "4111111111111111"})
	require.NoError(t, err)

	_, err = fx.payments.Process(ctx, tx.ID, PaymentDetails{CardNumber: "4111111111111111"})
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	_, err = fx.payments.Cancel(ctx, tx.ID)
	assert.ErrorIs(t, err, ErrNotCancellable)

	require.Len(t, fx.pub.events, 1)
}

func TestCancelPendingTransaction(t *testing.T) {
	fx := newPaymentFixture(t)
	ctx := context.Background()

	tx, err := fx.payments.CreateTransaction(ctx, fx.vehicle.ID, fx.buyer.ID)
	require.NoError(t, err)

	tx, err = fx.payments.Cancel(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TxCancelled, tx.Status)
	assert.NotNil(t, tx.CancelledAt)

	// the vehicle is untouched
	v, err := fx.vehicles.GetByID(ctx, fx.vehicle.ID)
	require.NoError(t, err)
	assert.True(t, v.PubliclyVisible())
}

func TestUserTransactionsCoversBothSides(t *testing.T) {
	fx := newPaymentFixture(t)
	ctx := context.Background()

	tx, err := fx.payments.CreateTransaction(ctx, fx.vehicle.ID, fx.buyer.ID)
	require.NoError(t, err)

	asBuyer, err := fx.payments.UserTransactions(ctx, fx.buyer.ID)
	require.NoError(t, err)
	require.Len(t, asBuyer, 1)
	assert.Equal(t, tx.ID, asBuyer[0].ID)

	asSeller, err := fx.payments.UserTransactions(ctx, fx.seller.ID)
	require.NoError(t, err)
	assert.Len(t, asSeller, 1)

	none, err := fx.payments.UserTransactions(ctx, "stranger")
	require.NoError(t, err)
	assert.Empty(t, none)
}
