package repository

import (
	"context"

	"github.com/tucarrito/marketplace/internal/model"
)

// TransactionRepo provides per-record access to the payment
// transactions collection.
type TransactionRepo struct{ store *Store }

// NewTransactionRepo returns a repo over the given store.
func NewTransactionRepo(store *Store) *TransactionRepo { return &TransactionRepo{store: store} }

// Create appends a new transaction record.
func (r *TransactionRepo) Create(ctx context.Context, tx model.PaymentTransaction) error {
	return r.store.MutateTransactions(ctx, func(txs []model.PaymentTransaction) ([]model.PaymentTransaction, error) {
		return append(txs, tx), nil
	})
}

// GetByID fetches a transaction by id, ErrNotFound when absent.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (model.PaymentTransaction, error) {
	txs, err := r.store.Transactions(ctx)
	if err != nil {
		return model.PaymentTransaction{}, err
	}
	for _, tx := range txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return model.PaymentTransaction{}, ErrNotFound
}

// Update applies fn to the transaction with the given id under the
// collection lock and returns the updated record. fn may return an
// error to abort without writing; this is how terminal-state guards
// stay atomic with the write.
func (r *TransactionRepo) Update(ctx context.Context, id string, fn func(*model.PaymentTransaction) error) (model.PaymentTransaction, error) {
	var updated model.PaymentTransaction
	err := r.store.MutateTransactions(ctx, func(txs []model.PaymentTransaction) ([]model.PaymentTransaction, error) {
		for i := range txs {
			if txs[i].ID == id {
				if err := fn(&txs[i]); err != nil {
					return nil, err
				}
				updated = txs[i]
				return txs, nil
			}
		}
		return nil, ErrNotFound
	})
	return updated, err
}

// ListByUser returns transactions where the user is buyer or seller.
func (r *TransactionRepo) ListByUser(ctx context.Context, userID string) ([]model.PaymentTransaction, error) {
	txs, err := r.store.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.PaymentTransaction, 0)
	for _, tx := range txs {
		if tx.BuyerID == userID || tx.SellerID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}
