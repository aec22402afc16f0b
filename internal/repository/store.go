package repository

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/tucarrito/marketplace/internal/model"
)

// Storage keys. One key per collection plus two scalar slots; every
// collection is stored as a single JSON document.
const (
	usersKey        = "tucarrito_users"
	vehiclesKey     = "tucarrito_vehicles"
	tempVehiclesKey = "tucarrito_temp_vehicles"
	transactionsKey = "tucarrito_transactions"
	currentUserKey  = "tucarrito_current_user"
	sessionIDKey    = "tucarrito_session_id"
)

// Store is the persistent store for users, vehicles, temporary
// vehicles and transactions. Mutations are whole-collection
// read-modify-write cycles; a per-collection mutex makes the store
// single-writer so concurrent callers cannot lose updates.
type Store struct {
	kv KV

	usersMu sync.Mutex
	vehMu   sync.Mutex
	tempMu  sync.Mutex
	txMu    sync.Mutex
	slotMu  sync.Mutex
}

// NewStore returns a Store over the given key-value backend.
func NewStore(kv KV) *Store { return &Store{kv: kv} }

func (s *Store) load(ctx context.Context, key string, out any) error {
	b, err := s.kv.Get(ctx, key)
	if err == ErrNotFound {
		return nil // missing collection reads as empty
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func (s *Store) save(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, key, b)
}

// Users returns the full users collection.
func (s *Store) Users(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := s.load(ctx, usersKey, &users)
	return users, err
}

// MutateUsers runs fn on the users collection under the collection
// lock and persists the result. fn may return a modified slice; a
// non-nil error aborts without writing.
func (s *Store) MutateUsers(ctx context.Context, fn func([]model.User) ([]model.User, error)) error {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	users, err := s.Users(ctx)
	if err != nil {
		return err
	}
	users, err = fn(users)
	if err != nil {
		return err
	}
	return s.save(ctx, usersKey, users)
}

// Vehicles returns the full vehicles collection.
func (s *Store) Vehicles(ctx context.Context) ([]model.Vehicle, error) {
	var vehicles []model.Vehicle
	err := s.load(ctx, vehiclesKey, &vehicles)
	return vehicles, err
}

// MutateVehicles runs fn on the vehicles collection under the
// collection lock and persists the result.
func (s *Store) MutateVehicles(ctx context.Context, fn func([]model.Vehicle) ([]model.Vehicle, error)) error {
	s.vehMu.Lock()
	defer s.vehMu.Unlock()
	vehicles, err := s.Vehicles(ctx)
	if err != nil {
		return err
	}
	vehicles, err = fn(vehicles)
	if err != nil {
		return err
	}
	return s.save(ctx, vehiclesKey, vehicles)
}

// TemporaryVehicles returns the full temporary vehicles collection.
func (s *Store) TemporaryVehicles(ctx context.Context) ([]model.TemporaryVehicle, error) {
	var vehicles []model.TemporaryVehicle
	err := s.load(ctx, tempVehiclesKey, &vehicles)
	return vehicles, err
}

// MutateTemporaryVehicles runs fn on the temporary vehicles
// collection under the collection lock and persists the result.
func (s *Store) MutateTemporaryVehicles(ctx context.Context, fn func([]model.TemporaryVehicle) ([]model.TemporaryVehicle, error)) error {
	s.tempMu.Lock()
	defer s.tempMu.Unlock()
	vehicles, err := s.TemporaryVehicles(ctx)
	if err != nil {
		return err
	}
	vehicles, err = fn(vehicles)
	if err != nil {
		return err
	}
	return s.save(ctx, tempVehiclesKey, vehicles)
}

// Transactions returns the full transactions collection.
func (s *Store) Transactions(ctx context.Context) ([]model.PaymentTransaction, error) {
	var txs []model.PaymentTransaction
	err := s.load(ctx, transactionsKey, &txs)
	return txs, err
}

// MutateTransactions runs fn on the transactions collection under
// the collection lock and persists the result.
func (s *Store) MutateTransactions(ctx context.Context, fn func([]model.PaymentTransaction) ([]model.PaymentTransaction, error)) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	txs, err := s.Transactions(ctx)
	if err != nil {
		return err
	}
	txs, err = fn(txs)
	if err != nil {
		return err
	}
	return s.save(ctx, transactionsKey, txs)
}

// CurrentUserID reads the current-user slot. An empty id with a nil
// error means no user is logged in.
func (s *Store) CurrentUserID(ctx context.Context) (string, error) {
	b, err := s.kv.Get(ctx, currentUserKey)
	if err == ErrNotFound {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// SetCurrentUserID writes the current-user slot.
func (s *Store) SetCurrentUserID(ctx context.Context, id string) error {
	s.slotMu.Lock()
	defer s.slotMu.Unlock()
	return s.kv.Set(ctx, currentUserKey, []byte(id))
}

// ClearCurrentUser removes the current-user slot. Idempotent.
func (s *Store) ClearCurrentUser(ctx context.Context) error {
	s.slotMu.Lock()
	defer s.slotMu.Unlock()
	return s.kv.Del(ctx, currentUserKey)
}

// SessionID reads the anonymous session slot. Empty means no session
// has been created yet.
func (s *Store) SessionID(ctx context.Context) (string, error) {
	b, err := s.kv.Get(ctx, sessionIDKey)
	if err == ErrNotFound {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// SetSessionID writes the anonymous session slot.
func (s *Store) SetSessionID(ctx context.Context, id string) error {
	s.slotMu.Lock()
	defer s.slotMu.Unlock()
	return s.kv.Set(ctx, sessionIDKey, []byte(id))
}
