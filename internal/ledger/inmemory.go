package ledger

import (
	"context"
	"sort"
	"sync"
	"time"
)

type inMemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]Transaction
	byTxID map[string]int64
	now    func() time.Time
}

// NewInMemory creates a concurrency-safe in-memory store useful for unit tests
// and local runs without a database.
func NewInMemory() Store {
	return &inMemoryStore{
		byID:   make(map[int64]Transaction),
		byTxID: make(map[string]int64),
		now:    time.Now,
	}
}

func (s *inMemoryStore) Create(_ context.Context, txn *Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byTxID[txn.TransactionID]; exists {
		return duplicateOf(nil)
	}
	s.nextID++
	now := s.now().UTC()
	txn.ID = s.nextID
	txn.IsActive = true
	txn.CreatedAt = now
	txn.UpdatedAt = now
	s.byID[txn.ID] = clone(*txn)
	s.byTxID[txn.TransactionID] = txn.ID
	return nil
}

func (s *inMemoryStore) Exists(_ context.Context, transactionID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.byTxID[transactionID]
	return exists, nil
}

func (s *inMemoryStore) FindByTransactionID(_ context.Context, transactionID string) (Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byTxID[transactionID]
	if !ok {
		return Transaction{}, errTransactionNotFound
	}
	return clone(s.byID[id]), nil
}

func (s *inMemoryStore) GetForAccount(_ context.Context, accountID, id int64) (Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byID[id]
	if !ok || !t.IsActive || t.AccountID != accountID {
		return Transaction{}, errTransactionNotFound
	}
	return clone(t), nil
}

func (s *inMemoryStore) ListForAccount(_ context.Context, accountID int64) ([]Transaction, error) {
	return s.list(func(t Transaction) bool { return t.AccountID == accountID }), nil
}

func (s *inMemoryStore) ListForWallet(_ context.Context, walletID int64) ([]Transaction, error) {
	return s.list(func(t Transaction) bool { return t.WalletID == walletID }), nil
}

func (s *inMemoryStore) Update(_ context.Context, txn *Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.byID[txn.ID]
	if !ok || !current.IsActive || current.AccountID != txn.AccountID {
		return errTransactionNotFound
	}
	updated := clone(*txn)
	updated.TransactionID = current.TransactionID
	updated.WalletID = current.WalletID
	updated.IsActive = current.IsActive
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = s.now().UTC()
	s.byID[txn.ID] = updated
	*txn = clone(updated)
	return nil
}

func (s *inMemoryStore) Deactivate(_ context.Context, accountID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[id]
	if !ok || !t.IsActive || t.AccountID != accountID {
		return errTransactionNotFound
	}
	t.IsActive = false
	t.UpdatedAt = s.now().UTC()
	s.byID[id] = t
	return nil
}

func (s *inMemoryStore) list(match func(Transaction) bool) []Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	txns := []Transaction{}
	for _, t := range s.byID {
		if t.IsActive && match(t) {
			txns = append(txns, clone(t))
		}
	}
	sort.Slice(txns, func(i, j int) bool {
		if txns[i].CreatedAt.Equal(txns[j].CreatedAt) {
			return txns[i].ID > txns[j].ID
		}
		return txns[i].CreatedAt.After(txns[j].CreatedAt)
	})
	return txns
}

// clone copies the metadata map so callers never share it with the store.
func clone(t Transaction) Transaction {
	if t.Metadata != nil {
		m := make(map[string]any, len(t.Metadata))
		for k, v := range t.Metadata {
			m[k] = v
		}
		t.Metadata = m
	}
	return t
}
