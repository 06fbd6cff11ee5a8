package wallet

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/congo-pay/walletapi/internal/apperr"
)

type memoryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	storage map[int64]Wallet
}

// NewMemoryRepository constructs an in-memory repository for tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[int64]Wallet)}
}

func (r *memoryRepository) Create(_ context.Context, wallet *Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.storage {
		if w.Address == wallet.Address {
			return apperr.Conflict("address", msgAddressTaken)
		}
		if w.AccountID == wallet.AccountID && w.IsActive {
			return apperr.Conflict("account", msgActiveWallet)
		}
	}
	r.nextID++
	now := time.Now().UTC()
	wallet.ID = r.nextID
	wallet.IsActive = true
	wallet.CreatedAt = now
	wallet.UpdatedAt = now
	r.storage[wallet.ID] = *wallet
	return nil
}

func (r *memoryRepository) GetForAccount(_ context.Context, accountID, id int64) (Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.storage[id]
	if !ok || !w.IsActive || w.AccountID != accountID {
		return Wallet{}, errWalletNotFound
	}
	return w, nil
}

func (r *memoryRepository) ActiveForAccount(_ context.Context, accountID int64) (Wallet, error) {
	return r.findActive(func(w Wallet) bool { return w.AccountID == accountID })
}

func (r *memoryRepository) ActiveByAddress(_ context.Context, address string) (Wallet, error) {
	return r.findActive(func(w Wallet) bool { return w.Address == address })
}

func (r *memoryRepository) ListForAccount(_ context.Context, accountID int64) ([]Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wallets := []Wallet{}
	for _, w := range r.storage {
		if w.IsActive && w.AccountID == accountID {
			wallets = append(wallets, w)
		}
	}
	sort.Slice(wallets, func(i, j int) bool {
		if wallets[i].CreatedAt.Equal(wallets[j].CreatedAt) {
			return wallets[i].ID > wallets[j].ID
		}
		return wallets[i].CreatedAt.After(wallets[j].CreatedAt)
	})
	return wallets, nil
}

func (r *memoryRepository) AddressTaken(_ context.Context, address string, excludeID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.storage {
		if w.ID != excludeID && w.Address == address {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepository) Update(_ context.Context, wallet *Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.storage[wallet.ID]
	if !ok || !current.IsActive || current.AccountID != wallet.AccountID {
		return errWalletNotFound
	}
	for _, w := range r.storage {
		if w.ID != wallet.ID && w.Address == wallet.Address {
			return apperr.Conflict("address", msgAddressTaken)
		}
	}
	current.Address = wallet.Address
	current.WalletType = wallet.WalletType
	current.UpdatedAt = time.Now().UTC()
	r.storage[current.ID] = current
	*wallet = current
	return nil
}

func (r *memoryRepository) Deactivate(_ context.Context, accountID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.storage[id]
	if !ok || !w.IsActive || w.AccountID != accountID {
		return errWalletNotFound
	}
	w.IsActive = false
	w.UpdatedAt = time.Now().UTC()
	r.storage[id] = w
	return nil
}

func (r *memoryRepository) findActive(match func(Wallet) bool) (Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.storage {
		if w.IsActive && match(w) {
			return w, nil
		}
	}
	return Wallet{}, errWalletNotFound
}
