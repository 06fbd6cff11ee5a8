package identity

import (
	"context"
	"sync"
	"time"

	"github.com/congo-pay/walletapi/internal/apperr"
)

type memoryRepository struct {
	mu       sync.RWMutex
	nextID   int64
	accounts map[int64]Account
}

// NewMemoryRepository builds an in-memory account store for tests and local runs.
func NewMemoryRepository() Repository {
	return &memoryRepository{accounts: make(map[int64]Account)}
}

func (r *memoryRepository) Create(_ context.Context, account *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkUnique(account.Email, account.Username, 0); err != nil {
		return err
	}
	r.nextID++
	now := time.Now().UTC()
	account.ID = r.nextID
	account.IsActive = true
	account.CreatedAt = now
	account.UpdatedAt = now
	r.accounts[account.ID] = *account
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id int64) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.accounts[id]
	if !ok {
		return Account{}, errAccountNotFound
	}
	return account, nil
}

func (r *memoryRepository) FindActiveByEmail(_ context.Context, email string) (Account, error) {
	return r.findActive(func(a Account) bool { return a.Email == email })
}

func (r *memoryRepository) FindActiveByUsername(_ context.Context, username string) (Account, error) {
	return r.findActive(func(a Account) bool { return a.Username == username })
}

func (r *memoryRepository) EmailTaken(_ context.Context, email string, excludeID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.ID != excludeID && a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepository) UsernameTaken(_ context.Context, username string, excludeID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.ID != excludeID && a.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepository) Update(_ context.Context, account *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.accounts[account.ID]
	if !ok || !current.IsActive {
		return errAccountNotFound
	}
	if err := r.checkUnique(account.Email, account.Username, account.ID); err != nil {
		return err
	}
	account.IsActive = current.IsActive
	account.CreatedAt = current.CreatedAt
	account.UpdatedAt = time.Now().UTC()
	r.accounts[account.ID] = *account
	return nil
}

func (r *memoryRepository) Deactivate(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok || !account.IsActive {
		return errAccountNotFound
	}
	account.IsActive = false
	account.UpdatedAt = time.Now().UTC()
	r.accounts[id] = account
	return nil
}

func (r *memoryRepository) findActive(match func(Account) bool) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.IsActive && match(a) {
			return a, nil
		}
	}
	return Account{}, errAccountNotFound
}

// checkUnique mirrors the store's unique constraints; callers hold the lock.
func (r *memoryRepository) checkUnique(email, username string, excludeID int64) error {
	for _, a := range r.accounts {
		if a.ID == excludeID {
			continue
		}
		if a.Email == email {
			return apperr.Conflict("email", msgEmailTaken)
		}
		if a.Username == username {
			return apperr.Conflict("username", msgUsernameTaken)
		}
	}
	return nil
}
