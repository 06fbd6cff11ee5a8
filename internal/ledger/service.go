package ledger

import (
	"context"
	"errors"
	"log/slog"

	"github.com/congo-pay/walletapi/internal/apperr"
	"github.com/congo-pay/walletapi/internal/identity"
	"github.com/congo-pay/walletapi/internal/logging"
	"github.com/congo-pay/walletapi/internal/wallet"
)

var errNoWallet = apperr.BusinessRule("No wallet linked to this account. Create a wallet first.")

// Wallets resolves the wallet a new transaction is recorded against.
type Wallets interface {
	Active(ctx context.Context, accountID int64) (wallet.Wallet, error)
	ByAddress(ctx context.Context, address string) (wallet.Wallet, error)
}

// Service records and serves transactions.
type Service struct {
	store   Store
	wallets Wallets
	logger  *slog.Logger
	newID   func() string
}

// NewService builds a ledger service.
func NewService(store Store, wallets Wallets, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{store: store, wallets: wallets, logger: logger, newID: NewTransactionID}
}

// CreateOwned records a transaction against the caller's active wallet.
func (s *Service) CreateOwned(ctx context.Context, caller identity.Account, d Draft) (Transaction, error) {
	if err := d.validate(true); err != nil {
		return Transaction{}, err
	}
	w, err := s.wallets.Active(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Transaction{}, errNoWallet
		}
		return Transaction{}, err
	}
	return s.insert(ctx, w, d, &caller)
}

// CreateByAddress records a transaction against the active wallet at address.
// An authenticated caller is treated exactly like CreateOwned and the address
// is ignored.
func (s *Service) CreateByAddress(ctx context.Context, caller *identity.Account, address string, d Draft) (Transaction, error) {
	if caller != nil {
		return s.CreateOwned(ctx, *caller, d)
	}
	v := apperr.NewValidator()
	v.Merge(d.validate(true))
	v.Check(wallet.NormalizeAddress(address) != "", "wallet_address", apperr.MsgRequired)
	if err := v.Err(); err != nil {
		return Transaction{}, err
	}
	w, err := s.wallets.ByAddress(ctx, address)
	if err != nil {
		return Transaction{}, err
	}
	return s.insert(ctx, w, d, nil)
}

// Record stores d against receiver wallet w on behalf of an anonymous sender.
func (s *Service) Record(ctx context.Context, w wallet.Wallet, d Draft) (Transaction, error) {
	d, err := d.ForReceiver()
	if err != nil {
		return Transaction{}, err
	}
	if d.TransactionID == "" {
		id, err := generateID(ctx, s.store, s.newID)
		if err != nil {
			return Transaction{}, err
		}
		d.TransactionID = id
	}
	return s.insert(ctx, w, d, nil)
}

// insert checks transaction_id reuse, then writes. On a duplicate the earlier
// record is returned alongside the error only when caller owns it.
func (s *Service) insert(ctx context.Context, w wallet.Wallet, d Draft, caller *identity.Account) (Transaction, error) {
	if existing, err := s.store.FindByTransactionID(ctx, d.TransactionID); err == nil {
		return duplicateFor(existing, caller)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return Transaction{}, err
	}

	txn := d.build(w.ID, w.AccountID)
	if err := s.store.Create(ctx, &txn); err != nil {
		var dup *DuplicateError
		if errors.As(err, &dup) {
			if existing, ferr := s.store.FindByTransactionID(ctx, d.TransactionID); ferr == nil {
				return duplicateFor(existing, caller)
			}
		}
		return Transaction{}, err
	}

	s.logger.Info("transaction recorded",
		slog.Int64("wallet_id", w.ID),
		slog.Int64("transaction_pk", txn.ID),
		slog.String("transaction_id", txn.TransactionID),
	)
	return txn, nil
}

func duplicateFor(existing Transaction, caller *identity.Account) (Transaction, error) {
	if caller != nil && existing.AccountID == caller.ID {
		return existing, duplicateOf(&existing)
	}
	return Transaction{}, duplicateOf(nil)
}

// Get returns an active transaction recorded on one of accountID's wallets.
func (s *Service) Get(ctx context.Context, accountID, id int64) (Transaction, error) {
	return s.store.GetForAccount(ctx, accountID, id)
}

// List returns accountID's active transactions, newest first.
func (s *Service) List(ctx context.Context, accountID int64) ([]Transaction, error) {
	return s.store.ListForAccount(ctx, accountID)
}

// ForWallet returns the active transactions of a wallet, newest first.
func (s *Service) ForWallet(ctx context.Context, walletID int64) ([]Transaction, error) {
	return s.store.ListForWallet(ctx, walletID)
}

// Update applies ch to an owned transaction. Derived amounts are not
// recomputed.
func (s *Service) Update(ctx context.Context, accountID, id int64, ch Changes) (Transaction, error) {
	txn, err := s.store.GetForAccount(ctx, accountID, id)
	if err != nil {
		return Transaction{}, err
	}
	ch.apply(&txn)
	if err := s.store.Update(ctx, &txn); err != nil {
		return Transaction{}, err
	}
	return txn, nil
}

// Delete soft-deletes an owned transaction. Its transaction_id stays reserved.
func (s *Service) Delete(ctx context.Context, accountID, id int64) error {
	if err := s.store.Deactivate(ctx, accountID, id); err != nil {
		return err
	}
	s.logger.Info("transaction deleted", slog.Int64("account_id", accountID), slog.Int64("transaction_pk", id))
	return nil
}

// Activity lists the caller's active wallet transactions as feed items. An
// account without a wallet has an empty feed.
func (s *Service) Activity(ctx context.Context, caller identity.Account) ([]ActivityItem, error) {
	w, err := s.wallets.Active(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return []ActivityItem{}, nil
		}
		return nil, err
	}
	txns, err := s.store.ListForWallet(ctx, w.ID)
	if err != nil {
		return nil, err
	}
	items := make([]ActivityItem, 0, len(txns))
	for _, t := range txns {
		items = append(items, ActivityItem{
			ID:              t.ID,
			Amount:          t.Amount.String(),
			TransactionType: t.TransactionType,
			WalletType:      w.WalletType,
			Username:        caller.Username,
			Address:         w.Address,
			CreatedAt:       t.CreatedAt,
		})
	}
	return items, nil
}
