package wallet

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/walletapi/internal/apperr"
	"github.com/congo-pay/walletapi/internal/logging"
)

// Service exposes owner-scoped wallet operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService builds a wallet service instance.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{repo: repo, logger: logger}
}

// CreateInput captures data required to create a wallet.
type CreateInput struct {
	Address    string
	WalletType string
	Balance    *decimal.Decimal
}

// UpdateInput lists the mutable wallet fields; nil leaves a field untouched.
type UpdateInput struct {
	Address    *string
	WalletType *string
}

// NormalizeAddress strips every whitespace character from an address.
func NormalizeAddress(address string) string {
	return strings.Join(strings.Fields(address), "")
}

// Create links a new wallet to accountID. The account may hold only one
// active wallet and the address must never have been used before.
func (s *Service) Create(ctx context.Context, accountID int64, input CreateInput) (Wallet, error) {
	address := NormalizeAddress(input.Address)
	if address == "" {
		return Wallet{}, apperr.Invalid("address", apperr.MsgRequired)
	}
	taken, err := s.repo.AddressTaken(ctx, address, 0)
	if err != nil {
		return Wallet{}, err
	}
	if taken {
		return Wallet{}, apperr.Conflict("address", msgAddressTaken)
	}
	if _, err := s.repo.ActiveForAccount(ctx, accountID); err == nil {
		return Wallet{}, apperr.Conflict("account", msgActiveWallet)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return Wallet{}, err
	}

	balance := decimal.Zero
	if input.Balance != nil {
		balance = *input.Balance
	}
	wallet := Wallet{
		AccountID:  accountID,
		Address:    address,
		WalletType: strings.TrimSpace(input.WalletType),
		Balance:    balance,
	}
	if err := s.repo.Create(ctx, &wallet); err != nil {
		return Wallet{}, err
	}

	s.logger.Info("wallet created", slog.Int64("account_id", accountID), slog.Int64("wallet_id", wallet.ID))
	return wallet, nil
}

// Get returns an active wallet owned by accountID.
func (s *Service) Get(ctx context.Context, accountID, id int64) (Wallet, error) {
	return s.repo.GetForAccount(ctx, accountID, id)
}

// List returns the account's active wallets, newest first.
func (s *Service) List(ctx context.Context, accountID int64) ([]Wallet, error) {
	return s.repo.ListForAccount(ctx, accountID)
}

// Active returns the account's active wallet.
func (s *Service) Active(ctx context.Context, accountID int64) (Wallet, error) {
	return s.repo.ActiveForAccount(ctx, accountID)
}

// ByAddress resolves an active wallet from its address.
func (s *Service) ByAddress(ctx context.Context, address string) (Wallet, error) {
	address = NormalizeAddress(address)
	if address == "" {
		return Wallet{}, apperr.Invalid("wallet_address", apperr.MsgRequired)
	}
	return s.repo.ActiveByAddress(ctx, address)
}

// Update changes address and wallet type. A supplied address must not be
// blank and, when changed, must be unused by every other wallet.
func (s *Service) Update(ctx context.Context, accountID, id int64, input UpdateInput) (Wallet, error) {
	wallet, err := s.repo.GetForAccount(ctx, accountID, id)
	if err != nil {
		return Wallet{}, err
	}
	if input.Address != nil {
		address := NormalizeAddress(*input.Address)
		if address == "" {
			return Wallet{}, apperr.Invalid("address", apperr.MsgRequired)
		}
		if address != wallet.Address {
			taken, err := s.repo.AddressTaken(ctx, address, wallet.ID)
			if err != nil {
				return Wallet{}, err
			}
			if taken {
				return Wallet{}, apperr.Conflict("address", msgAddressTaken)
			}
			wallet.Address = address
		}
	}
	if input.WalletType != nil {
		wallet.WalletType = strings.TrimSpace(*input.WalletType)
	}
	if err := s.repo.Update(ctx, &wallet); err != nil {
		return Wallet{}, err
	}
	return wallet, nil
}

// Delete soft-deletes a wallet. Its transactions keep their own active flag.
func (s *Service) Delete(ctx context.Context, accountID, id int64) error {
	if err := s.repo.Deactivate(ctx, accountID, id); err != nil {
		return err
	}
	s.logger.Info("wallet deleted", slog.Int64("account_id", accountID), slog.Int64("wallet_id", id))
	return nil
}
