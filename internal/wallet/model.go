package wallet

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is the single financial identity record linked to an account.
type Wallet struct {
	ID         int64
	AccountID  int64
	Address    string
	WalletType string
	Balance    decimal.Decimal
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// View is the output projection of a wallet.
type View struct {
	ID           int64     `json:"id"`
	Account      int64     `json:"account"`
	AccountEmail string    `json:"account_email"`
	Address      string    `json:"address"`
	WalletType   string    `json:"wallet_type"`
	Balance      string    `json:"balance"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToView projects w; accountEmail is the owning account's email.
func ToView(w Wallet, accountEmail string) View {
	return View{
		ID:           w.ID,
		Account:      w.AccountID,
		AccountEmail: accountEmail,
		Address:      w.Address,
		WalletType:   w.WalletType,
		Balance:      w.Balance.String(),
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
}
