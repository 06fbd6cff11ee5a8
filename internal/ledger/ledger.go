package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/walletapi/internal/apperr"
)

const (
	// StatusPending is the status of a transaction created without one.
	StatusPending = "pending"
	// TypeCredit is the type given to receiver-addressed transactions by default.
	TypeCredit = "credit"

	msgDuplicateTransaction = "Transaction with this id already exists."
)

var errTransactionNotFound = apperr.NotFound("Transaction not found.")

// Transaction is a ledger entry recorded against a wallet. Its wallet link
// never changes after creation and its transaction_id is reserved forever,
// soft-deleted rows included.
type Transaction struct {
	ID              int64
	TransactionID   string
	WalletID        int64
	AccountID       int64 // owner of WalletID
	Amount          decimal.Decimal
	Fee             decimal.Decimal
	FinalAmount     decimal.Decimal
	TransactionType string
	Status          string
	Description     string
	Metadata        map[string]any
	SenderName      string
	ReceiverName    string
	SenderEmail     string
	ReceiverEmail   string
	SenderType      string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Store persists transactions. Owner-facing reads and writes are filtered
// through the wallet's account and see active rows only.
type Store interface {
	Create(ctx context.Context, txn *Transaction) error
	Exists(ctx context.Context, transactionID string) (bool, error)
	FindByTransactionID(ctx context.Context, transactionID string) (Transaction, error)
	GetForAccount(ctx context.Context, accountID, id int64) (Transaction, error)
	ListForAccount(ctx context.Context, accountID int64) ([]Transaction, error)
	ListForWallet(ctx context.Context, walletID int64) ([]Transaction, error)
	Update(ctx context.Context, txn *Transaction) error
	Deactivate(ctx context.Context, accountID, id int64) error
}

// DuplicateError reports a reused transaction_id. Existing is set only when
// the earlier record belongs to the caller.
type DuplicateError struct {
	Err      *apperr.Error
	Existing *Transaction
}

func (e *DuplicateError) Error() string { return e.Err.Error() }

func (e *DuplicateError) Unwrap() error { return e.Err }

func duplicateOf(existing *Transaction) *DuplicateError {
	return &DuplicateError{
		Err:      apperr.Conflict("transaction_id", msgDuplicateTransaction),
		Existing: existing,
	}
}

// View is the output projection of a transaction. Amounts render as decimal
// strings, absent text as "" and absent metadata as {}.
type View struct {
	ID              int64          `json:"id"`
	TransactionID   string         `json:"transaction_id"`
	Wallet          int64          `json:"wallet"`
	Amount          string         `json:"amount"`
	Fee             string         `json:"fee"`
	FinalAmount     string         `json:"final_amount"`
	TransactionType string         `json:"transaction_type"`
	Status          string         `json:"status"`
	Description     string         `json:"description"`
	Metadata        map[string]any `json:"metadata"`
	SenderName      string         `json:"sender_name"`
	ReceiverName    string         `json:"receiver_name"`
	SenderEmail     string         `json:"sender_email"`
	ReceiverEmail   string         `json:"receiver_email"`
	SenderType      string         `json:"sender_type"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// ToView projects t onto its fixed output fields.
func ToView(t Transaction) View {
	metadata := t.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return View{
		ID:              t.ID,
		TransactionID:   t.TransactionID,
		Wallet:          t.WalletID,
		Amount:          t.Amount.String(),
		Fee:             t.Fee.String(),
		FinalAmount:     t.FinalAmount.String(),
		TransactionType: t.TransactionType,
		Status:          t.Status,
		Description:     t.Description,
		Metadata:        metadata,
		SenderName:      t.SenderName,
		ReceiverName:    t.ReceiverName,
		SenderEmail:     t.SenderEmail,
		ReceiverEmail:   t.ReceiverEmail,
		SenderType:      t.SenderType,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

// Views projects a list of transactions.
func Views(txns []Transaction) []View {
	out := make([]View, 0, len(txns))
	for _, t := range txns {
		out = append(out, ToView(t))
	}
	return out
}

// ActivityItem is one row of a wallet's activity feed.
type ActivityItem struct {
	ID              int64     `json:"id"`
	Amount          string    `json:"amount"`
	TransactionType string    `json:"transaction_type"`
	WalletType      string    `json:"wallet_type"`
	Username        string    `json:"username"`
	Address         string    `json:"address"`
	CreatedAt       time.Time `json:"created_at"`
}
