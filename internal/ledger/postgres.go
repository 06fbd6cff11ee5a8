package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/congo-pay/walletapi/internal/payload"
)

const uniqueViolation = "23505"

// PostgresStore persists transactions in PostgreSQL. Ownership is resolved
// by joining each transaction to its wallet.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed transaction store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectTransactions = `SELECT t.id, t.transaction_id, t.wallet_id, w.account_id, t.amount, t.fee,
        t.final_amount, t.transaction_type, t.status, t.description, t.metadata, t.sender_name,
        t.receiver_name, t.sender_email, t.receiver_email, t.sender_type, t.is_active,
        t.created_at, t.updated_at
        FROM transactions t
        INNER JOIN wallets w ON w.id = t.wallet_id`

// Create inserts a transaction. A reused transaction_id surfaces as a
// duplicate through the unique index even when the pre-check raced.
func (s *PostgresStore) Create(ctx context.Context, txn *Transaction) error {
	row := s.db.QueryRow(ctx, `INSERT INTO transactions (transaction_id, wallet_id, amount, fee, final_amount,
        transaction_type, status, description, metadata, sender_name, receiver_name, sender_email,
        receiver_email, sender_type, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, TRUE)
        RETURNING id, is_active, created_at, updated_at`,
		txn.TransactionID, txn.WalletID, txn.Amount, txn.Fee, txn.FinalAmount, txn.TransactionType,
		txn.Status, txn.Description, txn.Metadata, txn.SenderName, txn.ReceiverName, txn.SenderEmail,
		txn.ReceiverEmail, txn.SenderType)
	if err := row.Scan(&txn.ID, &txn.IsActive, &txn.CreatedAt, &txn.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return duplicateOf(nil)
		}
		return err
	}
	txn.CreatedAt = txn.CreatedAt.UTC()
	txn.UpdatedAt = txn.UpdatedAt.UTC()
	return nil
}

// Exists reports whether transactionID was ever used, soft-deleted rows
// included.
func (s *PostgresStore) Exists(ctx context.Context, transactionID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transactions WHERE transaction_id = $1)`, transactionID).Scan(&exists)
	return exists, err
}

// FindByTransactionID fetches a transaction whatever its active flag.
func (s *PostgresStore) FindByTransactionID(ctx context.Context, transactionID string) (Transaction, error) {
	return s.findOne(ctx, selectTransactions+` WHERE t.transaction_id = $1`, transactionID)
}

// GetForAccount fetches an active transaction whose wallet belongs to accountID.
func (s *PostgresStore) GetForAccount(ctx context.Context, accountID, id int64) (Transaction, error) {
	return s.findOne(ctx, selectTransactions+` WHERE t.id = $1 AND w.account_id = $2 AND t.is_active`, id, accountID)
}

// ListForAccount returns the active transactions of every wallet of accountID,
// newest first.
func (s *PostgresStore) ListForAccount(ctx context.Context, accountID int64) ([]Transaction, error) {
	return s.list(ctx, selectTransactions+` WHERE w.account_id = $1 AND t.is_active
        ORDER BY t.created_at DESC, t.id DESC`, accountID)
}

// ListForWallet returns the active transactions of one wallet, newest first.
func (s *PostgresStore) ListForWallet(ctx context.Context, walletID int64) ([]Transaction, error) {
	return s.list(ctx, selectTransactions+` WHERE t.wallet_id = $1 AND t.is_active
        ORDER BY t.created_at DESC, t.id DESC`, walletID)
}

// Update stores every mutable field of an active transaction owned by
// txn.AccountID. The wallet link is never rewritten.
func (s *PostgresStore) Update(ctx context.Context, txn *Transaction) error {
	row := s.db.QueryRow(ctx, `UPDATE transactions t SET amount = $1, fee = $2, final_amount = $3,
        transaction_type = $4, status = $5, description = $6, metadata = $7, sender_name = $8,
        receiver_name = $9, sender_email = $10, receiver_email = $11, sender_type = $12, updated_at = NOW()
        FROM wallets w
        WHERE w.id = t.wallet_id AND t.id = $13 AND w.account_id = $14 AND t.is_active
        RETURNING t.updated_at`,
		txn.Amount, txn.Fee, txn.FinalAmount, txn.TransactionType, txn.Status, txn.Description,
		txn.Metadata, txn.SenderName, txn.ReceiverName, txn.SenderEmail, txn.ReceiverEmail,
		txn.SenderType, txn.ID, txn.AccountID)
	if err := row.Scan(&txn.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errTransactionNotFound
		}
		return err
	}
	txn.UpdatedAt = txn.UpdatedAt.UTC()
	return nil
}

// Deactivate soft-deletes an active transaction owned by accountID.
func (s *PostgresStore) Deactivate(ctx context.Context, accountID, id int64) error {
	cmd, err := s.db.Exec(ctx, `UPDATE transactions t SET is_active = FALSE, updated_at = NOW()
        FROM wallets w
        WHERE w.id = t.wallet_id AND t.id = $1 AND w.account_id = $2 AND t.is_active`, id, accountID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return errTransactionNotFound
	}
	return nil
}

func (s *PostgresStore) findOne(ctx context.Context, query string, args ...any) (Transaction, error) {
	t, err := scanTransaction(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, errTransactionNotFound
		}
		return Transaction{}, err
	}
	return t, nil
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]Transaction, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txns := []Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func scanTransaction(row pgx.Row) (Transaction, error) {
	var (
		t        Transaction
		metadata []byte
	)
	err := row.Scan(&t.ID, &t.TransactionID, &t.WalletID, &t.AccountID, &t.Amount, &t.Fee,
		&t.FinalAmount, &t.TransactionType, &t.Status, &t.Description, &metadata, &t.SenderName,
		&t.ReceiverName, &t.SenderEmail, &t.ReceiverEmail, &t.SenderType, &t.IsActive,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return Transaction{}, err
	}
	// jsonb is decoded here rather than by pgx so numbers keep their exact text.
	t.Metadata = map[string]any{}
	if len(metadata) > 0 {
		if t.Metadata, err = payload.DecodeObject(metadata); err != nil {
			return Transaction{}, fmt.Errorf("decode metadata of transaction %d: %w", t.ID, err)
		}
		if t.Metadata == nil {
			t.Metadata = map[string]any{}
		}
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}
