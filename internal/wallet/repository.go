package wallet

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/congo-pay/walletapi/internal/apperr"
)

const (
	msgAddressTaken = "Wallet with this address already exists."
	msgActiveWallet = "This account already has an active wallet."

	uniqueViolation = "23505"
)

var errWalletNotFound = apperr.NotFound("Wallet not found.")

// Repository persists wallets. Every owner-facing read and write is scoped by
// account id; a wallet owned by someone else is indistinguishable from a
// missing one.
type Repository interface {
	Create(ctx context.Context, wallet *Wallet) error
	GetForAccount(ctx context.Context, accountID, id int64) (Wallet, error)
	ActiveForAccount(ctx context.Context, accountID int64) (Wallet, error)
	ActiveByAddress(ctx context.Context, address string) (Wallet, error)
	ListForAccount(ctx context.Context, accountID int64) ([]Wallet, error)
	AddressTaken(ctx context.Context, address string, excludeID int64) (bool, error)
	Update(ctx context.Context, wallet *Wallet) error
	Deactivate(ctx context.Context, accountID, id int64) error
}

// PostgresRepository stores wallets in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const walletColumns = `id, account_id, address, wallet_type, balance, is_active, created_at, updated_at`

// Create inserts a wallet. The address and one-active-wallet-per-account
// unique indexes are the final arbiters of conflicts.
func (r *PostgresRepository) Create(ctx context.Context, wallet *Wallet) error {
	row := r.db.QueryRow(ctx, `INSERT INTO wallets (account_id, address, wallet_type, balance, is_active)
        VALUES ($1, $2, $3, $4, TRUE)
        RETURNING id, is_active, created_at, updated_at`,
		wallet.AccountID, wallet.Address, wallet.WalletType, wallet.Balance)
	if err := row.Scan(&wallet.ID, &wallet.IsActive, &wallet.CreatedAt, &wallet.UpdatedAt); err != nil {
		return translate(err)
	}
	wallet.CreatedAt = wallet.CreatedAt.UTC()
	wallet.UpdatedAt = wallet.UpdatedAt.UTC()
	return nil
}

// GetForAccount fetches an active wallet owned by accountID.
func (r *PostgresRepository) GetForAccount(ctx context.Context, accountID, id int64) (Wallet, error) {
	return r.findOne(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = $1 AND account_id = $2 AND is_active`, id, accountID)
}

// ActiveForAccount fetches the account's active wallet.
func (r *PostgresRepository) ActiveForAccount(ctx context.Context, accountID int64) (Wallet, error) {
	return r.findOne(ctx, `SELECT `+walletColumns+` FROM wallets WHERE account_id = $1 AND is_active`, accountID)
}

// ActiveByAddress fetches an active wallet by exact address.
func (r *PostgresRepository) ActiveByAddress(ctx context.Context, address string) (Wallet, error) {
	return r.findOne(ctx, `SELECT `+walletColumns+` FROM wallets WHERE address = $1 AND is_active`, address)
}

// ListForAccount returns the account's active wallets, newest first.
func (r *PostgresRepository) ListForAccount(ctx context.Context, accountID int64) ([]Wallet, error) {
	rows, err := r.db.Query(ctx, `SELECT `+walletColumns+` FROM wallets
        WHERE account_id = $1 AND is_active ORDER BY created_at DESC, id DESC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	wallets := []Wallet{}
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

// AddressTaken reports whether any wallet other than excludeID, active or not,
// uses address.
func (r *PostgresRepository) AddressTaken(ctx context.Context, address string, excludeID int64) (bool, error) {
	var taken bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM wallets WHERE address = $1 AND id <> $2)`, address, excludeID).Scan(&taken)
	return taken, err
}

// Update stores address and wallet_type. Balance is never written here.
func (r *PostgresRepository) Update(ctx context.Context, wallet *Wallet) error {
	row := r.db.QueryRow(ctx, `UPDATE wallets SET address = $1, wallet_type = $2, updated_at = NOW()
        WHERE id = $3 AND account_id = $4 AND is_active
        RETURNING updated_at`,
		wallet.Address, wallet.WalletType, wallet.ID, wallet.AccountID)
	if err := row.Scan(&wallet.UpdatedAt); err != nil {
		return translate(err)
	}
	wallet.UpdatedAt = wallet.UpdatedAt.UTC()
	return nil
}

// Deactivate soft-deletes an active wallet owned by accountID.
func (r *PostgresRepository) Deactivate(ctx context.Context, accountID, id int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE wallets SET is_active = FALSE, updated_at = NOW()
        WHERE id = $1 AND account_id = $2 AND is_active`, id, accountID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return errWalletNotFound
	}
	return nil
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, args ...any) (Wallet, error) {
	w, err := scanWallet(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return Wallet{}, translate(err)
	}
	return w, nil
}

func scanWallet(row pgx.Row) (Wallet, error) {
	var w Wallet
	if err := row.Scan(&w.ID, &w.AccountID, &w.Address, &w.WalletType, &w.Balance, &w.IsActive, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return Wallet{}, err
	}
	w.CreatedAt = w.CreatedAt.UTC()
	w.UpdatedAt = w.UpdatedAt.UTC()
	return w, nil
}

func translate(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errWalletNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if strings.Contains(pgErr.ConstraintName, "address") {
			return apperr.Conflict("address", msgAddressTaken)
		}
		return apperr.Conflict("account", msgActiveWallet)
	}
	return err
}
