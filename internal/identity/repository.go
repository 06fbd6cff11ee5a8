package identity

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
	msgEmailTaken    = "Account with this email already exists."
	msgUsernameTaken = "Account with this username already exists."

	uniqueViolation = "23505"
)

// Repository persists accounts. Uniqueness of email and username spans every
// row, active or not, and must be enforced by the store itself.
type Repository interface {
	Create(ctx context.Context, account *Account) error
	FindByID(ctx context.Context, id int64) (Account, error)
	FindActiveByEmail(ctx context.Context, email string) (Account, error)
	FindActiveByUsername(ctx context.Context, username string) (Account, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error)
	Update(ctx context.Context, account *Account) error
	Deactivate(ctx context.Context, id int64) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id, email, username, phone_no, profile_photo, first_name, last_name,
        date_of_birth, is_verified, is_active, created_at, updated_at`

// Create inserts a new account and fills in its generated id and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, account *Account) error {
	row := r.db.QueryRow(ctx, `INSERT INTO accounts (email, username, phone_no, profile_photo, first_name,
        last_name, date_of_birth, is_verified, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
        RETURNING id, is_active, created_at, updated_at`,
		account.Email, account.Username, account.PhoneNo, account.ProfilePhoto, account.FirstName,
		account.LastName, account.DateOfBirth, account.IsVerified)
	if err := row.Scan(&account.ID, &account.IsActive, &account.CreatedAt, &account.UpdatedAt); err != nil {
		return translate(err)
	}
	account.CreatedAt = account.CreatedAt.UTC()
	account.UpdatedAt = account.UpdatedAt.UTC()
	return nil
}

// FindByID fetches an account by id whatever its active flag.
func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (Account, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

// FindActiveByEmail fetches an active account by exact email.
func (r *PostgresRepository) FindActiveByEmail(ctx context.Context, email string) (Account, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1 AND is_active`, email)
}

// FindActiveByUsername fetches an active account by exact username.
func (r *PostgresRepository) FindActiveByUsername(ctx context.Context, username string) (Account, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = $1 AND is_active`, username)
}

// EmailTaken reports whether any row other than excludeID uses email.
func (r *PostgresRepository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var taken bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1 AND id <> $2)`, email, excludeID).Scan(&taken)
	return taken, err
}

// UsernameTaken reports whether any row other than excludeID uses username.
func (r *PostgresRepository) UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	var taken bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE username = $1 AND id <> $2)`, username, excludeID).Scan(&taken)
	return taken, err
}

// Update stores the mutable profile fields of an active account.
func (r *PostgresRepository) Update(ctx context.Context, account *Account) error {
	row := r.db.QueryRow(ctx, `UPDATE accounts SET email = $1, username = $2, phone_no = $3, profile_photo = $4,
        first_name = $5, last_name = $6, date_of_birth = $7, is_verified = $8, updated_at = NOW()
        WHERE id = $9 AND is_active
        RETURNING updated_at`,
		account.Email, account.Username, account.PhoneNo, account.ProfilePhoto, account.FirstName,
		account.LastName, account.DateOfBirth, account.IsVerified, account.ID)
	if err := row.Scan(&account.UpdatedAt); err != nil {
		return translate(err)
	}
	account.UpdatedAt = account.UpdatedAt.UTC()
	return nil
}

// Deactivate flips the active flag of an active account.
func (r *PostgresRepository) Deactivate(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE accounts SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return errAccountNotFound
	}
	return nil
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (Account, error) {
	var a Account
	err := r.db.QueryRow(ctx, query, arg).Scan(&a.ID, &a.Email, &a.Username, &a.PhoneNo, &a.ProfilePhoto,
		&a.FirstName, &a.LastName, &a.DateOfBirth, &a.IsVerified, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Account{}, translate(err)
	}
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}

var errAccountNotFound = apperr.NotFound("Account not found.")

func translate(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errAccountNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if strings.Contains(pgErr.ConstraintName, "username") {
			return apperr.Conflict("username", msgUsernameTaken)
		}
		return apperr.Conflict("email", msgEmailTaken)
	}
	return err
}
