package identity

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/congo-pay/walletapi/internal/apperr"
	"github.com/congo-pay/walletapi/internal/logging"
)

// Service manages the account lifecycle.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new identity service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{repo: repo, logger: logger}
}

// Register creates an active account. Email and username must be unused by any
// row, including deactivated ones.
func (s *Service) Register(ctx context.Context, p Profile) (Account, error) {
	p.Email = strings.TrimSpace(p.Email)
	p.Username = strings.TrimSpace(p.Username)

	v := apperr.NewValidator()
	v.Check(p.Email != "", "email", apperr.MsgRequired)
	v.Check(p.Username != "", "username", apperr.MsgRequired)
	if p.Email != "" && !validEmail(p.Email) {
		v.Add("email", "Enter a valid email address.")
	}
	if err := v.Err(); err != nil {
		return Account{}, err
	}
	if err := s.checkAvailable(ctx, p.Email, p.Username, 0); err != nil {
		return Account{}, err
	}

	account := Account{
		Email:        p.Email,
		Username:     p.Username,
		PhoneNo:      strings.TrimSpace(p.PhoneNo),
		ProfilePhoto: p.ProfilePhoto,
		FirstName:    strings.TrimSpace(p.FirstName),
		LastName:     strings.TrimSpace(p.LastName),
		DateOfBirth:  p.DateOfBirth,
		IsVerified:   p.IsVerified,
	}
	if err := s.repo.Create(ctx, &account); err != nil {
		return Account{}, err
	}

	s.logger.Info("account registered", slog.Int64("account_id", account.ID))
	return account, nil
}

// Get returns the caller's own account. Any other id is reported as not found.
func (s *Service) Get(ctx context.Context, caller Account, id int64) (Account, error) {
	if caller.ID != id {
		return Account{}, errAccountNotFound
	}
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Account{}, err
	}
	if !account.IsActive {
		return Account{}, errAccountNotFound
	}
	return account, nil
}

// Update applies changes to the caller's own account. Blank email or username
// leave the stored value in place.
func (s *Service) Update(ctx context.Context, caller Account, id int64, ch Changes) (Account, error) {
	account, err := s.Get(ctx, caller, id)
	if err != nil {
		return Account{}, err
	}

	email, username := account.Email, account.Username
	if ch.Email != nil {
		if e := strings.TrimSpace(*ch.Email); e != "" {
			email = e
		}
	}
	if ch.Username != nil {
		if u := strings.TrimSpace(*ch.Username); u != "" {
			username = u
		}
	}
	if email != account.Email && !validEmail(email) {
		return Account{}, apperr.Invalid("email", "Enter a valid email address.")
	}
	checkEmail, checkUsername := "", ""
	if email != account.Email {
		checkEmail = email
	}
	if username != account.Username {
		checkUsername = username
	}
	if err := s.checkAvailable(ctx, checkEmail, checkUsername, account.ID); err != nil {
		return Account{}, err
	}

	account.Email = email
	account.Username = username
	if ch.PhoneNo != nil {
		account.PhoneNo = strings.TrimSpace(*ch.PhoneNo)
	}
	if ch.ProfilePhoto != nil {
		account.ProfilePhoto = *ch.ProfilePhoto
	}
	if ch.FirstName != nil {
		account.FirstName = strings.TrimSpace(*ch.FirstName)
	}
	if ch.LastName != nil {
		account.LastName = strings.TrimSpace(*ch.LastName)
	}
	if ch.DateOfBirth != nil {
		account.DateOfBirth = *ch.DateOfBirth
	}
	if ch.IsVerified != nil {
		account.IsVerified = *ch.IsVerified
	}

	if err := s.repo.Update(ctx, &account); err != nil {
		return Account{}, err
	}
	return account, nil
}

// Deactivate soft-deletes the caller's own account. Tokens already issued for
// it stop resolving immediately.
func (s *Service) Deactivate(ctx context.Context, caller Account, id int64) error {
	if caller.ID != id {
		return errAccountNotFound
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.logger.Info("account deactivated", slog.Int64("account_id", id))
	return nil
}

// FindActiveByEmail looks up an active account by email.
func (s *Service) FindActiveByEmail(ctx context.Context, email string) (Account, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Account{}, apperr.Invalid("email", "email is required")
	}
	return s.repo.FindActiveByEmail(ctx, email)
}

// checkAvailable reports field conflicts for the non-empty email/username.
func (s *Service) checkAvailable(ctx context.Context, email, username string, excludeID int64) error {
	if email != "" {
		taken, err := s.repo.EmailTaken(ctx, email, excludeID)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict("email", msgEmailTaken)
		}
	}
	if username != "" {
		taken, err := s.repo.UsernameTaken(ctx, username, excludeID)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict("username", msgUsernameTaken)
		}
	}
	return nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
