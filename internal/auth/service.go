package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/congo-pay/walletapi/internal/apperr"
	"github.com/congo-pay/walletapi/internal/logging"
)

var errInvalidRefresh = apperr.Authentication("Invalid or expired refresh token")

// Service implements the token exchanges that do not require an access token.
type Service struct {
	codec    *Codec
	accounts Accounts
	logger   *slog.Logger
}

// NewService builds the token service.
func NewService(codec *Codec, accounts Accounts, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{codec: codec, accounts: accounts, logger: logger}
}

// Refresh exchanges a refresh token for a brand-new pair. The account it names
// must still be active.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return TokenPair{}, apperr.Invalid("refresh_token", "refresh_token is required")
	}
	id, ok := s.codec.DecodeRefresh(refreshToken)
	if !ok {
		return TokenPair{}, errInvalidRefresh
	}
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return TokenPair{}, errInvalidRefresh
		}
		return TokenPair{}, err
	}
	if !account.IsActive {
		return TokenPair{}, errInvalidRefresh
	}
	pair, err := s.codec.Issue(account)
	if err != nil {
		return TokenPair{}, err
	}
	s.logger.Info("tokens refreshed", slog.Int64("account_id", account.ID))
	return pair, nil
}

// Existence is the answer to an exists-by-email check.
type Existence struct {
	Exists bool
	Tokens *TokenPair
}

// CheckEmail reports whether an active account uses email and, when it does,
// issues a fresh token pair for it.
func (s *Service) CheckEmail(ctx context.Context, email string) (Existence, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Existence{}, apperr.Invalid("email", "email is required")
	}
	account, err := s.accounts.FindActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Existence{Exists: false}, nil
		}
		return Existence{}, err
	}
	pair, err := s.codec.Issue(account)
	if err != nil {
		return Existence{}, err
	}
	return Existence{Exists: true, Tokens: &pair}, nil
}
