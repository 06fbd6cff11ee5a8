// Package auth issues and validates the signed bearer tokens that establish
// identity without server-side session state.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/congo-pay/walletapi/internal/identity"
)

const (
	kindAccess  = "access"
	kindRefresh = "refresh"
)

// TokenPair is the credential pair handed to a client.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type claims struct {
	AccountID int64  `json:"account_id"`
	Email     string `json:"email,omitempty"`
	Type      string `json:"type"`
	jwt.RegisteredClaims
}

// Codec signs and verifies HS256 tokens with a single shared secret. Rotating
// the secret invalidates every outstanding token.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// Option customises a Codec.
type Option func(*Codec)

// WithClock overrides the time source used for issuing and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// NewCodec builds a Codec. The secret must be non-empty and both lifetimes
// positive.
func NewCodec(secret string, accessTTL, refreshTTL time.Duration, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}
	c := &Codec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs a fresh access/refresh pair for account.
func (c *Codec) Issue(account identity.Account) (TokenPair, error) {
	now := c.now().UTC()
	access, err := c.sign(claims{
		AccountID: account.ID,
		Email:     account.Email,
		Type:      kindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
		},
	})
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := c.sign(claims{
		AccountID: account.ID,
		Type:      kindRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.refreshTTL)),
		},
	})
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// DecodeAccess returns the account id carried by a valid access token.
func (c *Codec) DecodeAccess(token string) (int64, bool) {
	return c.decode(token, kindAccess)
}

// DecodeRefresh returns the account id carried by a valid refresh token.
func (c *Codec) DecodeRefresh(token string) (int64, bool) {
	return c.decode(token, kindRefresh)
}

func (c *Codec) sign(cl claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(c.secret)
}

// decode never reports why a token was refused. Expiry is exclusive: a token
// presented at its exp instant is rejected.
func (c *Codec) decode(token, kind string) (int64, bool) {
	if token == "" {
		return 0, false
	}
	var cl claims
	parsed, err := jwt.ParseWithClaims(token, &cl, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return c.now().UTC() }),
	)
	if err != nil || !parsed.Valid {
		return 0, false
	}
	if cl.Type != kind || cl.AccountID <= 0 {
		return 0, false
	}
	return cl.AccountID, true
}
