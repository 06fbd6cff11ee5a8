package auth

import (
	"context"
	"strings"

	"github.com/congo-pay/walletapi/internal/identity"
)

const bearerPrefix = "Bearer "

// Accounts is the account lookup the token flows depend on.
type Accounts interface {
	FindByID(ctx context.Context, id int64) (identity.Account, error)
	FindActiveByEmail(ctx context.Context, email string) (identity.Account, error)
}

// Resolver turns an Authorization header into an active account.
type Resolver struct {
	codec    *Codec
	accounts Accounts
}

// NewResolver builds a Resolver.
func NewResolver(codec *Codec, accounts Accounts) *Resolver {
	return &Resolver{codec: codec, accounts: accounts}
}

// Resolve returns the active account named by a "Bearer <token>" header.
// A missing header, a bad token and an inactive account all yield false.
func (r *Resolver) Resolve(ctx context.Context, header string) (identity.Account, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return identity.Account{}, false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return identity.Account{}, false
	}
	id, ok := r.codec.DecodeAccess(token)
	if !ok {
		return identity.Account{}, false
	}
	return r.activeAccount(ctx, id)
}

func (r *Resolver) activeAccount(ctx context.Context, id int64) (identity.Account, bool) {
	account, err := r.accounts.FindByID(ctx, id)
	if err != nil || !account.IsActive {
		return identity.Account{}, false
	}
	return account, true
}
