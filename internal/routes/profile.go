package routes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/walletapi/internal/apperr"
	"github.com/congo-pay/walletapi/internal/identity"
	"github.com/congo-pay/walletapi/internal/ledger"
	"github.com/congo-pay/walletapi/internal/wallet"
)

type profileView struct {
	Account      identity.View `json:"account"`
	Wallet       *wallet.View  `json:"wallet"`
	Transactions []ledger.View `json:"transactions"`
}

// RegisterProfileRoutes exposes the caller's account together with its active
// wallet and that wallet's transactions.
func RegisterProfileRoutes(r fiber.Router, wallets *wallet.Service, txns *ledger.Service) {
	render := func(c *fiber.Ctx, caller identity.Account) error {
		view := profileView{Account: identity.ToView(caller), Transactions: []ledger.View{}}
		w, err := wallets.Active(c.UserContext(), caller.ID)
		switch {
		case err == nil:
			wv := wallet.ToView(w, caller.Email)
			view.Wallet = &wv
			list, err := txns.ForWallet(c.UserContext(), w.ID)
			if err != nil {
				return err
			}
			view.Transactions = ledger.Views(list)
		case !errors.Is(err, apperr.ErrNotFound):
			return err
		}
		return c.Status(http.StatusOK).JSON(view)
	}

	r.Get("/account/me", func(c *fiber.Ctx) error {
		caller, ok := identity.CallerFrom(c)
		if !ok {
			return apperr.ErrAuthentication
		}
		return render(c, caller)
	})

	// Lookups by any address other than the caller's own are masked as not found.
	r.Get("/account/detail", func(c *fiber.Ctx) error {
		caller, ok := identity.CallerFrom(c)
		if !ok {
			return apperr.ErrAuthentication
		}
		email := strings.TrimSpace(c.Query("email"))
		if email == "" {
			return apperr.Invalid("email", apperr.MsgRequired)
		}
		if email != caller.Email {
			return apperr.NotFound("Account not found.")
		}
		return render(c, caller)
	})
}
