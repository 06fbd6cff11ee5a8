package routes

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/walletapi/internal/auth"
	"github.com/congo-pay/walletapi/internal/identity"
	"github.com/congo-pay/walletapi/internal/payload"
)

type registration struct {
	identity.View
	auth.TokenPair
}

// RegisterIdentityRoutes wires account endpoints. Registration answers with
// the new account and a token pair so the caller is signed in at once.
func RegisterIdentityRoutes(r fiber.Router, ids *identity.Service, h *identity.Handler, codec *auth.Codec, logger *slog.Logger) {
	r.Post("/accounts", func(c *fiber.Ctx) error {
		p, err := payload.Parse(c.Body())
		if err != nil {
			return err
		}
		profile, err := identity.ProfileFromPayload(p)
		if err != nil {
			return err
		}
		account, err := ids.Register(c.UserContext(), profile)
		if err != nil {
			return err
		}
		tokens, err := codec.Issue(account)
		if err != nil {
			return err
		}
		logger.Info("identity.register completed",
			slog.Int64("account_id", account.ID),
			slog.Int("status", http.StatusCreated),
		)
		return c.Status(http.StatusCreated).JSON(registration{View: identity.ToView(account), TokenPair: tokens})
	})

	r.Get("/accounts", h.List)
	r.Get("/accounts/:id", h.Get)
	r.Put("/accounts/:id", h.Update)
	r.Patch("/accounts/:id", h.Update)
	r.Delete("/accounts/:id", h.Delete)
}
