package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/walletapi/internal/ledger"
	"github.com/congo-pay/walletapi/internal/wallet"
)

// RegisterWalletRoutes wires wallet-related endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler, activity *ledger.Handler) {
	r.Post("/wallets", h.Create)
	r.Get("/wallets", h.List)
	r.Get("/wallets/me/activity", activity.Activity)
	r.Get("/wallets/:id", h.Get)
	r.Put("/wallets/:id", h.Update)
	r.Patch("/wallets/:id", h.Update)
	r.Delete("/wallets/:id", h.Delete)
}
