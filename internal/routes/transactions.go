package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/walletapi/internal/ledger"
	"github.com/congo-pay/walletapi/internal/payments"
)

// RegisterTransactionRoutes wires transaction endpoints. The two addressed
// creation paths accept anonymous callers and are throttled per IP.
func RegisterTransactionRoutes(r fiber.Router, h *ledger.Handler, p *payments.Handler, anonymousWrites fiber.Handler) {
	r.Post("/transactions", h.Create)
	r.Get("/transactions", h.List)
	r.Post("/transactions/by-address", anonymousWrites, h.CreateByAddress)
	r.Post("/transactions/by-username", anonymousWrites, p.ByUsername)
	r.Get("/transactions/:id", h.Get)
	r.Put("/transactions/:id", h.Update)
	r.Patch("/transactions/:id", h.Update)
	r.Delete("/transactions/:id", h.Delete)
}
