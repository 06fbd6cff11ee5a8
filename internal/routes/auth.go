package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/walletapi/internal/auth"
)

// RegisterAuthRoutes wires the token-issuing endpoints behind their rate limiters.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, existsLimiter, refreshLimiter fiber.Handler) {
	group := r.Group("/account")
	group.Get("/exists", existsLimiter, h.Exists)
	group.Post("/token/refresh", refreshLimiter, h.Refresh)
}
