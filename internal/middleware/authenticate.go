package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/walletapi/internal/auth"
	"github.com/congo-pay/walletapi/internal/identity"
)

// Authenticate resolves the Authorization header into the calling account.
// It never rejects a request: unresolved callers continue anonymously and
// Enforce decides whether that is allowed.
func Authenticate(resolver *auth.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if account, ok := resolver.Resolve(c.UserContext(), c.Get(fiber.HeaderAuthorization)); ok {
			identity.SetCaller(c, account)
		}
		return c.Next()
	}
}
