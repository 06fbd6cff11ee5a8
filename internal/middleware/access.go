package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/walletapi/internal/apperr"
	"github.com/congo-pay/walletapi/internal/identity"
)

// Policy lists the routes anonymous callers may reach. Every other route
// requires a resolved identity.
type Policy struct {
	public map[string]struct{}
}

// NewPolicy returns an empty policy; everything requires identity until
// routes are allowed.
func NewPolicy() *Policy {
	return &Policy{public: map[string]struct{}{}}
}

// Allow opens method+path to anonymous callers. Paths are matched exactly,
// ignoring a trailing slash.
func (p *Policy) Allow(method, path string) *Policy {
	p.public[routeKey(method, path)] = struct{}{}
	return p
}

// Public reports whether method+path is open to anonymous callers.
func (p *Policy) Public(method, path string) bool {
	_, ok := p.public[routeKey(method, path)]
	return ok
}

// Enforce rejects anonymous requests to routes outside the allow-list.
func Enforce(p *Policy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions {
			return c.Next()
		}
		if _, ok := identity.CallerFrom(c); ok {
			return c.Next()
		}
		if p.Public(c.Method(), c.Path()) {
			return c.Next()
		}
		return apperr.ErrAuthentication
	}
}

func routeKey(method, path string) string {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return strings.ToUpper(method) + " " + path
}
