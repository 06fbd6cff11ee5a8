package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/walletapi/internal/identity"
)

// KeyFunc picks the subject a rate limit is counted against.
type KeyFunc func(c *fiber.Ctx) string

// ByQuery counts against a lower-cased query parameter, falling back to the
// client IP when it is absent.
func ByQuery(param string) KeyFunc {
	return func(c *fiber.Ctx) string {
		if v := strings.ToLower(strings.TrimSpace(c.Query(param))); v != "" {
			return v
		}
		return c.IP()
	}
}

// ByIP counts against the client IP.
func ByIP(c *fiber.Ctx) string {
	return c.IP()
}

// CredentialRateLimit bounds token-issuing endpoints per subject and minute
// using Redis if available.
func CredentialRateLimit(cache *redis.Client, scope string, maxPerMin int, key KeyFunc) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next() // no-op without Redis
		}
		k := "rl:" + scope + ":" + key(c)
		cnt, err := cache.Incr(c.UserContext(), k).Result()
		if err != nil {
			return c.Next() // fail-open on cache errors
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), k, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many attempts, try again later")
		}
		return c.Next()
	}
}

// AnonymousWriteLimit throttles unauthenticated writes per client IP.
// Authenticated callers are not counted.
func AnonymousWriteLimit(maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 30
	}
	return limiter.New(limiter.Config{
		Max:        maxPerMin,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			_, ok := identity.CallerFrom(c)
			return ok
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(http.StatusTooManyRequests, "too many requests, try again later")
		},
	})
}
