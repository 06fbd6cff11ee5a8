package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialRateLimitCountsPerSubject(t *testing.T) {
	cache := newRedis(t)
	app := fiber.New()
	app.Get("/exists", CredentialRateLimit(cache, "exists", 2, ByQuery("email")), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	get := func(email string) int {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/exists?email="+email, nil))
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusOK, get("alice@example.com"))
	assert.Equal(t, fiber.StatusOK, get("ALICE@example.com"))
	assert.Equal(t, fiber.StatusTooManyRequests, get("alice@example.com"))
	assert.Equal(t, fiber.StatusOK, get("bob@example.com"))
}

func TestCredentialRateLimitWithoutCache(t *testing.T) {
	app := fiber.New()
	app.Post("/refresh", CredentialRateLimit(nil, "refresh", 1, ByIP), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/refresh", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}

func TestAnonymousWriteLimitSkipsAuthenticatedCallers(t *testing.T) {
	app := fiber.New()
	app.Use(asAccount)
	app.Post("/write", AnonymousWriteLimit(1), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	send := func(account string) int {
		req := httptest.NewRequest(fiber.MethodPost, "/write", nil)
		if account != "" {
			req.Header.Set(testAccountHeader, account)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusCreated, send(""))
	assert.Equal(t, fiber.StatusTooManyRequests, send(""))
	assert.Equal(t, fiber.StatusCreated, send("3"))
	assert.Equal(t, fiber.StatusCreated, send("3"))
}
