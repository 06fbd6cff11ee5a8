package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDReusesOrReplaces(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(RequestIDFrom(c))
	})

	cases := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"absent", "", false},
		{"valid", "req-123", true},
		{"with spaces", "req 123", false},
		{"too long", strings.Repeat("a", maxRequestIDLen+1), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/", nil)
			if tc.incoming != "" {
				req.Header.Set(requestIDHeader, tc.incoming)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			got := resp.Header.Get(requestIDHeader)
			require.NotEmpty(t, got)
			if tc.keep {
				assert.Equal(t, tc.incoming, got)
			} else {
				assert.NotEqual(t, tc.incoming, got)
			}
		})
	}
}
