package identity

import "github.com/gofiber/fiber/v2"

const callerKey = "account"

// SetCaller attaches the resolved account to the request.
func SetCaller(c *fiber.Ctx, account Account) {
	c.Locals(callerKey, account)
}

// CallerFrom returns the account resolved for the request, if any.
func CallerFrom(c *fiber.Ctx) (Account, bool) {
	account, ok := c.Locals(callerKey).(Account)
	return account, ok
}
