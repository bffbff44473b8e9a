package middleware

import (
	"github.com/gofiber/fiber/v3"
)

// IdentityHeader is set by the gateway after authenticating the caller;
// authentication itself happens outside this service.
const IdentityHeader = "X-User-ID"

// RequireIdentity rejects requests that reach the service without an
// authenticated caller identity.
func RequireIdentity() fiber.Handler {
	return func(c fiber.Ctx) error {
		if c.Get(IdentityHeader) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "User not authenticated",
			})
		}
		return c.Next()
	}
}
