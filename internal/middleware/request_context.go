package middleware

import (
	"github.com/gofiber/fiber/v2"

	"storefront/pkg/logger"
)

// RequestContext attaches the request id set by fiber's requestid middleware
// to the user context, so services log it with every entry.
func RequestContext(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		if id, ok := c.Locals("requestid").(string); ok && id != "" {
			ctx = log.WithRequestID(ctx, id)
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}
