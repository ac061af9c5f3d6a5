package router

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"gowa-gateway/pkg/log"
)

// RecoveryMiddleware converts panics into structured JSON responses and logs them.
// It must be registered before application routes.
func RecoveryMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				message := fmt.Sprintf("%v", rec)
				log.Print(c).WithField("request_id", c.Locals("request_id")).Error("panic recovered: " + message)
				_ = c.Status(fiber.StatusInternalServerError).JSON(Response{
					Success: false,
					Message: message,
					Error:   message,
				})
			}
		}()
		return c.Next()
	}
}
