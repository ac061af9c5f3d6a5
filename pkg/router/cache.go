package router

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
)

// HttpCacheInMemory caches GET responses. The pairing and status endpoints
// are excluded: a cached QR code goes stale the moment a new one is issued.
func HttpCacheInMemory(ttl int) fiber.Handler {
	if ttl <= 0 {
		ttl = 5
	}
	return cache.New(cache.Config{
		Next: func(c *fiber.Ctx) bool {
			if c.Method() != fiber.MethodGet {
				return true
			}
			return strings.Contains(c.Path(), "/api/qrcode") || strings.Contains(c.Path(), "/api/status")
		},
		Expiration: time.Duration(ttl) * time.Second,
	})
}
