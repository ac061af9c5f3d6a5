package index

import (
	"github.com/gofiber/fiber/v2"

	"gowa-gateway/pkg/router"
)

// Index
// @Summary     Show Service Metadata and Endpoint Index
// @Description Get the service metadata and the list of available endpoints
// @Tags        Root
// @Produce     json
// @Success     200
// @Router      / [get]
func Index(c *fiber.Ctx) error {
	return router.ResponseSuccessWithData(c, "Go WhatsApp Gateway is running", fiber.Map{
		"name":    "Go WhatsApp Gateway",
		"message": "Single-session WhatsApp HTTP gateway is running",
		"endpoints": fiber.Map{
			"qrcode":       "GET " + router.BaseURL + "/api/qrcode",
			"status":       "GET " + router.BaseURL + "/api/status",
			"sendMessage":  "POST " + router.BaseURL + "/api/send-message",
			"sendBatch":    "POST " + router.BaseURL + "/api/send-batch-message",
			"logout":       "POST " + router.BaseURL + "/api/logout",
			"clearSession": "POST " + router.BaseURL + "/api/clear-session",
		},
	})
}
