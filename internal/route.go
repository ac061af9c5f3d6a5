package internal

import (
	"github.com/gofiber/fiber/v2"
	swagger "github.com/gofiber/swagger"

	"gowa-gateway/pkg/router"

	ctlDevice "gowa-gateway/internal/device"
	ctlIndex "gowa-gateway/internal/index"
	ctlMessage "gowa-gateway/internal/message"
)

func Routes(app *fiber.App) {
	// Configure OpenAPI / Swagger
	specURL := router.BaseURL + "/docs/swagger.json"
	swaggerHandler := swagger.New(swagger.Config{
		URL: specURL,
	})

	// Route for Index
	// ---------------------------------------------
	if router.BaseURL == "" {
		app.Get("/", ctlIndex.Index)
	} else {
		app.Get(router.BaseURL, ctlIndex.Index)
		app.Get(router.BaseURL+"/", ctlIndex.Index)
	}

	// Route for OpenAPI / Swagger
	// docs/swagger.json is generated from the handler annotations (swag init)
	// ---------------------------------------------
	app.Get(router.BaseURL+"/docs/swagger.json", func(c *fiber.Ctx) error {
		return c.SendFile("docs/swagger.json")
	})
	app.Get(router.BaseURL+"/docs/*", swaggerHandler)

	// Session routes
	// ---------------------------------------------
	app.Get(router.BaseURL+"/api/qrcode", ctlDevice.GetQRCode)
	app.Get(router.BaseURL+"/api/status", ctlDevice.GetStatus)
	app.Post(router.BaseURL+"/api/logout", ctlDevice.Logout)
	app.Post(router.BaseURL+"/api/clear-session", ctlDevice.ClearSession)

	// Messaging routes
	// ---------------------------------------------
	app.Post(router.BaseURL+"/api/send-message", ctlMessage.SendMessage)
	app.Post(router.BaseURL+"/api/send-batch-message", ctlMessage.SendBatchMessage)
}
