package device

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	typGateway "gowa-gateway/internal/types"
	"gowa-gateway/pkg/log"
	"gowa-gateway/pkg/router"
	pkgWhatsApp "gowa-gateway/pkg/whatsapp"
)

func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx
}

// statusMessage maps a lifecycle phase to the human-readable status text.
func statusMessage(phase pkgWhatsApp.Phase) string {
	switch phase {
	case pkgWhatsApp.PhaseUninitialized:
		return "WhatsApp client is initializing"
	case pkgWhatsApp.PhaseAwaitingPairing:
		return "Scan the QR code with WhatsApp on your phone"
	case pkgWhatsApp.PhaseAuthenticated:
		return "WhatsApp is authenticated, waiting for connection"
	case pkgWhatsApp.PhaseReady:
		return "WhatsApp is connected and ready"
	case pkgWhatsApp.PhaseDisconnected:
		return "WhatsApp is disconnected"
	case pkgWhatsApp.PhaseAuthFailed:
		return "WhatsApp authentication failed"
	default:
		return "Unknown state"
	}
}

// acceptsJSON reports whether the caller asked for a JSON rendering of the
// QR code instead of raw image bytes.
func acceptsJSON(c *fiber.Ctx) bool {
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON)
}

// GetQRCode
// @Summary     Get Pairing QR Code
// @Description Get the pairing QR code as JSON data URL or raw PNG bytes
// @Tags        Session
// @Produce     json,png
// @Success     200
// @Failure     404
// @Router      /api/qrcode [get]
func GetQRCode(c *fiber.Ctx) error {
	snapshot := pkgWhatsApp.GetState()

	if snapshot.Connected() {
		return c.Status(fiber.StatusOK).JSON(typGateway.ResponseQRCode{
			Status:    "connected",
			Connected: true,
			Message:   "WhatsApp is already connected",
		})
	}

	if snapshot.HasQRCode() {
		if acceptsJSON(c) {
			return c.Status(fiber.StatusOK).JSON(typGateway.ResponseQRCode{
				QRCode:    snapshot.QRDataURL(),
				Status:    "ready",
				Connected: false,
				Message:   "Scan the QR code with WhatsApp on your phone",
			})
		}
		c.Set(fiber.HeaderContentType, "image/png")
		return c.Status(fiber.StatusOK).Send(snapshot.QRImage)
	}

	return c.Status(fiber.StatusNotFound).JSON(typGateway.ResponseQRCode{
		Status:    "not_ready",
		Connected: false,
		Message:   "QR code not generated yet, try again shortly",
	})
}

// GetStatus
// @Summary     Get Connection Status
// @Description Get the session phase, connection flag and QR availability
// @Tags        Session
// @Produce     json
// @Success     200
// @Router      /api/status [get]
func GetStatus(c *fiber.Ctx) error {
	snapshot := pkgWhatsApp.GetState()

	return c.Status(fiber.StatusOK).JSON(typGateway.ResponseStatus{
		Status:    string(snapshot.Phase),
		Connected: snapshot.Connected(),
		Message:   statusMessage(snapshot.Phase),
		HasQRCode: snapshot.HasQRCode(),
	})
}

// Logout
// @Summary     Logout
// @Description Sign the device out of WhatsApp and re-arm for a new pairing
// @Tags        Session
// @Produce     json
// @Success     200
// @Failure     500
// @Router      /api/logout [post]
func Logout(c *fiber.Ctx) error {
	log.Print(c).Info("Logout requested")

	if err := pkgWhatsApp.Logout(requestContext(c)); err != nil {
		log.Print(c).WithError(err).Error("Logout failed")
		return router.ResponseInternalError(c, err.Error())
	}

	return router.ResponseSuccess(c, "Logged out successfully, a new QR code will be generated")
}

// ClearSession
// @Summary     Clear Session
// @Description Tear down the connection and purge persisted session data
// @Tags        Session
// @Produce     json
// @Success     200
// @Failure     500
// @Router      /api/clear-session [post]
func ClearSession(c *fiber.Ctx) error {
	log.Print(c).Info("Clear session requested")

	if err := pkgWhatsApp.ClearSession(requestContext(c)); err != nil {
		log.Print(c).WithError(err).Error("Clear session failed")
		return router.ResponseInternalError(c, err.Error())
	}

	return router.ResponseSuccess(c, "Session cleared, a new QR code will be generated")
}
