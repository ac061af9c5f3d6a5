package message

import (
	"context"
	"errors"
	"time"

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

// SendMessage
// @Summary     Send a Text Message
// @Description Resolve the recipient and send one text message
// @Tags        Messaging
// @Accept      json
// @Produce     json
// @Success     200
// @Failure     400
// @Failure     500
// @Router      /api/send-message [post]
func SendMessage(c *fiber.Ctx) error {
	if !pkgWhatsApp.IsReady() {
		log.Print(c).Warn("Send rejected: session not ready")
		return router.ResponseBadRequest(c, "WhatsApp is not ready, scan the QR code first")
	}

	var reqSend typGateway.RequestSendMessage
	if err := c.BodyParser(&reqSend); err != nil {
		log.Print(c).Warn("Failed to parse body request")
		return router.ResponseBadRequest(c, "Failed parse body request")
	}

	if reqSend.Number == "" || reqSend.Message == "" {
		return router.ResponseBadRequest(c, "number and message are required")
	}

	ctx := requestContext(c)

	target := pkgWhatsApp.NewResolver().Resolve(ctx, reqSend.Number)
	if target.Failed() {
		log.MessageOp("SendMessage", reqSend.Number).Warn(target.ResolutionError)
		return router.ResponseBadRequest(c, target.ResolutionError)
	}

	messageID, err := pkgWhatsApp.SendText(ctx, target.CanonicalID, reqSend.Message)
	if err != nil {
		log.MessageOp("SendMessage", target.CanonicalID).WithError(err).Error("Failed to send message")
		return router.ResponseInternalError(c, err.Error())
	}

	log.MessageOp("SendMessage", target.CanonicalID).WithField("message_id", messageID).Info("Message sent successfully")

	return c.Status(fiber.StatusOK).JSON(typGateway.ResponseSendMessage{
		Success:   true,
		Message:   "Message sent successfully",
		MessageID: messageID,
		To:        target.CanonicalID,
	})
}

// SendBatchMessage
// @Summary     Send a Batch of Text Messages
// @Description Sequentially send messages to many recipients with pacing
// @Tags        Messaging
// @Accept      json
// @Produce     json
// @Success     200
// @Failure     400
// @Router      /api/send-batch-message [post]
func SendBatchMessage(c *fiber.Ctx) error {
	if !pkgWhatsApp.IsReady() {
		log.Print(c).Warn("Batch rejected: session not ready")
		return router.ResponseBadRequest(c, "WhatsApp is not ready, scan the QR code first")
	}

	var reqBatch typGateway.RequestSendBatchMessage
	if err := c.BodyParser(&reqBatch); err != nil {
		log.Print(c).Warn("Failed to parse body request")
		return router.ResponseBadRequest(c, "Failed parse body request")
	}

	items, err := pkgWhatsApp.NormalizeRecipients(reqBatch.Recipients, reqBatch.Message)
	if err != nil {
		return router.ResponseBadRequest(c, err.Error())
	}

	delay := pkgWhatsApp.BatchDelayDefault
	if reqBatch.Delay != nil {
		delay = time.Duration(*reqBatch.Delay) * time.Millisecond
	}

	job := &pkgWhatsApp.BatchJob{Items: items, Delay: delay}

	log.Print(c).WithField("total", len(items)).Info("Dispatching batch")

	if err := pkgWhatsApp.NewDispatcher().Dispatch(requestContext(c), job, pkgWhatsApp.IsReady); err != nil {
		if errors.Is(err, pkgWhatsApp.ErrNotReady) || errors.Is(err, pkgWhatsApp.ErrEmptyBatch) {
			return router.ResponseBadRequest(c, err.Error())
		}
		return router.ResponseInternalError(c, err.Error())
	}

	sent := job.SentCount()
	log.Print(c).
		WithField("total", len(job.Results)).
		WithField("sent", sent).
		WithField("failed", job.FailedCount()).
		Info("Batch dispatch complete")

	return c.Status(fiber.StatusOK).JSON(typGateway.ResponseSendBatchMessage{
		Success: true,
		Total:   len(job.Results),
		Sent:    sent,
		Failed:  job.FailedCount(),
		Results: job.Results,
	})
}
