package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"gowa-gateway/pkg/log"
)

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func logSuccess(c *fiber.Ctx, code int, message string) {
	statusMessage := http.StatusText(code)

	if statusMessage == message || c.OriginalURL() == BaseURL {
		log.Print(c).Info(fmt.Sprintf("%d %v", code, statusMessage))
	} else {
		log.Print(c).Info(fmt.Sprintf("%d %v", code, message))
	}
}

func logError(c *fiber.Ctx, code int, message string) {
	statusMessage := http.StatusText(code)

	if statusMessage == message {
		log.Print(c).Error(fmt.Sprintf("%d %v", code, statusMessage))
	} else {
		log.Print(c).Error(fmt.Sprintf("%d %v", code, message))
	}
}

func ResponseSuccess(c *fiber.Ctx, message string) error {
	if strings.TrimSpace(message) == "" {
		message = http.StatusText(http.StatusOK)
	}

	logSuccess(c, http.StatusOK, message)
	return c.Status(http.StatusOK).JSON(Response{
		Success: true,
		Message: message,
	})
}

// ResponseSuccessWithData merges the standard envelope with handler-specific
// payload fields, keeping the body flat as the API contract requires.
func ResponseSuccessWithData(c *fiber.Ctx, message string, data interface{}) error {
	logSuccess(c, http.StatusOK, message)
	return c.Status(http.StatusOK).JSON(data)
}

func ResponseNoContent(c *fiber.Ctx) error {
	return c.SendStatus(http.StatusNoContent)
}

func ResponseNotFound(c *fiber.Ctx, message string) error {
	return responseError(c, http.StatusNotFound, message)
}

func ResponseBadRequest(c *fiber.Ctx, message string) error {
	return responseError(c, http.StatusBadRequest, message)
}

func ResponseInternalError(c *fiber.Ctx, message string) error {
	return responseError(c, http.StatusInternalServerError, message)
}

func responseError(c *fiber.Ctx, code int, message string) error {
	if strings.TrimSpace(message) == "" {
		message = http.StatusText(code)
	}

	logError(c, code, message)
	return c.Status(code).JSON(Response{
		Success: false,
		Message: message,
		Error:   message,
	})
}
