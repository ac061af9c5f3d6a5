package log

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var logger = logrus.New()

func init() {
	logger.Formatter = &logrus.TextFormatter{
		TimestampFormat: time.RFC3339,
		FullTimestamp:   true,
		DisableColors:   false,
		ForceColors:     true,
	}
}

func Print(c *fiber.Ctx) *logrus.Entry {
	if c == nil {
		return logger.WithFields(logrus.Fields{})
	}

	remoteIP := c.IP()
	if v := c.Locals("remote_ip"); v != nil {
		if ip, ok := v.(string); ok && ip != "" {
			remoteIP = ip
		}
	}
	return logger.WithFields(logrus.Fields{
		"remote_ip": remoteIP,
		"method":    c.Method(),
		"uri":       c.OriginalURL(),
	})
}

// SessionOp returns an entry scoped to a session lifecycle operation.
func SessionOp(operation string) *logrus.Entry {
	return logger.WithField("operation", operation)
}

// MessageOp returns an entry scoped to a message send against one target.
func MessageOp(operation string, target string) *logrus.Entry {
	entry := logger.WithField("operation", operation)
	if target != "" {
		entry = entry.WithField("target", target)
	}
	return entry
}
