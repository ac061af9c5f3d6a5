package internal

import (
	"github.com/robfig/cron/v3"

	"gowa-gateway/pkg/env"
	"gowa-gateway/pkg/log"
	pkgWhatsApp "gowa-gateway/pkg/whatsapp"
)

// Routines registers the periodic session health watchdog. whatsmeow's
// event handlers catch most disconnects, but a silently dead socket can
// leave the phase stuck at ready; the watchdog reconciles it.
func Routines(cron *cron.Cron) {
	log.Print(nil).Info("Running Routine Tasks")

	if !env.GetEnvBoolOrDefault("WHATSAPP_ENABLE_HEALTH_CHECK_CRON", true) {
		log.Print(nil).Info("Health check cron disabled; relying on whatsmeow event handlers")
		cron.Start()
		return
	}

	_, err := cron.AddFunc("0 */5 * * * *", pkgWhatsApp.HealthCheck)
	if err != nil {
		log.Print(nil).WithError(err).Error("Failed to add health check cron job")
	}

	cron.Start()
}
