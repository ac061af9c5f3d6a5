package internal

import (
	"context"

	"gowa-gateway/pkg/log"
	pkgWhatsApp "gowa-gateway/pkg/whatsapp"
)

// Startup opens the session datastore and brings up the single client. A
// failed first connect is not fatal: the re-init scheduler keeps retrying
// while the HTTP surface reports the session as not ready.
func Startup() {
	log.Print(nil).Info("Running Startup Tasks")

	ctx := context.Background()

	if err := pkgWhatsApp.InitDatastore(ctx); err != nil {
		log.Print(nil).WithError(err).Fatal("Failed to initialize session datastore")
	}

	if err := pkgWhatsApp.InitClient(ctx); err != nil {
		log.Print(nil).WithError(err).Error("Failed to initialize WhatsApp client, scheduling retry")
		pkgWhatsApp.ScheduleReinit()
	}
}
