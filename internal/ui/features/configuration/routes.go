// Package configuration provides the data connection configuration page:
// the sidebar sections and the database connection form.
package configuration

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/bankdash/internal/ui/features/common"
	"github.com/leapstack-labs/bankdash/internal/ui/notifier"
)

// SetupRoutes configures routes for the configuration feature.
func SetupRoutes(router chi.Router, notify *notifier.Notifier, logger *slog.Logger, isDev bool) error {
	handlers := NewHandlers(notify, logger, isDev)

	router.Route(common.ConfigurationPath, func(r chi.Router) {
		r.Get("/", handlers.ConfigurationPage)
		r.Get("/updates", handlers.ConfigurationUpdates)
		r.Get("/types", handlers.LoadTypes)
		r.Post("/submit", handlers.Submit)
		r.Post("/reconnect", handlers.Reconnect)
		r.Post("/refresh", handlers.Refresh)
		r.Post("/message/close", handlers.CloseMessage)
		r.Post("/section/{name}", handlers.SelectSection)
	})

	return nil
}
