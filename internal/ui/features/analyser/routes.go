// Package analyser provides the analyser panel pages (compliance, dormant and
// any panel added by the catalog file).
package analyser

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/bankdash/internal/ui/notifier"
)

// SetupRoutes configures routes for the analyser feature.
// Static routes registered elsewhere take precedence over the panel pattern.
func SetupRoutes(router chi.Router, notify *notifier.Notifier, logger *slog.Logger, isDev bool) error {
	handlers := NewHandlers(notify, logger, isDev)

	router.Route("/{panel}", func(r chi.Router) {
		r.Get("/", handlers.PanelPage)
		r.Get("/updates", handlers.PanelUpdates)
		r.Post("/connect", handlers.Connect)
		r.Post("/disconnect", handlers.Disconnect)
		r.Post("/refresh", handlers.Refresh)
		r.Post("/modules/{title}", handlers.OpenModule)
	})

	return nil
}
