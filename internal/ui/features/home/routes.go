package home

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/bankdash/internal/ui/notifier"
)

// SetupRoutes configures routes for the home feature.
func SetupRoutes(router chi.Router, notify *notifier.Notifier, logger *slog.Logger, isDev bool) error {
	handlers := NewHandlers(notify, logger, isDev)

	router.Get("/", handlers.HomePage)
	router.Get("/updates", handlers.HomePageUpdates)

	return nil
}
