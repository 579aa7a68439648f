// Package dataconnection provides the data connection page: file selection,
// CSV export and the URL and Azure connectors.
package dataconnection

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/bankdash/internal/ui/features/common"
	"github.com/leapstack-labs/bankdash/internal/ui/notifier"
)

// SetupRoutes configures routes for the data connection feature.
func SetupRoutes(router chi.Router, notify *notifier.Notifier, logger *slog.Logger, isDev bool) error {
	handlers := NewHandlers(notify, logger, isDev)

	router.Route(common.DataConnectionPath, func(r chi.Router) {
		r.Get("/", handlers.DataPage)
		r.Get("/updates", handlers.DataUpdates)
		r.Get("/export.csv", handlers.Export)
		r.Post("/files", handlers.SelectFiles)
		r.Post("/llm", handlers.RunLLM)
		r.Post("/url", handlers.ConnectURL)
		r.Post("/azure", handlers.ConnectAzure)
	})

	return nil
}
