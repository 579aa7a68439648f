// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	analyserFeature "github.com/leapstack-labs/bankdash/internal/ui/features/analyser"
	configurationFeature "github.com/leapstack-labs/bankdash/internal/ui/features/configuration"
	dataconnectionFeature "github.com/leapstack-labs/bankdash/internal/ui/features/dataconnection"
	homeFeature "github.com/leapstack-labs/bankdash/internal/ui/features/home"
	"github.com/leapstack-labs/bankdash/internal/ui/notifier"
	"github.com/leapstack-labs/bankdash/internal/ui/resources"
	"github.com/leapstack-labs/bankdash/internal/ui/session"
	"github.com/starfederation/datastar-go/datastar"
)

// SetupRoutes configures all routes for the UI server.
// Feature routes run behind the session middleware, which attaches the
// visitor's workspace to the request.
func SetupRoutes(
	router chi.Router,
	registry *session.Registry,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	logger *slog.Logger,
	isDev bool,
) error {
	// Hot reload endpoint for dev mode
	if isDev {
		setupReload(router)
	}

	// Static assets
	router.Handle("/static/*", resources.Handler())

	var setupErr error
	router.Group(func(r chi.Router) {
		r.Use(registry.Middleware(sessionStore))

		for _, setup := range []func(chi.Router, *notifier.Notifier, *slog.Logger, bool) error{
			homeFeature.SetupRoutes,
			configurationFeature.SetupRoutes,
			dataconnectionFeature.SetupRoutes,
			// Catch-all /{panel}; chi matches the static routes above first.
			analyserFeature.SetupRoutes,
		} {
			if err := setup(r, notify, logger, isDev); err != nil {
				setupErr = err
				return
			}
		}
	})

	return setupErr
}

func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
