// Package ui provides the banking compliance web dashboard.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/bankdash/internal/catalog"
	"github.com/leapstack-labs/bankdash/internal/config"
	"github.com/leapstack-labs/bankdash/internal/ui/notifier"
	"github.com/leapstack-labs/bankdash/internal/ui/router"
	"github.com/leapstack-labs/bankdash/internal/ui/session"
	"golang.org/x/sync/errgroup"
)

// sweepInterval is how often idle session workspaces are expired.
const sweepInterval = time.Minute

// Server is the main UI server.
type Server struct {
	live         *catalog.Live
	catalogFile  string
	registry     *session.Registry
	sessionStore *sessions.CookieStore
	port         int
	dev          bool
	logger       *slog.Logger
	notifier     *notifier.Notifier
}

// Config holds configuration for the UI server.
type Config struct {
	// CatalogFile optionally overlays the built-in panels. It is watched for
	// changes while the server runs.
	CatalogFile   string
	Endpoints     config.Endpoints
	HTTPTimeout   time.Duration
	StaleTime     time.Duration
	SessionTTL    time.Duration
	MockDelay     time.Duration
	Port          int
	SessionSecret string
	Dev           bool
	Logger        *slog.Logger
}

// NewServer creates a new UI server instance. It fails when the catalog file
// cannot be loaded.
func NewServer(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cat := catalog.Default()
	if cfg.CatalogFile != "" {
		loaded, err := catalog.LoadFile(cfg.CatalogFile, cat)
		if err != nil {
			return nil, err
		}
		cat = loaded
	}

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = config.DefaultHTTPTimeout
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = config.DefaultSessionTTL
	}

	n := notifier.New()
	live := catalog.NewLive(cat)
	registry := session.NewRegistry(session.Config{
		Catalog:   live,
		Endpoints: cfg.Endpoints,
		Client:    &http.Client{Timeout: timeout},
		StaleTime: cfg.StaleTime,
		MockDelay: cfg.MockDelay,
		Logger:    logger,
		OnChange:  n.Notify,
	}, ttl)

	return &Server{
		live:         live,
		catalogFile:  cfg.CatalogFile,
		registry:     registry,
		sessionStore: sessionStore,
		port:         cfg.Port,
		dev:          cfg.Dev,
		logger:       logger,
		notifier:     n,
	}, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	if err := router.SetupRoutes(r, s.registry, s.sessionStore, s.notifier, s.logger, s.IsDev()); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.port, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on an existing listener until ctx is cancelled. The
// catalog watcher and the session sweeper run alongside the HTTP server.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	handler, err := s.Handler()
	if err != nil {
		_ = ln.Close()
		return err
	}

	s.logger.Info("starting UI server", "addr", "http://"+ln.Addr().String())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.catalogFile != "" {
		eg.Go(func() error {
			return catalog.Watch(egctx, s.catalogFile, s.live, s.logger, func(*catalog.Catalog) {
				s.notifier.Broadcast()
			})
		})
	}

	eg.Go(func() error {
		return s.registry.Run(egctx, sweepInterval)
	})

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// IsDev reports whether the live-reload endpoints are enabled.
func (s *Server) IsDev() bool {
	return s.dev
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// Catalog returns the panel catalog currently served.
func (s *Server) Catalog() *catalog.Catalog {
	return s.live.Get()
}
