// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/bankdash/internal/backend"
	"github.com/leapstack-labs/bankdash/internal/catalog"
	"github.com/leapstack-labs/bankdash/internal/config"
	"github.com/leapstack-labs/bankdash/internal/state"
	"github.com/leapstack-labs/bankdash/internal/testutil"
	"github.com/leapstack-labs/bankdash/internal/ui/notifier"
	"github.com/leapstack-labs/bankdash/internal/ui/session"
)

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
	Registry     *session.Registry
	Workspace    *session.Workspace
	Catalog      *catalog.Live
	// Backend serves the module, type list, save and export APIs.
	Backend   *httptest.Server
	Endpoints config.Endpoints
}

// FixtureOption adjusts the workspace configuration of a fixture.
type FixtureOption func(*session.Config)

// WithEndpoints overrides the endpoints derived from the test backend.
func WithEndpoints(fn func(base string, e *config.Endpoints)) FixtureOption {
	return func(cfg *session.Config) {
		base := strings.TrimSuffix(cfg.Endpoints.DatabaseTypes, "/db/databases")
		fn(base, &cfg.Endpoints)
	}
}

// SetupTestFixture starts an in-memory backend and builds a workspace whose
// endpoints point at it. The compliance panel is wired to the backend; the
// dormant panel starts disconnected, as in production.
func SetupTestFixture(t *testing.T, opts ...FixtureOption) *TestFixture {
	t.Helper()

	logger := testutil.NewTestLogger(t)
	ctx := context.Background()

	store := state.NewSQLiteStore()
	require.NoError(t, store.Open(ctx, ":memory:"))
	require.NoError(t, store.Migrate(ctx))
	t.Cleanup(func() { _ = store.Close() })

	srv := httptest.NewServer(backend.NewServer(backend.Config{Store: store, Logger: logger}).Handler())
	t.Cleanup(srv.Close)

	endpoints := config.Endpoints{
		Compliance:     srv.URL + "/api/compliance",
		DatabaseTypes:  srv.URL + "/db/databases",
		SaveConnection: srv.URL + "/db/connections/save",
		ExportSource:   srv.URL + "/api/data",
	}

	n := notifier.New()
	live := catalog.NewLive(nil)
	cfg := session.Config{
		Catalog:   live,
		Endpoints: endpoints,
		Client:    srv.Client(),
		Logger:    logger,
		OnChange:  n.Notify,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	registry := session.NewRegistry(cfg, time.Hour)

	return &TestFixture{
		Notifier:     n,
		SessionStore: NewTestSessionStore(),
		Registry:     registry,
		Workspace:    registry.Get("test-session"),
		Catalog:      live,
		Backend:      srv,
		Endpoints:    cfg.Endpoints,
	}
}

// Request builds a request carrying the fixture workspace. A non-empty body
// is sent as datastar signals.
func (f *TestFixture) Request(method, target, body string) *http.Request {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(session.WithWorkspace(req.Context(), f.Workspace))
}

// RequestWithPathParam wraps a request with chi URL params.
// Params are given as key/value pairs.
func RequestWithPathParam(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// RequestWithTimeout wraps a request with a context timeout.
func RequestWithTimeout(r *http.Request, timeout time.Duration) *http.Request {
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	_ = cancel // the timeout releases the context
	return r.WithContext(ctx)
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}
