// Package session maps browser sessions to their dashboard workspaces.
//
// Every browser gets a workspace holding the state of each panel it has
// opened: one provider per analyser, the configuration panel and the upload
// card. Workspaces are created on first use and swept once idle.
package session

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/leapstack-labs/bankdash/internal/catalog"
	"github.com/leapstack-labs/bankdash/internal/config"
	"github.com/leapstack-labs/bankdash/internal/connector"
	"github.com/leapstack-labs/bankdash/internal/provider"
	"github.com/leapstack-labs/bankdash/internal/upload"
)

// Config holds what every new workspace is built from.
type Config struct {
	Catalog   *catalog.Live
	Endpoints config.Endpoints
	Client    *http.Client
	StaleTime time.Duration
	MockDelay time.Duration
	Logger    *slog.Logger
	// OnChange is called with the workspace id after any panel state change.
	OnChange func(id string)
}

// Workspace is the panel state of one browser session.
type Workspace struct {
	ID        string
	Connector *connector.Panel
	Upload    *upload.Card

	cfg       Config
	logger    *slog.Logger
	mu        sync.Mutex
	analysers map[catalog.PanelID]*provider.Provider
}

// NewWorkspace builds the workspace of session id.
func NewWorkspace(id string, cfg Config) *Workspace {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.NewLive(nil)
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: config.DefaultHTTPTimeout}
	}
	config.ApplyEndpointDefaults(&cfg.Endpoints)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("session", id)

	ws := &Workspace{
		ID:        id,
		cfg:       cfg,
		logger:    logger,
		analysers: make(map[catalog.PanelID]*provider.Provider),
	}
	ws.Connector = connector.NewPanel(
		connector.NewClient(cfg.Client, cfg.Endpoints.DatabaseTypes, cfg.Endpoints.SaveConnection),
		logger.With("panel", "configuration"),
		ws.changed,
	)
	ws.Upload = upload.New(upload.Config{
		Client:    cfg.Client,
		SourceURL: cfg.Endpoints.ExportSource,
		MockDelay: cfg.MockDelay,
		OnChange:  ws.changed,
		Logger:    logger.With("panel", "data"),
	})
	return ws
}

// Catalog returns the current panel catalog.
func (ws *Workspace) Catalog() *catalog.Catalog {
	return ws.cfg.Catalog.Get()
}

// Analyser returns the provider of a catalog panel, creating it on first use.
// Interactive panels start disconnected with the configured endpoint
// prefilled; the others fetch from their configured endpoint, if any.
func (ws *Workspace) Analyser(id catalog.PanelID) (*provider.Provider, catalog.Panel, bool) {
	panel, ok := ws.Catalog().Panel(id)
	if !ok {
		return nil, catalog.Panel{}, false
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	if p, ok := ws.analysers[id]; ok {
		return p, panel, true
	}

	p := provider.New(provider.Config{
		Client:    ws.cfg.Client,
		StaleTime: ws.cfg.StaleTime,
		Fallback:  ws.cfg.Catalog.FallbackFunc(id),
		OnChange:  ws.changed,
		Logger:    ws.logger.With("panel", string(id)),
	})
	endpoint := ws.cfg.Endpoints.ForPanel(string(id))
	p.Configure(endpoint, !panel.Interactive && endpoint != "")
	ws.analysers[id] = p
	return p, panel, true
}

// Close drops every in-flight analyser request.
func (ws *Workspace) Close() {
	ws.mu.Lock()
	providers := make([]*provider.Provider, 0, len(ws.analysers))
	for _, p := range ws.analysers {
		providers = append(providers, p)
	}
	ws.mu.Unlock()

	for _, p := range providers {
		p.Disconnect()
	}
}

func (ws *Workspace) changed() {
	if ws.cfg.OnChange != nil {
		ws.cfg.OnChange(ws.ID)
	}
}

type workspaceKey struct{}

// WithWorkspace returns a context carrying ws.
func WithWorkspace(ctx context.Context, ws *Workspace) context.Context {
	return context.WithValue(ctx, workspaceKey{}, ws)
}

// FromContext returns the workspace stored by the session middleware.
func FromContext(ctx context.Context) (*Workspace, bool) {
	ws, ok := ctx.Value(workspaceKey{}).(*Workspace)
	return ws, ok && ws != nil
}
