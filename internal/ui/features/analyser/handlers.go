package analyser

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/bankdash/internal/catalog"
	"github.com/leapstack-labs/bankdash/internal/provider"
	"github.com/leapstack-labs/bankdash/internal/ui/features/common"
	"github.com/leapstack-labs/bankdash/internal/ui/features/common/components"
	"github.com/leapstack-labs/bankdash/internal/ui/notifier"
	"github.com/leapstack-labs/bankdash/internal/ui/session"
	"github.com/starfederation/datastar-go/datastar"
)

// Handlers provides HTTP handlers for the analyser feature.
type Handlers struct {
	notifier *notifier.Notifier
	logger   *slog.Logger
	isDev    bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(notify *notifier.Notifier, logger *slog.Logger, isDev bool) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{notifier: notify, logger: logger, isDev: isDev}
}

// target is the panel a request addresses.
type target struct {
	ws       *session.Workspace
	provider *provider.Provider
	panel    catalog.Panel
}

// resolve looks up the panel named in the URL. It writes a 404 for unknown
// panels and reports false.
func (h *Handlers) resolve(w http.ResponseWriter, r *http.Request) (target, bool) {
	ws, ok := common.Workspace(w, r)
	if !ok {
		return target{}, false
	}
	id := catalog.PanelID(common.PathParam(r, "panel"))
	p, panel, ok := ws.Analyser(id)
	if !ok {
		http.NotFound(w, r)
		return target{}, false
	}
	return target{ws: ws, provider: p, panel: panel}, true
}

func (t target) view(inputErr string) PanelView {
	return PanelView{Panel: t.panel, Snapshot: t.provider.Snapshot(), InputError: inputErr}
}

func (t target) fragment() templ.Component {
	return PanelFragment(t.view(""))
}

// PanelPage renders the full panel page.
func (h *Handlers) PanelPage(w http.ResponseWriter, r *http.Request) {
	t, ok := h.resolve(w, r)
	if !ok {
		return
	}

	path := common.PanelPath(t.panel.ID)
	page := common.PageData{
		Title:      t.panel.Title,
		Nav:        common.BuildNav(t.ws.Catalog(), path),
		UpdatesURL: path + "/updates",
		IsDev:      h.isDev,
	}
	if err := components.Page(page, t.fragment()).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// PanelUpdates is the long-lived SSE endpoint of a panel page. It re-renders
// the panel fragment whenever the session's state changes or the catalog is
// reloaded. Opening the stream refreshes a configured endpoint whose data is
// missing or stale; there is no initial patch otherwise.
func (h *Handlers) PanelUpdates(w http.ResponseWriter, r *http.Request) {
	t, ok := h.resolve(w, r)
	if !ok {
		return
	}

	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe(t.ws.ID)
	defer h.notifier.Unsubscribe(updates)

	ctx := r.Context()

	var wg sync.WaitGroup
	defer wg.Wait()
	if p := t.provider; p.Snapshot().Enabled {
		id := t.panel.ID
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.RefetchIfStale(ctx); err != nil {
				h.logger.Debug("refresh on open failed", "panel", id, "error", err)
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			// The catalog may have been reloaded; pick up the new panel title.
			if panel, ok := t.ws.Catalog().Panel(t.panel.ID); ok {
				t.panel = panel
			}
			if err := sse.PatchElementTempl(t.fragment()); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// Connect enables the panel's remote endpoint and performs the first fetch.
func (h *Handlers) Connect(w http.ResponseWriter, r *http.Request) {
	t, ok := h.resolve(w, r)
	if !ok {
		return
	}

	// Read signals BEFORE creating SSE (SSE consumes the request body)
	var signals ConnectSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.PatchElementTempl(PanelFragment(t.view("Failed to read signals: " + err.Error())))
		return
	}

	sse := datastar.NewSSE(w, r)

	if !t.panel.Interactive {
		_ = sse.ConsoleError(errors.New("panel " + string(t.panel.ID) + " does not accept endpoints"))
		return
	}

	err := common.Follow(r.Context(), sse, h.notifier, t.ws.ID, t.fragment, func(ctx context.Context) error {
		return t.provider.Connect(ctx, signals.Endpoint)
	})
	if err == nil || errors.Is(err, provider.ErrSuperseded) {
		return
	}

	// Fetch failures are part of the snapshot; a rejected endpoint is not.
	if t.provider.Snapshot().Err == nil {
		_ = sse.PatchElementTempl(PanelFragment(t.view(err.Error())))
	}
}

// Disconnect returns the panel to its fallback list.
func (h *Handlers) Disconnect(w http.ResponseWriter, r *http.Request) {
	t, ok := h.resolve(w, r)
	if !ok {
		return
	}

	sse := datastar.NewSSE(w, r)
	t.provider.Disconnect()
	if err := sse.PatchElementTempl(t.fragment()); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// Refresh refetches the panel's endpoint.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	t, ok := h.resolve(w, r)
	if !ok {
		return
	}

	sse := datastar.NewSSE(w, r)
	err := common.Follow(r.Context(), sse, h.notifier, t.ws.ID, t.fragment, t.provider.Refetch)
	if err != nil && !errors.Is(err, provider.ErrSuperseded) {
		h.logger.Debug("refresh failed", "panel", t.panel.ID, "error", err)
	}
}

// OpenModule handles a tile click. The detail document is fetched when the
// panel uses a remote endpoint; it is logged, and failures are not surfaced.
func (h *Handlers) OpenModule(w http.ResponseWriter, r *http.Request) {
	t, ok := h.resolve(w, r)
	if !ok {
		return
	}
	title := common.PathParam(r, "title")

	sse := datastar.NewSSE(w, r)

	h.logger.Info("opening detailed view", "panel", t.panel.ID, "title", title)
	_ = sse.ConsoleLog("Opening detailed view for: " + title)

	if !t.provider.Snapshot().Enabled {
		return
	}

	detail, err := t.provider.FetchDetail(r.Context(), title)
	if err != nil {
		h.logger.Warn("failed to fetch module details", "panel", t.panel.ID, "title", title, "error", err)
		return
	}
	h.logger.Info("module details", "panel", t.panel.ID, "title", title, "detail", string(detail))
	_ = sse.ConsoleLog("Module details: " + string(detail))
}
