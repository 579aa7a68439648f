package home

import (
	"log/slog"
	"net/http"

	"github.com/leapstack-labs/bankdash/internal/ui/features/common"
	"github.com/leapstack-labs/bankdash/internal/ui/features/common/components"
	"github.com/leapstack-labs/bankdash/internal/ui/notifier"
	"github.com/leapstack-labs/bankdash/internal/ui/session"
	"github.com/starfederation/datastar-go/datastar"
)

// Handlers provides HTTP handlers for the home feature.
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

// HomePage renders the home page with full content.
func (h *Handlers) HomePage(w http.ResponseWriter, r *http.Request) {
	ws, ok := common.Workspace(w, r)
	if !ok {
		return
	}

	page := common.PageData{
		Title:      Title,
		Nav:        common.BuildNav(ws.Catalog(), "/"),
		UpdatesURL: "/updates",
		IsDev:      h.isDev,
	}
	if err := components.Page(page, Fragment(summaries(ws))).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HomePageUpdates is the long-lived SSE endpoint for the landing page.
// It does NOT send initial state; that is rendered by HomePage.
func (h *Handlers) HomePageUpdates(w http.ResponseWriter, r *http.Request) {
	ws, ok := common.Workspace(w, r)
	if !ok {
		return
	}

	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe(ws.ID)
	defer h.notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			if err := sse.PatchElementTempl(Fragment(summaries(ws))); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// summaries lists the catalog panels with their current provider state.
func summaries(ws *session.Workspace) []PanelSummary {
	panels := ws.Catalog().Panels()
	out := make([]PanelSummary, 0, len(panels))
	for _, panel := range panels {
		p, current, ok := ws.Analyser(panel.ID)
		if !ok {
			continue
		}
		out = append(out, PanelSummary{Panel: current, Snapshot: p.Snapshot()})
	}
	return out
}
