package dataconnection

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/bankdash/internal/ui/features/common"
	"github.com/leapstack-labs/bankdash/internal/ui/features/common/components"
	"github.com/leapstack-labs/bankdash/internal/ui/notifier"
	"github.com/leapstack-labs/bankdash/internal/ui/session"
	"github.com/starfederation/datastar-go/datastar"
)

// Handlers provides HTTP handlers for the data connection feature.
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

func fragment(ws *session.Workspace) func() templ.Component {
	return func() templ.Component {
		return Fragment(ws.Upload.State())
	}
}

func patch(sse *datastar.ServerSentEventGenerator, ws *session.Workspace) {
	if err := sse.PatchElementTempl(Fragment(ws.Upload.State())); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// DataPage renders the data connection page.
func (h *Handlers) DataPage(w http.ResponseWriter, r *http.Request) {
	ws, ok := common.Workspace(w, r)
	if !ok {
		return
	}

	page := common.PageData{
		Title:      Title,
		Nav:        common.BuildNav(ws.Catalog(), common.DataConnectionPath),
		UpdatesURL: common.DataConnectionPath + "/updates",
		IsDev:      h.isDev,
	}
	if err := components.Page(page, Shell(ws.Upload.State())).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// DataUpdates is the long-lived SSE endpoint of the page.
func (h *Handlers) DataUpdates(w http.ResponseWriter, r *http.Request) {
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
			patch(sse, ws)
		}
	}
}

// SelectFiles records the names of the chosen files.
func (h *Handlers) SelectFiles(w http.ResponseWriter, r *http.Request) {
	ws, ok := common.Workspace(w, r)
	if !ok {
		return
	}

	// Read signals BEFORE creating SSE (SSE consumes the request body)
	var signals FilesSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(err)
		return
	}

	sse := datastar.NewSSE(w, r)
	ws.Upload.SelectFiles(signals.FilesNames)
	patch(sse, ws)
}

// Export streams the export source as a CSV attachment.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	ws, ok := common.Workspace(w, r)
	if !ok {
		return
	}

	data, name, err := ws.Upload.Download(r.Context())
	if err != nil {
		http.Error(w, "Download failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		h.logger.Debug("csv write failed", "error", err)
	}
}

// RunLLM starts the LLM operation.
func (h *Handlers) RunLLM(w http.ResponseWriter, r *http.Request) {
	ws, ok := common.Workspace(w, r)
	if !ok {
		return
	}

	sse := datastar.NewSSE(w, r)
	ws.Upload.RunLLM()
	patch(sse, ws)
}

// ConnectURL runs the URL connector.
func (h *Handlers) ConnectURL(w http.ResponseWriter, r *http.Request) {
	ws, ok := common.Workspace(w, r)
	if !ok {
		return
	}

	var signals URLSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(err)
		return
	}

	sse := datastar.NewSSE(w, r)
	err := common.Follow(r.Context(), sse, h.notifier, ws.ID, fragment(ws), func(ctx context.Context) error {
		return ws.Upload.ConnectURL(ctx, signals.URL)
	})
	if err != nil {
		h.logger.Debug("url connection aborted", "error", err)
	}
}

// ConnectAzure runs the Azure SQL connector.
func (h *Handlers) ConnectAzure(w http.ResponseWriter, r *http.Request) {
	ws, ok := common.Workspace(w, r)
	if !ok {
		return
	}

	var signals AzureSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(err)
		return
	}

	sse := datastar.NewSSE(w, r)
	err := common.Follow(r.Context(), sse, h.notifier, ws.ID, fragment(ws), func(ctx context.Context) error {
		return ws.Upload.ConnectAzure(ctx, signals.AzureResource)
	})
	if err != nil {
		h.logger.Debug("azure connection failed", "resource", signals.AzureResource, "error", err)
	}
}
