package configuration

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/bankdash/internal/connector"
	"github.com/leapstack-labs/bankdash/internal/ui/features/common"
	"github.com/leapstack-labs/bankdash/internal/ui/features/common/components"
	"github.com/leapstack-labs/bankdash/internal/ui/notifier"
	"github.com/leapstack-labs/bankdash/internal/ui/session"
	"github.com/starfederation/datastar-go/datastar"
)

// Handlers provides HTTP handlers for the configuration feature.
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
		return Fragment(ws.Connector.State())
	}
}

// ConfigurationPage renders the configuration page.
func (h *Handlers) ConfigurationPage(w http.ResponseWriter, r *http.Request) {
	ws, ok := common.Workspace(w, r)
	if !ok {
		return
	}

	page := common.PageData{
		Title:      Title,
		Nav:        common.BuildNav(ws.Catalog(), common.ConfigurationPath),
		UpdatesURL: common.ConfigurationPath + "/updates",
		IsDev:      h.isDev,
	}
	if err := components.Page(page, Shell(ws.Connector.State())).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ConfigurationUpdates is the long-lived SSE endpoint of the page.
func (h *Handlers) ConfigurationUpdates(w http.ResponseWriter, r *http.Request) {
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
			if err := sse.PatchElementTempl(Fragment(ws.Connector.State())); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// LoadTypes fetches the database type list and selects the first type.
func (h *Handlers) LoadTypes(w http.ResponseWriter, r *http.Request) {
	ws, ok := common.Workspace(w, r)
	if !ok {
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := common.Follow(r.Context(), sse, h.notifier, ws.ID, fragment(ws), ws.Connector.Load); err != nil {
		h.logger.Debug("database type list failed", "error", err)
	}
	h.patchForm(sse, ws)
}

// Submit validates and saves the posted form.
func (h *Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, (*connector.Panel).Submit)
}

// Reconnect re-verifies the connection by saving the form again.
func (h *Handlers) Reconnect(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, (*connector.Panel).Reconnect)
}

func (h *Handlers) submit(w http.ResponseWriter, r *http.Request, run func(*connector.Panel, context.Context, connector.Form) error) {
	ws, ok := common.Workspace(w, r)
	if !ok {
		return
	}

	// Read signals BEFORE creating SSE (SSE consumes the request body)
	var form connector.Form
	if err := datastar.ReadSignals(r, &form); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(err)
		return
	}

	sse := datastar.NewSSE(w, r)
	err := common.Follow(r.Context(), sse, h.notifier, ws.ID, fragment(ws), func(ctx context.Context) error {
		return run(ws.Connector, ctx, form)
	})

	var validation *connector.ValidationError
	switch {
	case errors.As(err, &validation):
		h.logger.Debug("connection form rejected", "fields", validation.Fields)
	case err != nil:
		h.logger.Debug("connection save failed", "error", err)
	}
}

// Refresh clears the form and reloads the database types.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	ws, ok := common.Workspace(w, r)
	if !ok {
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := common.Follow(r.Context(), sse, h.notifier, ws.ID, fragment(ws), ws.Connector.Refresh); err != nil {
		h.logger.Debug("refresh failed", "error", err)
	}
	h.patchForm(sse, ws)
}

// CloseMessage dismisses the message dialog.
func (h *Handlers) CloseMessage(w http.ResponseWriter, r *http.Request) {
	ws, ok := common.Workspace(w, r)
	if !ok {
		return
	}

	sse := datastar.NewSSE(w, r)
	ws.Connector.CloseMessage()
	if err := sse.PatchElementTempl(Fragment(ws.Connector.State())); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// SelectSection switches the sidebar section.
func (h *Handlers) SelectSection(w http.ResponseWriter, r *http.Request) {
	ws, ok := common.Workspace(w, r)
	if !ok {
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := ws.Connector.SelectSection(connector.SectionID(common.PathParam(r, "name"))); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.PatchElementTempl(Fragment(ws.Connector.State())); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// patchForm pushes the server-side form values to the page signals.
func (h *Handlers) patchForm(sse *datastar.ServerSentEventGenerator, ws *session.Workspace) {
	if err := sse.MarshalAndPatchSignals(ws.Connector.State().Form); err != nil {
		_ = sse.ConsoleError(err)
	}
}
