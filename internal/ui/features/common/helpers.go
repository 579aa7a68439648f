package common

import (
	"context"
	"net/http"
	"net/url"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/bankdash/internal/catalog"
	"github.com/leapstack-labs/bankdash/internal/ui/notifier"
	"github.com/leapstack-labs/bankdash/internal/ui/session"
	"github.com/starfederation/datastar-go/datastar"
)

// Paths of the non-analyser pages.
const (
	ConfigurationPath  = "/configuration"
	DataConnectionPath = "/data"
)

// BuildNav returns the navigation bar for the page at currentPath: one link
// per catalog panel, then the configuration and data connection pages.
func BuildNav(cat *catalog.Catalog, currentPath string) []NavItem {
	var items []NavItem
	for _, p := range cat.Panels() {
		href := PanelPath(p.ID)
		items = append(items, NavItem{Label: p.Title, Href: href, Active: href == currentPath})
	}
	items = append(items,
		NavItem{Label: "Configuration", Href: ConfigurationPath, Active: currentPath == ConfigurationPath},
		NavItem{Label: "Data Connection", Href: DataConnectionPath, Active: currentPath == DataConnectionPath},
	)
	return items
}

// PanelPath returns the page path of an analyser panel.
func PanelPath(id catalog.PanelID) string {
	return "/" + url.PathEscape(string(id))
}

// Workspace returns the session workspace of the request, or writes a 500
// and reports false when the session middleware did not run.
func Workspace(w http.ResponseWriter, r *http.Request) (*session.Workspace, bool) {
	ws, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "no session workspace", http.StatusInternalServerError)
	}
	return ws, ok
}

// PathParam returns an unescaped chi URL parameter.
func PathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

// Follow runs action and patches render() after every change notification
// published for key while it runs, then once more when it returns. The
// action's error is returned; a failed final patch is returned instead.
func Follow(
	ctx context.Context,
	sse *datastar.ServerSentEventGenerator,
	n *notifier.Notifier,
	key string,
	render func() templ.Component,
	action func(context.Context) error,
) error {
	updates := n.Subscribe(key)
	defer n.Unsubscribe(updates)

	done := make(chan error, 1)
	go func() { done <- action(ctx) }()

	for {
		select {
		case err := <-done:
			if perr := sse.PatchElementTempl(render()); perr != nil {
				return perr
			}
			return err
		case <-updates:
			if err := sse.PatchElementTempl(render()); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}
