package analyser

import (
	"context"
	"net/url"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/bankdash/internal/config"
	"github.com/leapstack-labs/bankdash/internal/ui/features/common"
	"github.com/leapstack-labs/bankdash/internal/ui/features/common/components"
)

// ExpectedFormat documents the payload a module API must serve.
const ExpectedFormat = `Expected API response format: { "modules": [{ "title": "string", "count": "string", "status": "pending|complete|flagged|urgent|critical", "statusText": "string" }] }`

// FallbackHint is shown under a failed fetch.
const FallbackHint = "Using fallback data. Check your Python backend is running and the endpoint is correct."

// FragmentID returns the element id of a panel fragment.
func FragmentID(v PanelView) string {
	return "panel-" + string(v.Panel.ID)
}

// PanelFragment renders the patchable body of an analyser panel.
func PanelFragment(v PanelView) templ.Component {
	base := common.PanelPath(v.Panel.ID)
	snap := v.Snapshot

	return components.Func(func(ctx context.Context, b *components.Builder) {
		b.Open("div", "id", FragmentID(v), "class", "panel")

		b.Component(ctx, components.Header(v.Panel.Title, refreshButton(v, base)))

		if v.Panel.Interactive && !snap.Enabled {
			b.Component(ctx, connectBox(v, base))
		}
		if snap.Enabled {
			b.Component(ctx, connectionStatus(v, base))
		}
		if snap.Err != nil {
			b.Component(ctx, components.Banner("Failed to connect to API: "+snap.ErrorText(), FallbackHint))
		}

		b.Component(ctx, components.ModuleGrid(snap.Modules, func(title string) string {
			return base + "/modules/" + url.PathEscape(title)
		}))
		b.Close("div")
	})
}

func refreshButton(v PanelView, base string) templ.Component {
	return components.Func(func(_ context.Context, b *components.Builder) {
		if !v.Snapshot.Enabled {
			return
		}
		attrs := []string{
			"class", components.Class("btn btn-ghost", components.If(v.Snapshot.IsLoading, "spinning")),
			"data-on:click", "@post('" + base + "/refresh')",
		}
		if v.Snapshot.IsLoading {
			attrs = append(attrs, "disabled", "")
		}
		b.Element("button", "Refresh", attrs...)
	})
}

func connectBox(v PanelView, base string) templ.Component {
	return components.Func(func(_ context.Context, b *components.Builder) {
		b.Open("div", "class", "connect-box", "data-signals:endpoint", jsString(v.Snapshot.Endpoint))
		b.Element("h3", "Connect to Python Backend API")
		b.Open("div", "class", "connect-row")
		b.Open("input",
			"type", "text",
			"name", "endpoint",
			"data-bind:endpoint", "",
			"placeholder", config.DefaultEndpointPlaceholder,
			"value", v.Snapshot.Endpoint,
		)
		b.Element("button", "Connect API",
			"class", "btn btn-primary",
			"data-attr:disabled", "$endpoint.trim() === ''",
			"data-on:click", "@post('"+base+"/connect')",
		)
		b.Close("div")
		if v.InputError != "" {
			b.Element("p", v.InputError, "class", "input-error")
		}
		b.Element("p", ExpectedFormat, "class", "hint")
		b.Close("div")
	})
}

func connectionStatus(v PanelView, base string) templ.Component {
	snap := v.Snapshot
	return components.Func(func(_ context.Context, b *components.Builder) {
		b.Open("div", "class", "connection-status")
		b.Element("span", "API Endpoint: "+snap.Endpoint, "class", "endpoint")
		switch {
		case snap.IsLoading:
			b.Element("span", "Loading...", "class", "state state-loading")
		case snap.Err != nil:
			b.Element("span", "Connection Error", "class", "state state-error")
		case snap.Data != nil:
			b.Element("span", "Connected", "class", "state state-ok")
		}
		if v.Panel.Interactive {
			b.Element("button", "Disconnect",
				"class", "btn btn-ghost",
				"data-on:click", "@post('"+base+"/disconnect')",
			)
		}
		b.Close("div")
	})
}

// jsString quotes s as a single-quoted JavaScript string literal.
func jsString(s string) string {
	out := []byte{'\''}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\'', '\\':
			out = append(out, '\\', c)
		case '\n':
			out = append(out, '\\', 'n')
		default:
			out = append(out, c)
		}
	}
	return string(append(out, '\''))
}
