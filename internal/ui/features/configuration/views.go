package configuration

import (
	"context"
	"encoding/json"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/bankdash/internal/connector"
	"github.com/leapstack-labs/bankdash/internal/ui/features/common"
	"github.com/leapstack-labs/bankdash/internal/ui/features/common/components"
)

// Title is the heading of the configuration page.
const Title = "Data Connection Configuration"

// MessageTitle heads the message dialog.
const MessageTitle = "Connection Attempt"

// FragmentID is the element id of the patchable configuration body.
const FragmentID = "configuration"

const base = common.ConfigurationPath

type field struct {
	id          string
	label       string
	placeholder string
}

var textFields = []field{
	{"connectionName", "Connection Name", "e.g., MyDatabaseConnection"},
	{"serverName", "Server Name", "e.g., localhost or 192.168.1.1"},
	{"databaseName", "Database Name", "e.g., my_database"},
	{"portNumber", "Port Number", "e.g., 5432"},
	{"userName", "User name", "e.g., sql_user"},
}

// Shell wraps the fragment with the form signals and, until the type list has
// been fetched, the request that loads it.
func Shell(state connector.State) templ.Component {
	return components.Func(func(ctx context.Context, b *components.Builder) {
		signals, err := json.Marshal(state.Form)
		if err != nil {
			signals = []byte("{}")
		}
		attrs := []string{"class", "configuration-shell", "data-signals", string(signals)}
		if state.Types == nil {
			attrs = append(attrs, "data-init", "@get('"+base+"/types')")
		}
		b.Open("div", attrs...)
		b.Component(ctx, Fragment(state))
		b.Close("div")
	})
}

// Fragment renders the sidebar, the selected section and the message dialog.
func Fragment(state connector.State) templ.Component {
	return components.Func(func(ctx context.Context, b *components.Builder) {
		b.Open("div", "id", FragmentID, "class", "panel")
		b.Component(ctx, components.Header(Title, nil))

		b.Open("div", "class", "config-layout")
		b.Component(ctx, sidebar(state.Section))
		b.Open("section", "class", "config-content")
		if state.Section == connector.SectionDataConnector || state.Section == "" {
			b.Component(ctx, connectorForm(state))
		} else if s, err := connector.LookupSection(state.Section); err == nil {
			b.Element("h3", s.Title)
			b.Element("p", s.Body)
		}
		b.Close("section")
		b.Close("div")

		if state.ShowMessage && state.Message != "" {
			b.Component(ctx, components.Modal(MessageTitle, state.Message, base+"/message/close"))
		}
		b.Close("div")
	})
}

func sidebar(selected connector.SectionID) templ.Component {
	if selected == "" {
		selected = connector.SectionDataConnector
	}
	return components.Func(func(_ context.Context, b *components.Builder) {
		b.Open("aside", "class", "sidebar")
		b.Open("ul")
		for _, s := range connector.Sections() {
			b.Open("li")
			b.Open("button",
				"type", "button",
				"class", components.Class("sidebar-item", components.If(s.ID == selected, "active")),
				"data-on:click", "@post('"+base+"/section/"+string(s.ID)+"')",
			)
			b.Text(s.Title)
			b.Element("p", s.Description, "class", "sidebar-description")
			b.Close("button")
			b.Close("li")
		}
		b.Close("ul")
		b.Close("aside")
	})
}

func connectorForm(state connector.State) templ.Component {
	return components.Func(func(ctx context.Context, b *components.Builder) {
		b.Open("div", "class", "dropzone")
		b.Text("Drag & Drop folder or zip here or ")
		b.Open("label", "for", "file-upload", "class", "link")
		b.Text("Choose file")
		b.Open("input", "id", "file-upload", "type", "file", "class", "hidden")
		b.Close("label")
		b.Close("div")
		b.Element("p", "- or -", "class", "separator")

		b.Element("h3", "Connect with Database")
		b.Open("div", "class", "form-grid")

		b.Open("div", "class", "form-field")
		b.Element("label", "Database Type", "for", "databaseType")
		b.Component(ctx, typeSelect(state))
		b.Close("div")

		for _, f := range textFields {
			b.Open("div", "class", "form-field")
			b.Element("label", f.label, "for", f.id)
			b.Open("input", "type", "text", "id", f.id, "data-bind:"+f.id, "", "placeholder", f.placeholder)
			b.Close("div")
		}
		b.Close("div")

		b.Open("div", "class", "form-actions")
		b.Element("button", "Refresh", "class", "btn", "data-on:click", "@post('"+base+"/refresh')")
		b.Element("button", "Reconnect", "class", "btn", "data-on:click", "@post('"+base+"/reconnect')")
		b.Element("button", "Next Button", "class", "btn btn-primary", "data-on:click", "@post('"+base+"/submit')")
		b.Close("div")
	})
}

func typeSelect(state connector.State) templ.Component {
	return components.Func(func(_ context.Context, b *components.Builder) {
		switch {
		case state.Loading:
			b.Element("p", "Loading database types...", "class", "muted")
		case state.Error != "":
			b.Element("p", state.Error, "class", "input-error")
		default:
			b.Open("select", "id", "databaseType", "data-bind:databaseType", "")
			for _, t := range state.Types {
				label := t.Name
				if label == "" {
					label = t.ID
				}
				b.Element("option", label, "value", t.ID)
			}
			b.Close("select")
		}
	})
}
