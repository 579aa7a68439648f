package dataconnection

import (
	"context"
	"encoding/json"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/bankdash/internal/config"
	"github.com/leapstack-labs/bankdash/internal/ui/features/common"
	"github.com/leapstack-labs/bankdash/internal/ui/features/common/components"
	"github.com/leapstack-labs/bankdash/internal/upload"
)

// Title is the heading of the data connection page.
const Title = "Data Connection"

// FragmentID is the element id of the patchable card body.
const FragmentID = "data-connection"

// URLPlaceholder is the hint shown in the URL connector input.
const URLPlaceholder = "jdbc://server:port/database"

const base = common.DataConnectionPath

// Shell declares the page signals around the fragment so that patches of
// the fragment keep the user's input.
func Shell(state upload.State) templ.Component {
	return components.Func(func(ctx context.Context, b *components.Builder) {
		signals, err := json.Marshal(map[string]any{
			"url":           state.URL,
			"azureResource": state.Azure,
			"filesNames":    []string{},
		})
		if err != nil {
			signals = []byte("{}")
		}
		b.Open("div", "class", "data-shell", "data-signals", string(signals))
		b.Component(ctx, Fragment(state))
		b.Close("div")
	})
}

// Fragment renders the three connector cards and the status line.
func Fragment(state upload.State) templ.Component {
	return components.Func(func(ctx context.Context, b *components.Builder) {
		b.Open("div", "id", FragmentID, "class", "panel")
		b.Component(ctx, components.Header(Title, nil))

		b.Open("div", "class", "card-grid")
		b.Component(ctx, urlCard())
		b.Component(ctx, fileCard(state))
		b.Component(ctx, azureCard())
		b.Close("div")

		if state.Status != "" {
			b.Element("p", state.Status, "class", "status-line", "role", "status")
		}
		b.Close("div")
	})
}

func urlCard() templ.Component {
	return components.Func(func(_ context.Context, b *components.Builder) {
		b.Open("div", "class", "card")
		b.Element("h3", "URL Connection")
		b.Element("p", "JDBC, APIs, Endpoints", "class", "muted")
		b.Open("input", "type", "text", "data-bind:url", "", "placeholder", URLPlaceholder)
		b.Element("button", "Connect", "class", "btn btn-primary", "data-on:click", "@post('"+base+"/url')")
		b.Close("div")
	})
}

func fileCard(state upload.State) templ.Component {
	return components.Func(func(_ context.Context, b *components.Builder) {
		b.Open("div", "class", "card")
		b.Element("h3", "File Upload")
		b.Element("p", "CSV, Excel, JSON", "class", "muted")

		b.Open("label", "class", "dropzone")
		b.Text("Drop files or click to browse")
		b.Open("input",
			"type", "file",
			"multiple", "",
			"class", "hidden",
			"data-on:change", "$filesNames = [...el.files].map(f => f.name); @post('"+base+"/files')",
		)
		b.Close("label")

		if state.Phase == upload.PhaseFilesSelected {
			b.Open("ul", "class", "file-list")
			for _, name := range state.FileNames {
				b.Element("li", name)
			}
			b.Close("ul")

			b.Open("div", "class", "card-actions")
			b.Element("a", "Download",
				"class", "btn",
				"href", base+"/export.csv",
				"download", config.DefaultExportFilename,
			)
			b.Element("button", "LLM", "class", "btn", "data-on:click", "@post('"+base+"/llm')")
			b.Close("div")
		}
		b.Close("div")
	})
}

func azureCard() templ.Component {
	return components.Func(func(_ context.Context, b *components.Builder) {
		b.Open("div", "class", "card")
		b.Element("h3", "Azure SQL Database")
		b.Element("p", "Cloud Database", "class", "muted")
		b.Open("select", "data-bind:azureResource", "")
		b.Element("option", "Select Azure Resource", "value", "")
		for _, r := range upload.AzureResources {
			b.Element("option", r.Label, "value", r.ID)
		}
		b.Close("select")
		b.Element("button", "Connect Azure", "class", "btn btn-primary", "data-on:click", "@post('"+base+"/azure')")
		b.Close("div")
	})
}
