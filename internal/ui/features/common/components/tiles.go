package components

import (
	"context"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/bankdash/pkg/core"
)

// StatusChip renders the status badge of a tile.
func StatusChip(status core.Status, text string) templ.Component {
	return Func(func(_ context.Context, b *Builder) {
		b.Element("span", text, "class", "chip chip-"+string(status))
	})
}

// CountClass returns the CSS class coloring a tile count.
func CountClass(status core.Status) string {
	return "count count-" + string(status.Tone())
}

// Tile renders one module tile. A non-empty clickURL makes the tile post to
// it when clicked.
func Tile(m core.Module, clickURL string) templ.Component {
	return Func(func(ctx context.Context, b *Builder) {
		attrs := []string{"class", "tile", "type", "button"}
		if clickURL != "" {
			attrs = append(attrs, "data-on:click", "@post('"+clickURL+"')")
		}
		b.Open("button", attrs...)
		b.Element("h3", m.Title, "class", "tile-title")
		b.Element("div", m.Count, "class", CountClass(m.Status))
		b.Component(ctx, StatusChip(m.Status, m.StatusText))
		b.Close("button")
	})
}

// ModuleGrid renders the tiles of a panel in order. clickURL maps a module
// title to the URL its tile posts to; nil renders inert tiles.
func ModuleGrid(modules []core.Module, clickURL func(title string) string) templ.Component {
	return Func(func(ctx context.Context, b *Builder) {
		b.Open("div", "class", "tile-grid")
		for _, m := range modules {
			target := ""
			if clickURL != nil {
				target = clickURL(m.Title)
			}
			b.Component(ctx, Tile(m, target))
		}
		b.Close("div")
	})
}
