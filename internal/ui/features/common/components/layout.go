package components

import (
	"context"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/bankdash/internal/ui/features/common"
	"github.com/leapstack-labs/bankdash/internal/ui/resources"
)

// DatastarScript is the client runtime the pages load.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

// Page renders a full HTML document around body. When page.UpdatesURL is set
// the body opens that SSE stream on load.
func Page(page common.PageData, body templ.Component) templ.Component {
	return Func(func(ctx context.Context, b *Builder) {
		b.Raw("<!doctype html>")
		b.Open("html", "lang", "en")
		b.Open("head")
		b.Raw(`<meta charset="utf-8">`)
		b.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		b.Element("title", page.Title+" - Bankdash")
		b.Open("link", "rel", "stylesheet", "href", resources.StaticPath(resources.Stylesheet))
		b.Open("script", "type", "module", "src", DatastarScript).Close("script")
		b.Close("head")

		bodyAttrs := []string{}
		if page.UpdatesURL != "" {
			bodyAttrs = append(bodyAttrs, "data-init", "@get('"+page.UpdatesURL+"')")
		}
		b.Open("body", bodyAttrs...)
		b.Component(ctx, Nav(page.Nav))
		b.Open("main", "id", "ui-content", "class", "content")
		b.Component(ctx, body)
		b.Close("main")
		if page.IsDev {
			b.Open("div", "data-init", "@get('/reload')").Close("div")
		}
		b.Close("body")
		b.Close("html")
	})
}

// Nav renders the top navigation bar.
func Nav(items []common.NavItem) templ.Component {
	return Func(func(_ context.Context, b *Builder) {
		b.Open("nav", "class", "topnav")
		b.Element("a", "Bankdash", "href", "/", "class", "brand")
		for _, item := range items {
			b.Element("a", item.Label, "href", item.Href, "class", Class("nav-link", If(item.Active, "active")))
		}
		b.Close("nav")
	})
}

// Header renders a panel heading with an optional trailing control.
func Header(title string, actions templ.Component) templ.Component {
	return Func(func(ctx context.Context, b *Builder) {
		b.Open("div", "class", "panel-header")
		b.Element("h2", title)
		b.Open("div", "class", "panel-actions")
		b.Component(ctx, actions)
		b.Element("a", "Close", "href", "/", "class", "btn btn-ghost")
		b.Close("div")
		b.Close("div")
	})
}

// Banner renders an error banner with an optional hint line.
func Banner(message, hint string) templ.Component {
	return Func(func(_ context.Context, b *Builder) {
		b.Open("div", "class", "banner banner-error", "role", "alert")
		b.Element("p", message, "class", "banner-title")
		if hint != "" {
			b.Element("p", hint, "class", "banner-hint")
		}
		b.Close("div")
	})
}

// Modal renders a message dialog with an OK button posting to closeURL.
func Modal(title, message, closeURL string) templ.Component {
	return Func(func(_ context.Context, b *Builder) {
		b.Open("div", "class", "modal-backdrop")
		b.Open("div", "class", "modal", "role", "dialog")
		b.Element("h4", title)
		b.Element("p", message, "class", "modal-message")
		b.Element("button", "OK", "class", "btn btn-primary", "data-on:click", "@post('"+closeURL+"')")
		b.Close("div")
		b.Close("div")
	})
}
