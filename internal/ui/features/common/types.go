// Package common provides shared types and utilities for UI features.
package common

// NavItem is a link of the top navigation bar.
type NavItem struct {
	Label  string
	Href   string
	Active bool
}

// PageData holds what the layout needs around a page body.
type PageData struct {
	Title string
	Nav   []NavItem
	// UpdatesURL is the SSE stream the page opens on load, if any.
	UpdatesURL string
	IsDev      bool
}
