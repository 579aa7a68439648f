// Package home provides the landing page: one card per analyser panel.
package home

import (
	"github.com/leapstack-labs/bankdash/internal/catalog"
	"github.com/leapstack-labs/bankdash/internal/provider"
)

// PanelSummary is one card of the landing page.
type PanelSummary struct {
	Panel    catalog.Panel
	Snapshot provider.Snapshot
}

// Source describes where the panel's tiles come from.
func (s PanelSummary) Source() string {
	return s.Snapshot.Source()
}
