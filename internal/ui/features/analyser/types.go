package analyser

import (
	"github.com/leapstack-labs/bankdash/internal/catalog"
	"github.com/leapstack-labs/bankdash/internal/provider"
)

// ConnectSignals are the signals posted by the connect form.
type ConnectSignals struct {
	Endpoint string `json:"endpoint"`
}

// PanelView is everything the panel fragment renders.
type PanelView struct {
	Panel    catalog.Panel
	Snapshot provider.Snapshot
	// InputError is a rejected endpoint, shown under the input.
	InputError string
}
