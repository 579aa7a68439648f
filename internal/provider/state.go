package provider

import (
	"time"

	"github.com/leapstack-labs/bankdash/pkg/core"
)

// Phase is the connection phase of a provider.
type Phase int

// Connection phases.
const (
	PhaseDisconnected Phase = iota
	PhaseConnecting
	PhaseConnected
	PhaseErrored
)

func (p Phase) String() string {
	switch p {
	case PhaseDisconnected:
		return "disconnected"
	case PhaseConnecting:
		return "connecting"
	case PhaseConnected:
		return "connected"
	case PhaseErrored:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time copy of a provider's state.
type Snapshot struct {
	Endpoint  string
	Enabled   bool
	Phase     Phase
	Data      []core.Module // nil until a fetch succeeds
	IsLoading bool
	Err       error
	FetchedAt time.Time
	Stale     bool

	// Modules is Data when present, otherwise the fallback list.
	Modules       []core.Module
	UsingFallback bool
}

// ErrorText returns the message of the last error, or "".
func (s Snapshot) ErrorText() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Source describes where the rendered modules come from.
func (s Snapshot) Source() string {
	switch {
	case !s.Enabled:
		return "Fallback data"
	case s.IsLoading:
		return "Loading..."
	case s.Err != nil && s.UsingFallback:
		return "Fallback data (API unreachable)"
	case s.Err != nil:
		return "Cached data (refresh failed)"
	case s.UsingFallback:
		return "Awaiting first fetch"
	default:
		return "Live: " + s.Endpoint
	}
}
