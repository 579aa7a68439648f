package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/leapstack-labs/bankdash/pkg/core"
)

// Styles holds the lipgloss styles of the viewer.
type Styles struct {
	Title     lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Source    lipgloss.Style
	Banner    lipgloss.Style
	Tile      lipgloss.Style
	TileTitle lipgloss.Style
	Muted     lipgloss.Style
	Help      lipgloss.Style
	Counts    map[core.Tone]lipgloss.Style
}

// DefaultStyles returns the viewer styles.
func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7dd3fc")),
		Tab:       lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("#94a3b8")),
		ActiveTab: lipgloss.NewStyle().Padding(0, 2).Bold(true).Underline(true).Foreground(lipgloss.Color("#e2e8f0")),
		Source:    lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#94a3b8")),
		Banner: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fecaca")).
			Background(lipgloss.Color("#7f1d1d")).
			Padding(0, 1),
		Tile: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#334155")).
			Padding(0, 1).
			Width(tileWidth),
		TileTitle: lipgloss.NewStyle().Bold(true),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8")),
		Help:      lipgloss.NewStyle().Foreground(lipgloss.Color("#64748b")),
		Counts: map[core.Tone]lipgloss.Style{
			core.ToneGreen:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ade80")),
			core.ToneCyan:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22d3ee")),
			core.ToneYellow: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#facc15")),
		},
	}
}
