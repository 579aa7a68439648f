package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

type styleRenderer interface {
	Render(strs ...string) string
}

// Styles holds the lipgloss styles used by text output.
type Styles struct {
	Header  lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	// Tile tones, matching the dashboard count colours.
	Green  lipgloss.Style
	Cyan   lipgloss.Style
	Yellow lipgloss.Style
}

// newStyles binds styles to out. Non-terminal output is rendered without
// escape codes.
func newStyles(out io.Writer, isTTY bool) *Styles {
	var lr *lipgloss.Renderer
	if isTTY {
		lr = lipgloss.NewRenderer(out)
	} else {
		lr = lipgloss.NewRenderer(out, termenv.WithProfile(termenv.Ascii))
	}

	return &Styles{
		Header:  lr.NewStyle().Bold(true).Foreground(lipgloss.Color("#7dd3fc")),
		Bold:    lr.NewStyle().Bold(true),
		Muted:   lr.NewStyle().Foreground(lipgloss.Color("#94a3b8")),
		Success: lr.NewStyle().Foreground(lipgloss.Color("#4ade80")),
		Warning: lr.NewStyle().Foreground(lipgloss.Color("#facc15")),
		Error:   lr.NewStyle().Foreground(lipgloss.Color("#f87171")).Bold(true),
		Info:    lr.NewStyle().Foreground(lipgloss.Color("#60a5fa")),
		Green:   lr.NewStyle().Foreground(lipgloss.Color("#4ade80")).Bold(true),
		Cyan:    lr.NewStyle().Foreground(lipgloss.Color("#22d3ee")).Bold(true),
		Yellow:  lr.NewStyle().Foreground(lipgloss.Color("#facc15")).Bold(true),
	}
}
