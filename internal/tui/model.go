// Package tui is a terminal viewer for the analyser panels.
//
// Each catalog panel gets a tab with its module tiles. Panels with a
// configured endpoint fetch on start; interactive panels start disconnected
// with the endpoint prefilled, the same way the web dashboard does.
package tui

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/leapstack-labs/bankdash/internal/catalog"
	"github.com/leapstack-labs/bankdash/internal/config"
	"github.com/leapstack-labs/bankdash/internal/provider"
	"github.com/leapstack-labs/bankdash/pkg/core"
)

const (
	tileWidth     = 30
	defaultWidth  = 100
	minTileColumn = 1
)

// Config holds the dependencies of the viewer.
type Config struct {
	Catalog   *catalog.Catalog
	Endpoints config.Endpoints
	Client    *http.Client
	StaleTime time.Duration
	Logger    *slog.Logger
}

// fetchedMsg reports the end of a fetch of panel index.
type fetchedMsg struct {
	index int
	err   error
}

// Model is the bubbletea model of the viewer.
type Model struct {
	ctx       context.Context
	panels    []catalog.Panel
	providers []*provider.Provider
	active    int
	input     textinput.Model
	spinner   spinner.Model
	editing   bool
	inputErr  string
	width     int
	styles    Styles
}

// New builds the viewer model. ctx bounds every fetch it issues.
func New(ctx context.Context, cfg Config) Model {
	cat := cfg.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ti := textinput.New()
	ti.Placeholder = config.DefaultEndpointPlaceholder
	ti.Prompt = "Endpoint: "
	ti.CharLimit = 512
	ti.Width = 60

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := Model{
		ctx:     ctx,
		panels:  cat.Panels(),
		input:   ti,
		spinner: sp,
		width:   defaultWidth,
		styles:  DefaultStyles(),
	}

	for _, panel := range m.panels {
		p := provider.New(provider.Config{
			Client:    cfg.Client,
			StaleTime: cfg.StaleTime,
			Fallback:  func() []core.Module { return cat.Fallback(panel.ID) },
			Logger:    logger.With("panel", string(panel.ID)),
		})
		endpoint := cfg.Endpoints.ForPanel(string(panel.ID))
		p.Configure(endpoint, !panel.Interactive && endpoint != "")
		m.providers = append(m.providers, p)
	}
	m.syncInput()
	return m
}

// Init starts the spinner and fetches every enabled panel.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	for i, p := range m.providers {
		if p.Snapshot().Enabled {
			cmds = append(cmds, m.fetch(i, p.Fetch))
		}
	}
	return tea.Batch(cmds...)
}

func (m Model) fetch(i int, run func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return fetchedMsg{index: i, err: run(ctx)}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case fetchedMsg:
		// The snapshot already holds the outcome; nothing else to record.
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateBrowsing(msg)
	}
	return m, nil
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	}
	if len(m.panels) == 0 {
		return m, nil
	}

	switch msg.String() {
	case "tab", "right", "l":
		m.active = (m.active + 1) % len(m.panels)
		m.syncInput()
	case "shift+tab", "left", "h":
		m.active = (m.active - 1 + len(m.panels)) % len(m.panels)
		m.syncInput()
	case "r":
		p := m.providers[m.active]
		if p.Snapshot().Enabled {
			return m, tea.Batch(m.fetch(m.active, p.Refetch), m.spinner.Tick)
		}
	case "d":
		if m.panels[m.active].Interactive {
			m.providers[m.active].Disconnect()
		}
	case "e":
		if m.panels[m.active].Interactive {
			m.editing = true
			m.inputErr = ""
			cmd := m.input.Focus()
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.editing = false
		m.input.Blur()
		return m, nil
	case "enter":
		endpoint := strings.TrimSpace(m.input.Value())
		if endpoint == "" {
			m.inputErr = provider.ErrNoEndpoint.Error()
			return m, nil
		}
		m.editing = false
		m.inputErr = ""
		m.input.Blur()
		p := m.providers[m.active]
		return m, tea.Batch(m.fetch(m.active, func(ctx context.Context) error {
			return p.Connect(ctx, endpoint)
		}), m.spinner.Tick)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// syncInput prefills the input with the active panel's endpoint.
func (m *Model) syncInput() {
	if len(m.providers) == 0 {
		return
	}
	m.input.SetValue(m.providers[m.active].Snapshot().Endpoint)
	m.inputErr = ""
}

// View renders the active panel.
func (m Model) View() string {
	if len(m.panels) == 0 {
		return "No panels configured.\n"
	}

	var b strings.Builder
	b.WriteString(m.tabs())
	b.WriteString("\n\n")

	panel := m.panels[m.active]
	snap := m.providers[m.active].Snapshot()

	b.WriteString(m.styles.Title.Render(panel.Title))
	b.WriteString("  ")
	if snap.IsLoading {
		b.WriteString(m.spinner.View() + " ")
	}
	b.WriteString(m.styles.Source.Render(snap.Source()))
	b.WriteString("\n")

	if snap.Err != nil {
		shown := " Showing fallback data."
		if !snap.UsingFallback {
			shown = " Showing cached data."
		}
		b.WriteString(m.styles.Banner.Render("Error: " + snap.ErrorText() + shown))
		b.WriteString("\n")
	}

	if panel.Interactive {
		b.WriteString(m.input.View())
		b.WriteString("\n")
		if m.inputErr != "" {
			b.WriteString(m.styles.Banner.Render(m.inputErr))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	b.WriteString(m.tiles(snap.Modules))
	b.WriteString("\n\n")
	b.WriteString(m.help(panel))
	return b.String()
}

func (m Model) tabs() string {
	parts := make([]string, 0, len(m.panels))
	for i, p := range m.panels {
		style := m.styles.Tab
		if i == m.active {
			style = m.styles.ActiveTab
		}
		parts = append(parts, style.Render(p.Title))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) tiles(mods []core.Module) string {
	if len(mods) == 0 {
		return m.styles.Muted.Render("No modules.")
	}

	perRow := m.width / (tileWidth + 4)
	if perRow < minTileColumn {
		perRow = minTileColumn
	}

	var rows []string
	for start := 0; start < len(mods); start += perRow {
		end := min(start+perRow, len(mods))
		row := make([]string, 0, end-start)
		for _, mod := range mods[start:end] {
			row = append(row, m.tile(mod))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) tile(mod core.Module) string {
	count := m.styles.Counts[mod.Status.Tone()].Render(mod.Count)
	body := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.TileTitle.Render(mod.Title),
		count,
		m.styles.Muted.Render(mod.StatusText),
	)
	return m.styles.Tile.Render(body)
}

func (m Model) help(panel catalog.Panel) string {
	keys := "tab: next panel • r: refresh • q: quit"
	if panel.Interactive {
		keys = "tab: next panel • e: edit endpoint • enter: connect • d: disconnect • r: refresh • q: quit"
	}
	if m.editing {
		keys = "enter: connect • esc: cancel"
	}
	return m.styles.Help.Render(keys)
}

// Run starts the viewer on the terminal and blocks until it exits.
func Run(ctx context.Context, cfg Config) error {
	p := tea.NewProgram(New(ctx, cfg), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
