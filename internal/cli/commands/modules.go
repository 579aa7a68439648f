package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/bankdash/internal/catalog"
	"github.com/leapstack-labs/bankdash/internal/cli/output"
	"github.com/leapstack-labs/bankdash/internal/provider"
	"github.com/leapstack-labs/bankdash/pkg/core"
	"github.com/spf13/cobra"
)

// ModulesOptions holds options for the modules command.
type ModulesOptions struct {
	Endpoint string
	Strict   bool
}

// ModulesOutput is the JSON output for the modules command.
type ModulesOutput struct {
	Panels []PanelModules `json:"panels"`
}

// PanelModules is the rendered tile list of one panel.
type PanelModules struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Source   string        `json:"source"` // "live" or "fallback"
	Label    string        `json:"label"`
	Endpoint string        `json:"endpoint,omitempty"`
	Error    string        `json:"error,omitempty"`
	Modules  []core.Module `json:"modules"`
}

// NewModulesCommand creates the modules command.
func NewModulesCommand() *cobra.Command {
	opts := &ModulesOptions{}

	cmd := &cobra.Command{
		Use:   "modules [panel...]",
		Short: "Show the module tiles of the analyser panels",
		Long: `Fetch and display the module tiles of each analyser panel.

A panel with a configured endpoint shows the remote modules; a panel without
one, or whose endpoint fails, shows its built-in fallback list.`,
		Example: `  # All panels
  bankdash modules

  # The dormant analyser against a local backend
  bankdash modules dormant --endpoint http://localhost:8000/api/dormant

  # Machine-readable
  bankdash modules -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModules(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Endpoint, "endpoint", "", "Module API endpoint (requires a single panel)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Fail instead of falling back when a fetch fails")

	return cmd
}

func runModules(cmd *cobra.Command, args []string, opts *ModulesOptions) error {
	cc := NewCommandContext(cmd)

	cat, err := cc.Catalog()
	if err != nil {
		return err
	}

	panels, err := selectPanels(cat, args)
	if err != nil {
		return err
	}
	if opts.Endpoint != "" && len(panels) != 1 {
		return errors.New("--endpoint requires exactly one panel")
	}

	out := ModulesOutput{Panels: make([]PanelModules, 0, len(panels))}
	var failed []string
	for _, panel := range panels {
		endpoint := cc.Cfg.Endpoints.ForPanel(string(panel.ID))
		if opts.Endpoint != "" {
			endpoint = opts.Endpoint
		}

		pm, err := fetchPanel(cmd.Context(), cc, cat, panel, endpoint)
		if err != nil {
			failed = append(failed, string(panel.ID))
		}
		out.Panels = append(out.Panels, pm)
	}

	if opts.Strict && len(failed) > 0 {
		return fmt.Errorf("module fetch failed for %s", strings.Join(failed, ", "))
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}
	for _, pm := range out.Panels {
		renderPanelModules(r, pm)
	}
	return nil
}

func selectPanels(cat *catalog.Catalog, ids []string) ([]catalog.Panel, error) {
	if len(ids) == 0 {
		return cat.Panels(), nil
	}
	panels := make([]catalog.Panel, 0, len(ids))
	for _, id := range ids {
		p, ok := cat.Panel(catalog.PanelID(id))
		if !ok {
			known := make([]string, 0)
			for _, kp := range cat.Panels() {
				known = append(known, string(kp.ID))
			}
			return nil, fmt.Errorf("unknown panel %q (available: %s)", id, strings.Join(known, ", "))
		}
		panels = append(panels, p)
	}
	return panels, nil
}

// fetchPanel runs one fetch for panel. The returned error is the fetch
// failure; the PanelModules always holds renderable tiles.
func fetchPanel(ctx context.Context, cc *CommandContext, cat *catalog.Catalog, panel catalog.Panel, endpoint string) (PanelModules, error) {
	p := provider.New(provider.Config{
		Client:    cc.HTTPClient(),
		StaleTime: cc.Cfg.StaleTime,
		Fallback:  func() []core.Module { return cat.Fallback(panel.ID) },
		Logger:    cc.Logger.With("panel", string(panel.ID)),
	})

	var err error
	if endpoint != "" {
		err = p.Connect(ctx, endpoint)
	}

	snap := p.Snapshot()
	pm := PanelModules{
		ID:       string(panel.ID),
		Title:    panel.Title,
		Source:   "live",
		Label:    snap.Source(),
		Endpoint: snap.Endpoint,
		Modules:  snap.Modules,
	}
	if snap.UsingFallback {
		pm.Source = "fallback"
	}
	if err != nil {
		pm.Error = err.Error()
	}
	return pm, err
}

func renderPanelModules(r *output.Renderer, pm PanelModules) {
	r.Header(2, pm.Title)

	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatKeyValue("Source", pm.Label))
		if pm.Error != "" {
			r.Println(output.FormatKeyValue("Error", pm.Error))
		}
		r.Println()
	} else {
		r.StatusLine("source", pm.Source, pm.Label)
		if pm.Error != "" {
			r.Error(pm.Error)
		}
	}

	rows := make([][]string, 0, len(pm.Modules))
	for _, m := range pm.Modules {
		rows = append(rows, []string{m.Title, toneCount(r, m), string(m.Status), m.StatusText})
	}
	r.Table([]string{"Module", "Count", "Status", "Status Text"}, rows)
}

// toneCount colors a count by its status tone in text mode.
func toneCount(r *output.Renderer, m core.Module) string {
	if r.EffectiveMode() != output.ModeText {
		return m.Count
	}
	s := r.Styles()
	switch m.Status.Tone() {
	case core.ToneGreen:
		return s.Green.Render(m.Count)
	case core.ToneCyan:
		return s.Cyan.Render(m.Count)
	default:
		return s.Yellow.Render(m.Count)
	}
}
