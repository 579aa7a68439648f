package commands

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/leapstack-labs/bankdash/internal/cli/config"
	"github.com/leapstack-labs/bankdash/internal/cli/output"
	"github.com/leapstack-labs/bankdash/internal/dbprobe"
	"github.com/spf13/cobra"
)

// ProbeOptions holds options for the probe command.
type ProbeOptions struct {
	Target config.TargetConfig
}

// ProbeOutput is the JSON output of one probed target.
type ProbeOutput struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	OK        bool   `json:"ok"`
	Version   string `json:"version,omitempty"`
	LatencyMS int64  `json:"latency_ms,omitempty"`
	Error     string `json:"error,omitempty"`
}

// NewProbeCommand creates the probe command.
func NewProbeCommand() *cobra.Command {
	opts := &ProbeOptions{}

	cmd := &cobra.Command{
		Use:   "probe [target...]",
		Short: "Check connectivity to configured databases",
		Long: `Open a connection to each database target, ping it and report the server
version and round-trip latency.

Targets come from the targets section of bankdash.yaml. Passing --type probes
an ad-hoc target built from the flags instead.

Available types: ` + strings.Join(dbprobe.List(), ", "),
		Example: `  # Probe every configured target
  bankdash probe

  # Probe one configured target
  bankdash probe core

  # Probe an ad-hoc target
  bankdash probe --type postgresql --host db.internal --port 5432 --user ops --database accounts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd, args, opts)
		},
	}

	t := &opts.Target
	cmd.Flags().StringVar(&t.Type, "type", "", "Database type")
	cmd.Flags().StringVar(&t.Host, "host", "", "Server host")
	cmd.Flags().IntVar(&t.Port, "port", 0, "Server port")
	cmd.Flags().StringVar(&t.Database, "database", "", "Database name")
	cmd.Flags().StringVar(&t.User, "user", "", "User name")
	cmd.Flags().StringVar(&t.Password, "password", "", "Password")
	cmd.Flags().StringVar(&t.Path, "path", "", "Database file (sqlite, duckdb)")
	cmd.Flags().DurationVar(&t.Timeout, "timeout", 0, "Probe timeout (default 5s)")

	return cmd
}

type namedTarget struct {
	name   string
	target dbprobe.Target
}

func runProbe(cmd *cobra.Command, args []string, opts *ProbeOptions) error {
	cc := NewCommandContext(cmd)

	targets, err := probeTargets(cc.Cfg, args, opts)
	if err != nil {
		return err
	}

	results := make([]ProbeOutput, 0, len(targets))
	failed := 0
	for _, nt := range targets {
		res, err := dbprobe.Probe(cmd.Context(), nt.target, cc.Logger)
		out := ProbeOutput{Name: nt.name, Type: dbprobe.Normalize(nt.target.Type)}
		if err != nil {
			failed++
			out.Error = err.Error()
		} else {
			out.OK = true
			out.Version = res.Version
			out.LatencyMS = res.Latency.Milliseconds()
		}
		results = append(results, out)
	}

	renderProbeResults(cc.Renderer, results)

	if failed > 0 {
		return fmt.Errorf("%d of %d targets unreachable", failed, len(results))
	}
	return nil
}

func probeTargets(cfg *config.Config, args []string, opts *ProbeOptions) ([]namedTarget, error) {
	if opts.Target.Type != "" {
		if len(args) > 0 {
			return nil, errors.New("target names cannot be combined with --type")
		}
		return []namedTarget{{name: "ad-hoc", target: opts.Target.ProbeTarget()}}, nil
	}

	if len(args) == 0 {
		for name := range cfg.Targets {
			args = append(args, name)
		}
		sort.Strings(args)
	}
	if len(args) == 0 {
		return nil, errors.New("no targets configured; add a targets section to bankdash.yaml or pass --type")
	}

	targets := make([]namedTarget, 0, len(args))
	for _, name := range args {
		t, ok := cfg.Targets[name]
		if !ok {
			return nil, fmt.Errorf("target %q is not configured", name)
		}
		targets = append(targets, namedTarget{name: name, target: t.ProbeTarget()})
	}
	return targets, nil
}

func renderProbeResults(r *output.Renderer, results []ProbeOutput) {
	if r.EffectiveMode() == output.ModeJSON {
		_ = r.JSON(results)
		return
	}

	r.Header(2, "Connection probe")
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		status := "ok"
		detail := res.Version
		latency := (time.Duration(res.LatencyMS) * time.Millisecond).String()
		if !res.OK {
			status = "failed"
			detail = firstLine(res.Error)
			latency = "-"
		}
		rows = append(rows, []string{res.Name, res.Type, status, latency, detail})
	}
	r.Table([]string{"Target", "Type", "Status", "Latency", "Detail"}, rows)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
