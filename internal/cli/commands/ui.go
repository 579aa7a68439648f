package commands

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/leapstack-labs/bankdash/internal/ui"
	"github.com/spf13/cobra"
)

// UIOptions holds options for the ui command.
type UIOptions struct {
	Port      int
	NoBrowser bool
	Dev       bool
}

// NewUICommand creates the ui command.
func NewUICommand() *cobra.Command {
	opts := &UIOptions{}

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Start the compliance dashboard",
		Long: `Start a local web server serving the banking compliance dashboard.

The dashboard provides:
- Compliance and dormant account analysers with live or fallback tiles
- The data connection configuration form
- File, URL and Azure SQL upload cards with CSV export`,
		Example: `  # Start UI on default port
  bankdash ui

  # Start on custom port
  bankdash ui --port 3000

  # Point the dormant analyser at the local backend
  bankdash ui --dormant-endpoint http://localhost:8000/api/dormant`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUI(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Dev, "dev", false, "Enable live reload of the page")

	return cmd
}

func runUI(cmd *cobra.Command, opts *UIOptions) error {
	cc := NewCommandContext(cmd)
	cfg := cc.Cfg

	// Get UI config with defaults
	uiCfg := cfg.GetUIConfig()

	// CLI flags override config file
	port := uiCfg.Port
	if opts.Port != 0 {
		port = opts.Port
	}

	autoOpen := uiCfg.AutoOpen
	if opts.NoBrowser {
		autoOpen = false
	}

	dev := uiCfg.Dev
	if cmd.Flags().Changed("dev") {
		dev = opts.Dev
	}

	server, err := ui.NewServer(ui.Config{
		CatalogFile:   cfg.CatalogFile,
		Endpoints:     cc.Endpoints(),
		HTTPTimeout:   cfg.HTTPTimeout,
		StaleTime:     cfg.StaleTime,
		SessionTTL:    uiCfg.SessionTTL,
		MockDelay:     uiCfg.MockDelay,
		Port:          port,
		SessionSecret: cfg.SessionSecret,
		Dev:           dev,
		Logger:        cc.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create UI server: %w", err)
	}

	url := fmt.Sprintf("http://localhost:%d", port)
	if autoOpen {
		go openBrowser(url)
	}

	cc.Renderer.Printf("Starting UI server on %s\n", url)
	cc.Renderer.Println("Press Ctrl+C to stop")

	return server.Serve(cmd.Context())
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
