package commands

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/leapstack-labs/bankdash/internal/catalog"
	"github.com/leapstack-labs/bankdash/internal/cli/config"
	"github.com/leapstack-labs/bankdash/internal/cli/output"
	intconfig "github.com/leapstack-labs/bankdash/internal/config"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext for cmd.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}
}

// HTTPClient returns a client bounded by the configured timeout.
func (c *CommandContext) HTTPClient() *http.Client {
	timeout := c.Cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = intconfig.DefaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

// Endpoints returns the configured endpoints with form and export defaults
// filled in.
func (c *CommandContext) Endpoints() intconfig.Endpoints {
	e := c.Cfg.Endpoints
	intconfig.ApplyEndpointDefaults(&e)
	return e
}

// Catalog returns the built-in panels overlaid with the catalog file, if any.
func (c *CommandContext) Catalog() (*catalog.Catalog, error) {
	cat := catalog.Default()
	if c.Cfg.CatalogFile == "" {
		return cat, nil
	}
	loaded, err := catalog.LoadFile(c.Cfg.CatalogFile, cat)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", c.Cfg.CatalogFile, err)
	}
	return loaded, nil
}

// getConfig returns the current configuration, or defaults when no
// configuration was loaded (commands executed directly in tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		OutputFormat:  config.DefaultOutput,
		StaleTime:     intconfig.DefaultStaleTime,
		HTTPTimeout:   intconfig.DefaultHTTPTimeout,
		SessionSecret: config.DefaultSessionSecret,
		UI:            config.DefaultUIConfig(),
	}
}
