package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

var validOutputs = []string{"auto", "text", "markdown", "json"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(validOutputs, c.OutputFormat) {
		return fmt.Errorf("invalid output format %q (want one of %s)", c.OutputFormat, strings.Join(validOutputs, ", "))
	}
	if c.StaleTime < 0 {
		return fmt.Errorf("stale_time must not be negative")
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("http_timeout must not be negative")
	}

	ui := c.GetUIConfig()
	if err := validatePort("ui.port", ui.Port); err != nil {
		return err
	}
	if err := validatePort("backend.port", c.GetBackendConfig().Port); err != nil {
		return err
	}

	for key, v := range map[string]string{
		"endpoints.compliance":      c.Endpoints.Compliance,
		"endpoints.dormant":         c.Endpoints.Dormant,
		"endpoints.database_types":  c.Endpoints.DatabaseTypes,
		"endpoints.save_connection": c.Endpoints.SaveConnection,
		"endpoints.export_source":   c.Endpoints.ExportSource,
	} {
		if err := validateURL(key, v); err != nil {
			return err
		}
	}

	for name, t := range c.Targets {
		if t.Type == "" {
			return fmt.Errorf("targets.%s: type is required", name)
		}
	}
	return nil
}

func validatePort(key string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535, got %d", key, port)
	}
	return nil
}

// validateURL accepts an empty value or an absolute http(s) URL.
func validateURL(key, v string) error {
	if v == "" {
		return nil
	}
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", key, v)
	}
	return nil
}
