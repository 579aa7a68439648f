// Package config provides configuration management for the bankdash CLI.
//
// Values are merged from built-in defaults, bankdash.yaml, BANKDASH_*
// environment variables and explicitly set flags, in that order.
package config

import (
	"time"

	intconfig "github.com/leapstack-labs/bankdash/internal/config"
	"github.com/leapstack-labs/bankdash/internal/dbprobe"
)

// UIConfig holds configuration for the UI server.
type UIConfig struct {
	Port       int           `koanf:"port"`
	AutoOpen   bool          `koanf:"auto_open"`
	Dev        bool          `koanf:"dev"`
	SessionTTL time.Duration `koanf:"session_ttl"`
	// MockDelay is how long the mocked URL and Azure connectors take.
	MockDelay time.Duration `koanf:"mock_delay"`
}

// DefaultUIConfig returns a UIConfig with default values.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Port:       intconfig.DefaultUIPort,
		AutoOpen:   true,
		SessionTTL: intconfig.DefaultSessionTTL,
		MockDelay:  intconfig.DefaultMockDelay,
	}
}

// GetUIConfig returns the UI config with defaults applied for any unset values.
func (c *Config) GetUIConfig() *UIConfig {
	if c.UI == nil {
		return DefaultUIConfig()
	}
	ui := c.UI
	if ui.Port == 0 {
		ui.Port = intconfig.DefaultUIPort
	}
	if ui.SessionTTL == 0 {
		ui.SessionTTL = intconfig.DefaultSessionTTL
	}
	return ui
}

// BackendConfig holds configuration for the development backend.
type BackendConfig struct {
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`
}

// GetBackendConfig returns the backend config with defaults applied.
func (c *Config) GetBackendConfig() *BackendConfig {
	if c.Backend == nil {
		return &BackendConfig{Port: intconfig.DefaultBackendPort, Database: intconfig.DefaultBackendDB}
	}
	b := c.Backend
	if b.Port == 0 {
		b.Port = intconfig.DefaultBackendPort
	}
	if b.Database == "" {
		b.Database = intconfig.DefaultBackendDB
	}
	return b
}

// TargetConfig is a named database the probe command can check.
type TargetConfig struct {
	Type     string            `koanf:"type"`
	Host     string            `koanf:"host"`
	Port     int               `koanf:"port"`
	Database string            `koanf:"database"`
	User     string            `koanf:"user"`
	Password string            `koanf:"password"`
	Path     string            `koanf:"path"`
	Options  map[string]string `koanf:"options"`
	Timeout  time.Duration     `koanf:"timeout"`
}

// ProbeTarget converts the configuration into a probe target.
func (t TargetConfig) ProbeTarget() dbprobe.Target {
	return dbprobe.Target{
		Type:     t.Type,
		Host:     t.Host,
		Port:     t.Port,
		Database: t.Database,
		Username: t.User,
		Password: t.Password,
		Path:     t.Path,
		Options:  t.Options,
		Timeout:  t.Timeout,
	}
}

// Config holds all CLI configuration options.
type Config struct {
	Verbose       bool                    `koanf:"verbose"`
	OutputFormat  string                  `koanf:"output"`
	CatalogFile   string                  `koanf:"catalog_file"`
	StaleTime     time.Duration           `koanf:"stale_time"`
	HTTPTimeout   time.Duration           `koanf:"http_timeout"`
	SessionSecret string                  `koanf:"session_secret"`
	Endpoints     intconfig.Endpoints     `koanf:"endpoints"`
	UI            *UIConfig               `koanf:"ui"`
	Backend       *BackendConfig          `koanf:"backend"`
	Targets       map[string]TargetConfig `koanf:"targets"`

	// ProjectRoot is the directory holding the config file, or the working
	// directory when there is none. Relative paths are resolved against it.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultOutput        = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultSessionSecret = "bankdash-dev-secret-change-in-production" //nolint:gosec
	ConfigFileName       = "bankdash.yaml"
	ConfigFileNameAlt    = "bankdash.yml"
	EnvPrefix            = "BANKDASH_"
)
