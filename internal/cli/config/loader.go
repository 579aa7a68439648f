package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	intconfig "github.com/leapstack-labs/bankdash/internal/config"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
// This key is shared with root.go via both using the same type.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
)

// flagKeys maps flags whose names differ from their config keys.
var flagKeys = map[string]string{
	"catalog":             "catalog_file",
	"compliance-endpoint": "endpoints.compliance",
	"dormant-endpoint":    "endpoints.dormant",
}

// skipFlags are persistent flags that are not configuration values.
var skipFlags = map[string]bool{
	"config":   true,
	"env-file": true,
	"help":     true,
}

// FlagKey returns the config key set by the persistent flag name.
// It reports false for flags that are not configuration values.
func FlagKey(name string) (string, bool) {
	if skipFlags[name] {
		return "", false
	}
	if key, ok := flagKeys[name]; ok {
		return key, true
	}
	return strings.ReplaceAll(name, "-", "_"), true
}

// EnvVar returns the environment variable that sets key, e.g.
// ui.port -> BANKDASH_UI__PORT.
func EnvVar(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "__"))
}

// configExistsIn reports the config file in dir, or "".
func configExistsIn(dir string) string {
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findConfigUpward searches upward from startDir for a bankdash config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findConfigUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if found := configExistsIn(dir); found != "" {
			return found
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty, absolute or :memory:.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")

	cwd, _ := os.Getwd()
	if cwd == "" {
		cwd = "."
	}

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"verbose":          false,
		"output":           DefaultOutput,
		"stale_time":       intconfig.DefaultStaleTime.String(),
		"http_timeout":     intconfig.DefaultHTTPTimeout.String(),
		"session_secret":   DefaultSessionSecret,
		"ui.port":          intconfig.DefaultUIPort,
		"ui.auto_open":     true,
		"ui.session_ttl":   intconfig.DefaultSessionTTL.String(),
		"ui.mock_delay":    intconfig.DefaultMockDelay.String(),
		"backend.port":     intconfig.DefaultBackendPort,
		"backend.database": intconfig.DefaultBackendDB,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	configFileUsed = cfgFile
	if configFileUsed == "" {
		configFileUsed = findConfigUpward(cwd)
	}
	projectRoot := cwd
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
		if abs, err := filepath.Abs(configFileUsed); err == nil {
			projectRoot = filepath.Dir(abs)
		}
	}

	// 3. Load environment variables (BANKDASH_ prefix)
	// Transform: BANKDASH_UI__PORT -> ui.port, BANKDASH_STALE_TIME -> stale_time
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	var flagCatalog string
	if flags != nil {
		if flags.Changed("catalog") {
			if v, _ := flags.GetString("catalog"); v != "" {
				flagCatalog, _ = filepath.Abs(v)
			}
		}
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key, ok := FlagKey(f.Name)
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. Resolve relative paths against the project root. Paths given as
	// flags are relative to the working directory instead.
	cfg.ProjectRoot = projectRoot
	if flagCatalog != "" {
		cfg.CatalogFile = flagCatalog
	} else {
		cfg.CatalogFile = resolvePathRelativeTo(cfg.CatalogFile, projectRoot)
	}
	backend := cfg.GetBackendConfig()
	backend.Database = resolvePathRelativeTo(backend.Database, projectRoot)
	cfg.Backend = backend

	expandConfigEnvVars(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Store config for access by commands
	currentConfig = &cfg

	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
			return l
		}
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}

// expandConfigEnvVars expands environment variables in secrets, endpoints
// and target credentials.
func expandConfigEnvVars(cfg *Config) {
	cfg.SessionSecret = expandEnvVars(cfg.SessionSecret)

	e := &cfg.Endpoints
	for _, v := range []*string{&e.Compliance, &e.Dormant, &e.DatabaseTypes, &e.SaveConnection, &e.ExportSource} {
		*v = expandEnvVars(*v)
	}

	for name, t := range cfg.Targets {
		t.Host = expandEnvVars(t.Host)
		t.User = expandEnvVars(t.User)
		t.Password = expandEnvVars(t.Password)
		t.Database = expandEnvVars(t.Database)
		t.Path = expandEnvVars(t.Path)
		cfg.Targets[name] = t
	}
}
