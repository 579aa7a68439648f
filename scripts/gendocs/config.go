package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/bankdash/internal/cli/config"
	intconfig "github.com/leapstack-labs/bankdash/internal/config"
)

// ConfigField represents a bankdash.yaml key.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
	Category    string // "general", "endpoints", "ui", "backend", "targets"
}

// Key returns the dotted koanf key of the field. Target fields use a
// <name> placeholder for the target name.
func (f ConfigField) Key() string {
	switch f.Category {
	case "general":
		return f.Name
	case "targets":
		return "targets.<name>." + f.Name
	default:
		return f.Category + "." + f.Name
	}
}

// getConfigSchema returns the keys of internal/cli/config.Config.
func getConfigSchema() []ConfigField {
	return []ConfigField{
		{Name: "output", Type: "string", Default: config.DefaultOutput, Description: "Output format: auto, text, markdown or json", Category: "general"},
		{Name: "verbose", Type: "bool", Default: "false", Description: "Debug logging", Category: "general"},
		{Name: "catalog_file", Type: "string", Description: "Panel catalog overlaying the built-in panels; reloaded on change", Category: "general"},
		{Name: "stale_time", Type: "duration", Default: intconfig.DefaultStaleTime.String(), Description: "How long fetched modules stay fresh", Category: "general"},
		{Name: "http_timeout", Type: "duration", Default: intconfig.DefaultHTTPTimeout.String(), Description: "Timeout of every API request", Category: "general"},
		{Name: "session_secret", Type: "string", Description: "Key signing the dashboard session cookie", Category: "general"},

		{Name: "compliance", Type: "url", Description: "Module API of the compliance analyser; empty shows fallback tiles", Category: "endpoints"},
		{Name: "dormant", Type: "url", Description: "Initial module API of the dormant analyser; the user connects it from the panel", Category: "endpoints"},
		{Name: "database_types", Type: "url", Default: intconfig.DefaultDatabaseTypesURL, Description: "Database type list of the connection form", Category: "endpoints"},
		{Name: "save_connection", Type: "url", Default: intconfig.DefaultSaveConnectionURL, Description: "Connection save API", Category: "endpoints"},
		{Name: "export_source", Type: "url", Default: intconfig.DefaultExportSourceURL, Description: "JSON data set behind the CSV export", Category: "endpoints"},

		{Name: "port", Type: "int", Default: fmt.Sprint(intconfig.DefaultUIPort), Description: "Dashboard port", Category: "ui"},
		{Name: "auto_open", Type: "bool", Default: "true", Description: "Open the browser on start", Category: "ui"},
		{Name: "dev", Type: "bool", Default: "false", Description: "Development mode", Category: "ui"},
		{Name: "session_ttl", Type: "duration", Default: intconfig.DefaultSessionTTL.String(), Description: "Idle time before a session's state is dropped", Category: "ui"},
		{Name: "mock_delay", Type: "duration", Default: intconfig.DefaultMockDelay.String(), Description: "Duration of the mocked URL and Azure connectors", Category: "ui"},

		{Name: "port", Type: "int", Default: fmt.Sprint(intconfig.DefaultBackendPort), Description: "Development backend port", Category: "backend"},
		{Name: "database", Type: "string", Default: intconfig.DefaultBackendDB, Description: "SQLite file holding the seeded data", Category: "backend"},

		{Name: "type", Type: "string", Description: "postgres, mysql, sqlite, duckdb or mongodb", Category: "targets"},
		{Name: "host", Type: "string", Description: "Server host", Category: "targets"},
		{Name: "port", Type: "int", Description: "Server port", Category: "targets"},
		{Name: "database", Type: "string", Description: "Database name", Category: "targets"},
		{Name: "user", Type: "string", Description: "User name", Category: "targets"},
		{Name: "password", Type: "string", Description: "Password; use ${VAR} to read it from the environment", Category: "targets"},
		{Name: "path", Type: "string", Description: "Database file (sqlite, duckdb)", Category: "targets"},
		{Name: "timeout", Type: "duration", Description: "Probe timeout", Category: "targets"},
		{Name: "options", Type: "map[string]string", Description: "Driver-specific DSN options", Category: "targets"},
	}
}

var configSections = []struct {
	category string
	title    string
	intro    string
}{
	{"general", "General", "Top-level keys."},
	{"endpoints", "Endpoints", "Remote APIs, under the `endpoints` key."},
	{"ui", "Dashboard", "Web dashboard settings, under the `ui` key."},
	{"backend", "Development Backend", "Settings of `bankdash backend`, under the `backend` key."},
	{"targets", "Probe Targets", "Named databases checked by `bankdash probe`, under `targets.<name>`."},
}

// generateConfigDocs generates the bankdash.yaml reference page.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating configuration docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Configuration", "bankdash configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph(fmt.Sprintf("bankdash reads `%s` from the working directory or the nearest parent directory.", config.ConfigFileName))

	fields := getConfigSchema()
	for _, section := range configSections {
		w.Header(2, section.title)
		w.Paragraph(section.intro)

		var rows [][]string
		for _, f := range fields {
			if f.Category != section.category {
				continue
			}
			defVal := f.Default
			if defVal == "" {
				defVal = "-"
			} else {
				defVal = InlineCode(defVal)
			}
			rows = append(rows, []string{InlineCode(f.Name), f.Type, defVal, f.Description})
		}
		w.Table([]string{"Field", "Type", "Default", "Description"}, rows)
	}

	w.Header(2, "Example")
	w.CodeBlock("yaml", `# bankdash.yaml
output: text
stale_time: 2m

endpoints:
  compliance: http://localhost:8000/api/compliance
  dormant: http://localhost:8000/api/dormant

ui:
  port: 8765
  session_ttl: 72h

targets:
  core:
    type: postgres
    host: db.internal
    port: 5432
    user: ops
    password: ${CORE_DB_PASSWORD}
    database: accounts`)

	filename := filepath.Join(outDir, "configuration.md")
	log.Printf("  Generated configuration.md")
	return os.WriteFile(filename, w.Bytes(), 0600)
}
