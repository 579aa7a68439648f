// Package config holds defaults shared by the CLI, the web dashboard and the
// development backend.
package config

import (
	"strconv"
	"time"
)

// Default configuration values.
const (
	DefaultUIPort         = 8765
	DefaultBackendPort    = 8000
	DefaultStaleTime      = 5 * time.Minute
	DefaultHTTPTimeout    = 15 * time.Second
	DefaultSessionTTL     = 30 * 24 * time.Hour
	DefaultMockDelay      = time.Second
	DefaultBackendDB      = ".bankdash/backend.db"
	DefaultExportFilename = "exported-data.csv"
)

// Default remote endpoints used by the configuration and upload panels.
const (
	DefaultDatabaseTypesURL  = "https://db-api-service-641805125303.us-central1.run.app/db/databases"
	DefaultSaveConnectionURL = "https://db-api-service-641805125303.us-central1.run.app/db/connections/save"
	DefaultExportSourceURL   = "https://banking-compliance-api-724464214717.us-central1.run.app/api/data"
)

// DefaultEndpointPlaceholder is the hint shown in empty endpoint inputs.
const DefaultEndpointPlaceholder = "http://localhost:8000/api/dormant"

// Endpoints groups every remote URL a panel may call.
// An empty analyser endpoint means the panel renders its fallback list.
type Endpoints struct {
	Compliance     string `koanf:"compliance"`
	Dormant        string `koanf:"dormant"`
	DatabaseTypes  string `koanf:"database_types"`
	SaveConnection string `koanf:"save_connection"`
	ExportSource   string `koanf:"export_source"`
}

// ApplyEndpointDefaults fills unset form and export endpoints.
// Analyser endpoints are left untouched: empty is meaningful for them.
func ApplyEndpointDefaults(e *Endpoints) {
	if e == nil {
		return
	}
	if e.DatabaseTypes == "" {
		e.DatabaseTypes = DefaultDatabaseTypesURL
	}
	if e.SaveConnection == "" {
		e.SaveConnection = DefaultSaveConnectionURL
	}
	if e.ExportSource == "" {
		e.ExportSource = DefaultExportSourceURL
	}
}

// LocalEndpoints returns the endpoints served by a development backend on port.
func LocalEndpoints(port int) Endpoints {
	base := "http://localhost:" + strconv.Itoa(port)
	return Endpoints{
		Compliance:     base + "/api/compliance",
		Dormant:        base + "/api/dormant",
		DatabaseTypes:  base + "/db/databases",
		SaveConnection: base + "/db/connections/save",
		ExportSource:   base + "/api/data",
	}
}

// ForPanel returns the module endpoint of an analyser panel, or "" for
// panels without one.
func (e Endpoints) ForPanel(panel string) string {
	switch panel {
	case "compliance":
		return e.Compliance
	case "dormant":
		return e.Dormant
	default:
		return ""
	}
}
