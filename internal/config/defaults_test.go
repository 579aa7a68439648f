package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyEndpointDefaults(t *testing.T) {
	e := Endpoints{SaveConnection: "http://localhost:8000/db/connections/save"}
	ApplyEndpointDefaults(&e)

	assert.Equal(t, DefaultDatabaseTypesURL, e.DatabaseTypes)
	assert.Equal(t, "http://localhost:8000/db/connections/save", e.SaveConnection)
	assert.Equal(t, DefaultExportSourceURL, e.ExportSource)
	assert.Empty(t, e.Compliance)
	assert.Empty(t, e.Dormant)

	ApplyEndpointDefaults(nil)
}

func TestLocalEndpoints(t *testing.T) {
	e := LocalEndpoints(9000)
	assert.Equal(t, "http://localhost:9000/api/compliance", e.Compliance)
	assert.Equal(t, "http://localhost:9000/api/dormant", e.Dormant)
	assert.Equal(t, "http://localhost:9000/db/databases", e.DatabaseTypes)
	assert.Equal(t, "http://localhost:9000/db/connections/save", e.SaveConnection)
	assert.Equal(t, "http://localhost:9000/api/data", e.ExportSource)
}

func TestEndpoints_ForPanel(t *testing.T) {
	e := Endpoints{Compliance: "http://c/api", Dormant: "http://d/api", ExportSource: "http://x/data"}

	assert.Equal(t, "http://c/api", e.ForPanel("compliance"))
	assert.Equal(t, "http://d/api", e.ForPanel("dormant"))
	assert.Empty(t, e.ForPanel("export"))
}
