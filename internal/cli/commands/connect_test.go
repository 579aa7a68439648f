package commands

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clitestutil "github.com/leapstack-labs/bankdash/internal/cli/testutil"
	"github.com/leapstack-labs/bankdash/internal/connector"
)

func backendConfig(url string, extra string) string {
	return extra + `endpoints:
  database_types: ` + url + `/db/databases
  save_connection: ` + url + `/db/connections/save
`
}

func connectionArgs(overrides ...string) []string {
	args := []string{
		"--name", "core-banking",
		"--type", "postgresql",
		"--server", "db.internal",
		"--database", "accounts",
		"--port", "5432",
		"--user", "ops",
	}
	return append(args, overrides...)
}

func savedConnectionCount(t *testing.T, baseURL string) int {
	t.Helper()
	resp, err := http.Get(baseURL + "/db/connections")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		Connections []json.RawMessage `json:"connections"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return len(body.Connections)
}

func TestConnect_ListTypes(t *testing.T) {
	backend := clitestutil.StartBackend(t)
	loadTestConfig(t, backendConfig(backend.URL, "output: json\n"))

	out, _, err := execute(t, NewConnectCommand(), "--types")
	require.NoError(t, err)

	var types []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &types))
	require.NotEmpty(t, types)
	assert.Equal(t, "postgresql", types[0].ID)
	assert.Equal(t, "PostgreSQL", types[0].Name)
}

func TestConnect_ListTypesMarkdown(t *testing.T) {
	backend := clitestutil.StartBackend(t)
	loadTestConfig(t, backendConfig(backend.URL, ""))

	out, _, err := execute(t, NewConnectCommand(), "--types")
	require.NoError(t, err)
	assert.Contains(t, out, "| postgresql | PostgreSQL |")
}

func TestConnect_Saves(t *testing.T) {
	backend := clitestutil.StartBackend(t)
	loadTestConfig(t, backendConfig(backend.URL, ""))

	out, _, err := execute(t, NewConnectCommand(), connectionArgs()...)
	require.NoError(t, err)
	assert.Contains(t, out, connector.MsgSaved)
	assert.Equal(t, 1, savedConnectionCount(t, backend.URL))
}

func TestConnect_DefaultsToFirstType(t *testing.T) {
	backend := clitestutil.StartBackend(t)
	loadTestConfig(t, backendConfig(backend.URL, "output: json\n"))

	args := connectionArgs()
	args = append(args[:2], args[4:]...) // drop --type
	out, _, err := execute(t, NewConnectCommand(), args...)
	require.NoError(t, err)

	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Success)
	assert.Contains(t, result.Message, "'core-banking'")
}

func TestConnect_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing field", []string{"--name", "core-banking", "--type", "postgresql", "--port", "5432"}, connector.MsgMissingFields},
		{"non-numeric port", connectionArgs("--port", "abc"), connector.MsgInvalidPort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := clitestutil.StartBackend(t)
			loadTestConfig(t, backendConfig(backend.URL, ""))

			_, _, err := execute(t, NewConnectCommand(), tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
			assert.Equal(t, 0, savedConnectionCount(t, backend.URL))
		})
	}
}

func TestConnect_DuplicateName(t *testing.T) {
	backend := clitestutil.StartBackend(t)
	loadTestConfig(t, backendConfig(backend.URL, ""))

	_, _, err := execute(t, NewConnectCommand(), connectionArgs()...)
	require.NoError(t, err)

	_, _, err = execute(t, NewConnectCommand(), connectionArgs()...)
	require.Error(t, err)
	assert.Equal(t, "Failed to save connection details: a connection with this name already exists", err.Error())
	assert.Equal(t, 1, savedConnectionCount(t, backend.URL))
}
