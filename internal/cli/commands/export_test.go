package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clitestutil "github.com/leapstack-labs/bankdash/internal/cli/testutil"
)

func TestExport_WritesDefaultFile(t *testing.T) {
	backend := clitestutil.StartBackend(t)
	loadTestConfig(t, "endpoints:\n  export_source: "+backend.URL+"/api/data\n")
	t.Chdir(t.TempDir())

	out, _, err := execute(t, NewExportCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "to exported-data.csv")

	data, err := os.ReadFile("exported-data.csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "account_id,"), "header: %q", firstLine(string(data)))
	assert.Contains(t, string(data), "AE-0001")
}

func TestExport_FileFlagCreatesDirectory(t *testing.T) {
	backend := clitestutil.StartBackend(t)
	loadTestConfig(t, "")
	path := filepath.Join(t.TempDir(), "reports", "dormant.csv")

	_, _, err := execute(t, NewExportCommand(), "--source", backend.URL+"/api/data", "-f", path)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestExport_Stdout(t *testing.T) {
	backend := clitestutil.StartBackend(t)
	loadTestConfig(t, "")

	out, _, err := execute(t, NewExportCommand(), "--source", backend.URL+"/api/data", "-f", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "account_id,"))
	assert.NotContains(t, out, "Wrote")
}

func TestExport_Failure(t *testing.T) {
	backend := clitestutil.StartBackend(t)
	loadTestConfig(t, "")
	dir := t.TempDir()
	t.Chdir(dir)

	_, _, err := execute(t, NewExportCommand(), "--source", backend.URL+"/nope")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Download failed: "), err.Error())
	assert.NoFileExists(t, filepath.Join(dir, "exported-data.csv"))
}
