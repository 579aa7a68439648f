package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/bankdash/internal/cli/config"
)

func runRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := NewRootCmd()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRoot_Subcommands(t *testing.T) {
	cmd := NewRootCmd()
	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"version", "ui", "backend", "modules", "export", "connect", "probe", "tui", "completion"} {
		assert.Contains(t, names, want)
	}
}

func TestRoot_PersistentFlags(t *testing.T) {
	pf := NewRootCmd().PersistentFlags()
	for _, name := range []string{"config", "env-file", "verbose", "output", "catalog", "stale-time", "http-timeout", "compliance-endpoint", "dormant-endpoint"} {
		assert.NotNil(t, pf.Lookup(name), "flag %q should exist", name)
	}
	assert.Equal(t, ".env", pf.Lookup("env-file").DefValue)
}

func TestRoot_Version(t *testing.T) {
	t.Chdir(t.TempDir())
	out, _, err := runRoot(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "bankdash "+Version)
}

func TestRoot_Completion(t *testing.T) {
	out, _, err := runRoot(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "bankdash")

	_, _, err = runRoot(t, "completion", "tcsh")
	require.Error(t, err)
}

func TestRoot_OutputFlagReachesCommands(t *testing.T) {
	t.Chdir(t.TempDir())
	out, _, err := runRoot(t, "modules", "compliance", "-o", "json")
	require.NoError(t, err)

	var got struct {
		Panels []struct {
			ID string `json:"id"`
		} `json:"panels"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Panels, 1)
	assert.Equal(t, "compliance", got.Panels[0].ID)
}

func TestRoot_InvalidOutputFlag(t *testing.T) {
	t.Chdir(t.TempDir())
	_, _, err := runRoot(t, "modules", "-o", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestRoot_EnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BANKDASH_OUTPUT=json\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("BANKDASH_OUTPUT") })

	out, _, err := runRoot(t, "modules", "dormant")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)), "expected JSON output, got: %s", out)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.env")

	assert.NoError(t, loadEnvFile("", true))
	assert.NoError(t, loadEnvFile(missing, false), "a missing default file is ignored")

	err := loadEnvFile(missing, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load env file")
}

func TestGetConfig_Default(t *testing.T) {
	cfg := GetConfig(context.Background())
	assert.Equal(t, config.DefaultOutput, cfg.OutputFormat)
	assert.NotZero(t, cfg.UI.Port)
}
