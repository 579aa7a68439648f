package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/bankdash/internal/catalog"
	"github.com/leapstack-labs/bankdash/internal/cli"
	"github.com/leapstack-labs/bankdash/internal/cli/config"
)

func TestPanelMarkdown(t *testing.T) {
	fragment := `<div id="other"><p>skip</p></div>` +
		`<div id="panel-dormant"><h2>Dormant Analyser Dashboard</h2>` +
		`<input type="text" placeholder="http://localhost:8000/api/dormant">` +
		`<div class="tile"><h3>Safe Deposit Dormancy</h3><p>1,247</p></div></div>`

	md, err := panelMarkdown(fragment, "panel-dormant")
	require.NoError(t, err)

	assert.Contains(t, md, "## Dormant Analyser Dashboard")
	assert.Contains(t, md, "### Safe Deposit Dormancy")
	assert.Contains(t, md, "1,247")
	assert.NotContains(t, md, "skip")
	assert.NotContains(t, md, "placeholder")
}

func TestPanelMarkdown_MissingElement(t *testing.T) {
	_, err := panelMarkdown(`<div id="a"></div>`, "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "#b not found")
}

func TestMarkdownWriter_Table(t *testing.T) {
	w := NewMarkdownWriter()
	w.Table([]string{"Field", "Type"}, [][]string{{InlineCode("output"), "a|b"}})

	assert.Equal(t, "| Field | Type |\n| --- | --- |\n| `output` | a\\|b |\n\n", string(w.Bytes()))
}

func TestDedent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"spaces", "  # Write to stdout\n  bankdash export -f -\n", "# Write to stdout\nbankdash export -f -"},
		{"nested indent kept", "\n    bankdash tui \\\n      --dormant-endpoint x\n", "bankdash tui \\\n  --dormant-endpoint x"},
		{"blank line inside", "  a\n\n  b", "a\n\nb"},
		{"no indent", "bankdash ui", "bankdash ui"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dedent(tt.in))
		})
	}
}

func TestCLIIndex_DerivedFromConfig(t *testing.T) {
	schema := getConfigSchema()
	md := string(cliIndex(cli.NewRootCmd(), catalog.Default(), schema))

	for _, f := range schema {
		assert.Contains(t, md, InlineCode(config.EnvVar(f.Key())), f.Key())
	}
	assert.Contains(t, md, "`BANKDASH_UI__SESSION_TTL`")
	assert.Contains(t, md, "`BANKDASH_TARGETS__<NAME>__HOST`")

	assert.Contains(t, md, "## Panel Endpoints")
	assert.Contains(t, md, "| Compliance Analyser Dashboard | `endpoints.compliance` | `--compliance-endpoint` | `BANKDASH_ENDPOINTS__COMPLIANCE` | Fetched on start |")
	assert.Contains(t, md, "| Dormant Analyser Dashboard | `endpoints.dormant` | `--dormant-endpoint` | `BANKDASH_ENDPOINTS__DORMANT` |")
	assert.Contains(t, md, "| `--stale-time` | duration |")
}
