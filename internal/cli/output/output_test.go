package output

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func newTest(mode Mode, isTTY bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, isTTY, mode), out, errOut
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		mode  Mode
		isTTY bool
		want  Mode
	}{
		{ModeAuto, true, ModeText},
		{ModeAuto, false, ModeMarkdown},
		{"", false, ModeMarkdown},
		{ModeText, false, ModeText},
		{ModeMarkdown, true, ModeMarkdown},
		{ModeJSON, true, ModeJSON},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			r, _, _ := newTest(tt.mode, tt.isTTY)
			assert.Equal(t, tt.want, r.EffectiveMode())
			assert.Equal(t, tt.isTTY, r.IsTTY())
		})
	}
}

func TestNewRenderer_BufferIsNotATerminal(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeAuto)
	assert.False(t, r.IsTTY())
	assert.Equal(t, ModeMarkdown, r.EffectiveMode())
}

func TestMarkdownOutput(t *testing.T) {
	r, out, errOut := newTest(ModeMarkdown, false)

	r.Header(2, "Compliance Analyser")
	r.StatusLine("Dormant Account Identifier", "live", "http://localhost:8000/api/dormant")
	r.Success("exported 5 rows")
	r.Muted("Fallback data")
	r.Warning("endpoint unreachable")
	r.Error("save failed")

	got := out.String()
	assert.Contains(t, got, "## Compliance Analyser\n")
	assert.Contains(t, got, "- **Dormant Account Identifier**: live (http://localhost:8000/api/dormant)")
	assert.Contains(t, got, "**✓** exported 5 rows")
	assert.Contains(t, got, "_Fallback data_")
	assert.Contains(t, errOut.String(), "**!** endpoint unreachable")
	assert.Contains(t, errOut.String(), "**✗** save failed")
	assert.False(t, ansi.MatchString(got+errOut.String()))
}

func TestTextOutput_NoEscapesWithoutTerminal(t *testing.T) {
	r, out, _ := newTest(ModeText, false)

	r.Header(1, "Modules")
	r.StatusLine("compliance", "fallback", "")
	r.Println(r.Styles().Green.Render("12"))

	got := out.String()
	assert.Contains(t, got, "Modules")
	assert.Contains(t, got, "compliance")
	assert.Contains(t, got, "12")
	assert.False(t, ansi.MatchString(got))
}

func TestTable(t *testing.T) {
	header := []string{"Module", "Count"}
	rows := [][]string{{"Transaction Monitoring", "12"}, {"KYC Verification", "8"}}

	t.Run("markdown", func(t *testing.T) {
		r, out, _ := newTest(ModeMarkdown, false)
		r.Table(header, rows)
		got := out.String()
		assert.Contains(t, got, "| Module | Count |")
		assert.Contains(t, got, "| Transaction Monitoring | 12 |")
	})

	t.Run("text", func(t *testing.T) {
		r, out, _ := newTest(ModeText, false)
		r.Table(header, rows)
		got := out.String()
		assert.Contains(t, got, "MODULE")
		assert.Contains(t, got, "KYC Verification")
		assert.Contains(t, got, "┌")
	})
}

func TestJSON(t *testing.T) {
	r, out, _ := newTest(ModeJSON, false)
	require.NoError(t, r.JSON(map[string]int{"count": 3}))
	assert.Equal(t, "{\n  \"count\": 3\n}\n", out.String())
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "# Title", FormatHeader(0, "Title"))
	assert.Equal(t, "### Title", FormatHeader(3, "Title"))
	assert.Equal(t, "###### Title", FormatHeader(9, "Title"))
	assert.Equal(t, "- **Source:** Fallback data", FormatKeyValue("Source", "Fallback data"))
	assert.True(t, strings.HasPrefix(FormatKeyValue("a", "b"), "- "))
}
