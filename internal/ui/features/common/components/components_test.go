package components

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/bankdash/internal/catalog"
	"github.com/leapstack-labs/bankdash/internal/ui/features/common"
	"github.com/leapstack-labs/bankdash/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestTile_CountColorByStatus(t *testing.T) {
	tests := []struct {
		status core.Status
		want   string
	}{
		{core.StatusComplete, "count-green"},
		{core.StatusFlagged, "count-cyan"},
		{core.StatusPending, "count-yellow"},
		{core.StatusUrgent, "count-yellow"},
		{core.StatusCritical, "count-yellow"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			html := render(t, Tile(core.Module{Title: "T", Count: "1", Status: tt.status, StatusText: "S"}, ""))
			assert.Contains(t, html, `class="count `+tt.want+`"`)
			assert.Contains(t, html, `class="chip chip-`+string(tt.status)+`"`)
			assert.NotContains(t, html, "data-on:click")
		})
	}
}

func TestModuleGrid_RendersEveryTileInOrder(t *testing.T) {
	mods := catalog.Default().Fallback(catalog.PanelCompliance)
	html := render(t, ModuleGrid(mods, func(title string) string { return "/x/" + title }))

	assert.Equal(t, len(mods), strings.Count(html, `class="tile"`))
	last := -1
	for _, m := range mods {
		idx := strings.Index(html, templ.EscapeString(m.Title))
		require.GreaterOrEqual(t, idx, 0, "missing %q", m.Title)
		assert.Greater(t, idx, last, "%q out of order", m.Title)
		last = idx
	}
	assert.Contains(t, html, ">98%<")
	assert.Contains(t, html, "@post(&#39;/x/Record Retention Compliance&#39;)")
}

func TestModuleGrid_Empty(t *testing.T) {
	html := render(t, ModuleGrid(nil, nil))
	assert.Equal(t, `<div class="tile-grid"></div>`, html)
}

func TestTile_EscapesText(t *testing.T) {
	html := render(t, Tile(core.Module{Title: "<script>", Count: "1", Status: core.StatusPending, StatusText: "a&b"}, ""))
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "a&amp;b")
}

func TestPage(t *testing.T) {
	page := common.PageData{
		Title:      "Dormant Analyser Dashboard",
		Nav:        []common.NavItem{{Label: "Dormant", Href: "/dormant", Active: true}},
		UpdatesURL: "/dormant/updates",
	}
	html := render(t, Page(page, Func(func(_ context.Context, b *Builder) { b.Element("p", "body") })))

	for _, want := range []string{
		"<!doctype html>",
		"<title>Dormant Analyser Dashboard - Bankdash</title>",
		`data-init="@get(&#39;/dormant/updates&#39;)"`,
		`id="ui-content"`,
		`class="nav-link active"`,
		"<p>body</p>",
		DatastarScript,
	} {
		assert.Contains(t, html, want)
	}
	assert.NotContains(t, html, "/reload")
}

func TestBannerAndModal(t *testing.T) {
	html := render(t, Banner("Failed to connect to API: boom", "hint"))
	assert.Contains(t, html, `role="alert"`)
	assert.Contains(t, html, "Failed to connect to API: boom")

	html = render(t, Modal("Connection Attempt", "saved", "/configuration/message/close"))
	assert.Contains(t, html, "<h4>Connection Attempt</h4>")
	assert.Contains(t, html, "/configuration/message/close")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestBuilder_StopsAtFirstError(t *testing.T) {
	err := Page(common.PageData{Title: "x"}, nil).Render(context.Background(), failingWriter{})
	assert.EqualError(t, err, "closed")
}

func TestClass(t *testing.T) {
	assert.Equal(t, "a c", Class("a", "", "c"))
	assert.Equal(t, "", Class())
	assert.Equal(t, "btn active", Class("btn", If(true, "active")))
}
