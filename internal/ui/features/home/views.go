package home

import (
	"context"
	"strconv"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/bankdash/internal/ui/features/common"
	"github.com/leapstack-labs/bankdash/internal/ui/features/common/components"
)

// Title is the heading of the landing page.
const Title = "Dashboard"

// FragmentID is the element id of the patchable landing page body.
const FragmentID = "home"

// Fragment renders a card per panel linking to its page.
func Fragment(summaries []PanelSummary) templ.Component {
	return components.Func(func(_ context.Context, b *components.Builder) {
		b.Open("div", "id", FragmentID, "class", "panel")
		b.Element("h1", Title, "class", "panel-title")
		b.Open("div", "class", "card-grid")
		for _, s := range summaries {
			b.Open("a", "class", "card card-link", "href", common.PanelPath(s.Panel.ID))
			b.Element("h3", s.Panel.Title)
			b.Element("p", strconv.Itoa(len(s.Snapshot.Modules))+" modules", "class", "count")
			b.Element("p", s.Source(), "class", "muted")
			b.Close("a")
		}
		b.Close("div")
		b.Close("div")
	})
}
