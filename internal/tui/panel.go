package tui

import (
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/riskibarqy/whereismatch/internal/domain/catalog"
	"github.com/riskibarqy/whereismatch/internal/domain/selection"
)

const noResultsLabel = "No results"

// option is one row of a filter panel. The sentinel row stands in for an
// empty list and can never be selected.
type option struct {
	item     catalog.Item
	selected bool
	sentinel bool
}

// filterPanel is the list and search box for one dimension.
type filterPanel struct {
	dim    catalog.Dimension
	search textinput.Model
	cursor int
}

func newFilterPanel(dim catalog.Dimension) *filterPanel {
	ti := textinput.New()
	ti.Placeholder = "Search " + dim.Title() + "..."
	ti.CharLimit = 64
	ti.Width = 20
	ti.Prompt = "/ "
	ti.PromptStyle = AccentStyle
	ti.PlaceholderStyle = DimStyle

	return &filterPanel{dim: dim, search: ti}
}

// options lists the visible rows in universe order.
func (p *filterPanel) options(set *selection.Set) []option {
	var out []option
	for item := range set.VisibleItems(p.search.Value()) {
		out = append(out, option{item: item, selected: set.Selected(item.ID)})
	}
	if len(out) == 0 {
		return []option{{item: catalog.Item{Name: noResultsLabel}, sentinel: true}}
	}
	return out
}

// current returns the row under the cursor after clamping it.
func (p *filterPanel) current(set *selection.Set) option {
	opts := p.options(set)
	p.clamp(len(opts))
	return opts[p.cursor]
}

func (p *filterPanel) move(delta int, set *selection.Set) {
	p.cursor += delta
	p.clamp(len(p.options(set)))
}

func (p *filterPanel) clamp(n int) {
	if p.cursor >= n {
		p.cursor = n - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

func (p *filterPanel) searching() bool {
	return p.search.Focused()
}
