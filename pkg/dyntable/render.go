package dyntable

import (
	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/dyntable/internal/ui/table"
	"github.com/oakwood-commons/dyntable/pkg/columns"
	"github.com/oakwood-commons/dyntable/pkg/record"
)

const ellipsis = "…"

// HeaderRow renders one header cell per descriptor. Numeric columns have their
// label right-aligned within the column width.
func HeaderRow(cols []columns.Descriptor) []table.Column {
	out := make([]table.Column, len(cols))
	for i, c := range cols {
		out[i] = table.Column{Title: align(c.Label, c.Width, c.Numeric), Width: c.Width}
	}
	return out
}

// RowCells renders one cell per descriptor. Absent keys and nil values render
// as empty cells; keys not covered by a descriptor are ignored.
func RowCells(r record.Record, cols []columns.Descriptor) table.Row {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		var text string
		if r != nil {
			if v, ok := r.Value(c.Key); ok {
				text = record.Stringify(v)
			}
		}
		row[i] = align(text, c.Width, c.Numeric)
	}
	return row
}

// align truncates s to width cells and, when right is set, pads it on the
// left to exactly width cells.
func align(s string, width int, right bool) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, ellipsis)
	}
	if right {
		return runewidth.FillLeft(s, width)
	}
	return s
}

// Placeholder renders text centred in a panel of the given outer size, framed
// by the Scroller style.
func Placeholder(width, height int, scroller, text lipgloss.Style) string {
	w := max(width-scroller.GetHorizontalFrameSize(), 0)
	h := max(height-scroller.GetVerticalFrameSize(), 0)
	msg := text.Render(PlaceholderText)
	msg = lipgloss.NewStyle().MaxWidth(w).MaxHeight(h).Render(msg)
	return scroller.Render(lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, msg))
}
