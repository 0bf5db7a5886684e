package table

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Components maps each structural role of the table onto a style.
//
//	Scroller  outer panel that clips the scrolling area
//	Table     the grid itself (header and body)
//	Head      every header cell
//	Body      every body cell
//	Row       the row under the cursor
type Components interface {
	Scroller() lipgloss.Style
	Table() lipgloss.Style
	Head() lipgloss.Style
	Body() lipgloss.Style
	Row() lipgloss.Style
}

// StyleComponents is a Components backed by plain styles.
type StyleComponents struct {
	ScrollerStyle lipgloss.Style
	TableStyle    lipgloss.Style
	HeadStyle     lipgloss.Style
	BodyStyle     lipgloss.Style
	RowStyle      lipgloss.Style
}

func (c StyleComponents) Scroller() lipgloss.Style { return c.ScrollerStyle }
func (c StyleComponents) Table() lipgloss.Style    { return c.TableStyle }
func (c StyleComponents) Head() lipgloss.Style     { return c.HeadStyle }
func (c StyleComponents) Body() lipgloss.Style     { return c.BodyStyle }
func (c StyleComponents) Row() lipgloss.Style      { return c.RowStyle }

// DefaultComponents returns an uncoloured layout: a rounded outer border, a
// bold upper-cased header separated from the body by a rule, one space
// between columns and a reversed cursor row.
func DefaultComponents() StyleComponents {
	return StyleComponents{
		ScrollerStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()),
		TableStyle: lipgloss.NewStyle(),
		HeadStyle: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			Bold(true).
			Transform(strings.ToUpper).
			PaddingRight(1),
		BodyStyle: lipgloss.NewStyle().
			PaddingRight(1),
		RowStyle: lipgloss.NewStyle().
			Reverse(true),
	}
}
