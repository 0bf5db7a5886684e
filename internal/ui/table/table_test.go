package table

import (
	"fmt"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// Item represents a simple key/value used for testing the generic table
type Item struct {
	Key   string
	Value string
}

func makeModel() *Model[Item] {
	header := func() []Column { return []Column{{Title: "KEY", Width: 10}, {Title: "VALUE", Width: 20}} }
	item := func(v Item) Row { return Row{v.Key, v.Value} }
	return NewModel[Item](DefaultComponents(), header, item)
}

func TestTable_SetItemsAndFilter(t *testing.T) {
	m := makeModel()
	m.SetItems([]Item{{"apple", "red"}, {"banana", "yellow"}, {"apricot", "orange"}})

	if got := len(m.Visible()); got != 3 {
		t.Fatalf("expected 3 visible rows initially, got %d", got)
	}

	m.SetFilter("AP")
	rows := m.Visible()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows after filter 'AP', got %d", len(rows))
	}
	if rows[0].Key != "apple" || rows[1].Key != "apricot" {
		t.Fatalf("unexpected filter order: %+v", rows)
	}

	// Any cell matches, not only the first.
	m.SetFilter("yell")
	if rows := m.Visible(); len(rows) != 1 || rows[0].Key != "banana" {
		t.Fatalf("expected banana to match on its value, got %+v", rows)
	}

	m.ClearFilter()
	if len(m.Visible()) != 3 {
		t.Fatalf("expected 3 rows after clear filter, got %d", len(m.Visible()))
	}
	if m.Filter() != "" {
		t.Fatalf("expected empty filter, got %q", m.Filter())
	}
}

func TestTable_CursorSelection(t *testing.T) {
	m := makeModel()
	m.SetItems([]Item{{"apple", "red"}, {"banana", "yellow"}})

	// Default cursor at 0
	sel := m.SelectedItem()
	if sel == nil || sel.Key != "apple" {
		t.Fatalf("expected first row selected, got %+v", sel)
	}

	m.SetCursor(1)
	sel = m.SelectedItem()
	if sel == nil || sel.Key != "banana" {
		t.Fatalf("expected second row selected, got %+v", sel)
	}

	// Move via Update to ensure bubbles path runs
	m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Cursor() > 1 {
		t.Fatalf("cursor out of bounds: %d", m.Cursor())
	}

	m.SetFilter("zzz")
	if m.SelectedItem() != nil {
		t.Fatalf("expected no selection when nothing is visible")
	}
}

func TestTable_ShortRowsArePadded(t *testing.T) {
	header := func() []Column { return []Column{{Title: "A", Width: 4}, {Title: "B", Width: 4}} }
	m := NewModel[Item](nil, header, func(v Item) Row { return Row{v.Key} })
	m.SetItems([]Item{{Key: "x"}})
	if out := m.View(); !strings.Contains(out, "x") {
		t.Fatalf("expected row to render, got %q", out)
	}
}

func TestTable_RendersOnlyWindow(t *testing.T) {
	m := makeModel()
	items := make([]Item, 1000)
	for i := range items {
		items[i] = Item{Key: fmt.Sprintf("key-%04d", i), Value: "v"}
	}
	m.SetItems(items)
	m.SetSize(40, 10)

	out := m.View()
	if !strings.Contains(out, "key-0000") {
		t.Fatalf("expected first row in view")
	}
	if strings.Contains(out, "key-0999") {
		t.Fatalf("expected rows outside the window not to render")
	}
	if h := lipgloss.Height(out); h != 10 {
		t.Fatalf("expected view height 10, got %d", h)
	}
	if w := lipgloss.Width(out); w != 40 {
		t.Fatalf("expected view width 40, got %d", w)
	}
}

func TestTable_HeaderRefresh(t *testing.T) {
	cols := []Column{{Title: "ONE", Width: 5}}
	m := NewModel[Item](nil, func() []Column { return cols }, func(v Item) Row { return Row{v.Key} })
	m.SetItems([]Item{{Key: "a"}})
	if len(m.Columns()) != 1 {
		t.Fatalf("expected 1 column, got %d", len(m.Columns()))
	}

	cols = []Column{{Title: "ONE", Width: 5}, {Title: "TWO", Width: 5}}
	m.Refresh()
	if len(m.Columns()) != 2 {
		t.Fatalf("expected 2 columns after refresh, got %d", len(m.Columns()))
	}
	if !strings.Contains(m.View(), "TWO") {
		t.Fatalf("expected new header to render")
	}
}

func TestTable_SizeFocus(t *testing.T) {
	m := makeModel()
	m.SetItems([]Item{{"k", "v"}})

	m.SetSize(40, 8)
	if m.Height() != 8 || m.Width() != 40 {
		t.Fatalf("expected 40x8, got h=%d w=%d", m.Height(), m.Width())
	}

	if !m.Focused() { // default true
		t.Fatalf("expected model focused by default")
	}
	m.Blur()
	if m.Focused() {
		t.Fatalf("expected model to be unfocused after Blur")
	}
	m.Focus()
	if !m.Focused() {
		t.Fatalf("expected model to be focused after Focus")
	}
}

func TestTable_Components(t *testing.T) {
	m := makeModel()
	m.SetItems([]Item{{"k", "v"}})

	c := DefaultComponents()
	c.ScrollerStyle = lipgloss.NewStyle()
	m.SetComponents(c)
	m.SetSize(30, 5)
	if h := m.Height(); h != 5 {
		t.Fatalf("expected borderless view height 5, got %d", h)
	}
	if m.Components().Scroller().GetHorizontalFrameSize() != 0 {
		t.Fatalf("expected components to be replaced")
	}

	m.SetComponents(nil)
	_ = m.View()
}

func TestTable_StringDebug(t *testing.T) {
	m := makeModel()
	m.SetItems([]Item{{"k", "v"}})
	s := m.String()
	if !strings.Contains(s, "items=1") {
		t.Fatalf("unexpected debug string %q", s)
	}
}

func manyItems(n int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{Key: fmt.Sprintf("key-%04d", i), Value: "v"}
	}
	return items
}

func TestTable_ProducesOnlyWindowRows(t *testing.T) {
	calls := 0
	header := func() []Column { return []Column{{Title: "KEY", Width: 10}} }
	m := NewModel[Item](nil, header, func(v Item) Row {
		calls++
		return Row{v.Key}
	})
	m.SetSize(40, 10)
	m.SetItems(manyItems(10000))
	_ = m.View()

	if calls > 10 {
		t.Fatalf("expected only the window rows to be produced, got %d calls", calls)
	}
	if m.Produced() != calls {
		t.Fatalf("expected Produced to report %d, got %d", calls, m.Produced())
	}

	// Moving inside the window reuses produced rows.
	before := calls
	m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if calls != before {
		t.Fatalf("expected no new rows for a move inside the window, got %d", calls-before)
	}
}

func TestTable_CursorScrollsWindow(t *testing.T) {
	m := makeModel()
	m.SetSize(40, 10)
	m.SetItems(manyItems(1000))

	m.SetCursor(500)
	out := m.View()
	if !strings.Contains(out, "key-0500") {
		t.Fatalf("expected cursor row in view")
	}
	if strings.Contains(out, "key-0000") {
		t.Fatalf("expected first row to scroll out of view")
	}
	if m.Offset() > 500 || m.Offset() < 490 {
		t.Fatalf("expected the window to end at the cursor, got offset %d", m.Offset())
	}
	if sel := m.SelectedItem(); sel == nil || sel.Key != "key-0500" {
		t.Fatalf("unexpected selection %+v", sel)
	}

	m.Update(tea.KeyPressMsg{Code: tea.KeyEnd})
	if m.Cursor() != 999 {
		t.Fatalf("expected cursor on last row, got %d", m.Cursor())
	}
	if !strings.Contains(m.View(), "key-0999") {
		t.Fatalf("expected last row in view")
	}

	m.Update(tea.KeyPressMsg{Code: tea.KeyHome})
	if m.Cursor() != 0 || m.Offset() != 0 {
		t.Fatalf("expected top of table, got cursor=%d offset=%d", m.Cursor(), m.Offset())
	}
	if m.Produced() > 40 {
		t.Fatalf("expected only visited windows to be produced, got %d", m.Produced())
	}

	m.SetCursor(-5)
	if m.Cursor() != 0 {
		t.Fatalf("expected cursor clamped to 0, got %d", m.Cursor())
	}
}

func TestTable_FilterScansAllRows(t *testing.T) {
	m := makeModel()
	m.SetSize(40, 10)
	m.SetItems(manyItems(1000))

	m.SetFilter("key-07")
	if m.VisibleLen() != 100 {
		t.Fatalf("expected 100 matches, got %d", m.VisibleLen())
	}
	if m.Produced() != 1000 {
		t.Fatalf("expected every row to be produced for matching, got %d", m.Produced())
	}
	if sel := m.SelectedItem(); sel == nil || sel.Key != "key-0700" {
		t.Fatalf("unexpected selection %+v", sel)
	}

	m.ClearFilter()
	m.SetItems(manyItems(1000))
	if m.Produced() > 10 {
		t.Fatalf("expected new items to drop produced rows, got %d", m.Produced())
	}
}

func TestTable_BlurIgnoresKeys(t *testing.T) {
	m := makeModel()
	m.SetItems(manyItems(5))
	m.Blur()
	m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Cursor() != 0 {
		t.Fatalf("expected blurred table to ignore keys, got cursor %d", m.Cursor())
	}
}
