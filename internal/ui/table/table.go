package table

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	bubtable "charm.land/bubbles/v2/table"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// Re-export common table types so callers can construct columns/rows without
// importing bubbles directly.
type Column = bubtable.Column
type Row = bubtable.Row

// HeaderFunc produces the fixed header row.
type HeaderFunc func() []Column

// ItemFunc converts one item into its row cells.
type ItemFunc[V any] func(V) Row

// Model is a windowed table over items of type V. It wraps the bubbles table
// for layout and styling, but only ever hands it the rows of the current
// window: items are converted to cells on demand, so the cost of a frame
// depends on the panel height and not on the number of items.
type Model[V any] struct {
	table      bubtable.Model
	components Components
	keys       bubtable.KeyMap

	header HeaderFunc
	item   ItemFunc[V]

	items   []V
	rows    map[int]Row // cells produced so far, by item index
	filter  string
	matches []int // item indexes passing the filter; unused without one
	cursor  int   // position among the visible items
	offset  int   // visible position of the first row in the window
	columns []Column
	width   int
	height  int
	focused bool
}

// NewModel creates a table that renders its header with header and each item
// with item.
func NewModel[V any](components Components, header HeaderFunc, item ItemFunc[V]) *Model[V] {
	if components == nil {
		components = DefaultComponents()
	}
	t := bubtable.New(
		bubtable.WithFocused(true),
		bubtable.WithHeight(5),
	)
	m := &Model[V]{
		table:      t,
		components: components,
		keys:       bubtable.DefaultKeyMap(),
		header:     header,
		item:       item,
		rows:       map[int]Row{},
		width:      80,
		height:     10,
		focused:    true,
	}
	m.applyComponents()
	m.SetSize(m.width, m.height)
	return m
}

// SetComponents swaps the role styles and re-applies them.
func (m *Model[V]) SetComponents(c Components) {
	if c == nil {
		c = DefaultComponents()
	}
	m.components = c
	m.applyComponents()
	m.SetSize(m.width, m.height)
}

// Components returns the active role styles.
func (m *Model[V]) Components() Components {
	return m.components
}

func (m *Model[V]) applyComponents() {
	m.table.SetStyles(bubtable.Styles{
		Header:   m.components.Head(),
		Cell:     m.components.Body(),
		Selected: m.components.Row(),
	})
}

// SetItems replaces the items. No rows are produced until they are shown.
func (m *Model[V]) SetItems(items []V) {
	m.items = items
	m.Refresh()
}

// Refresh re-runs the header producer and forgets every produced row. Call it
// after anything that changes how items render.
func (m *Model[V]) Refresh() {
	var cols []Column
	if m.header != nil {
		cols = m.header()
	}
	clear(m.rows)
	// Rows must be cleared before narrowing the columns.
	m.table.SetRows(nil)
	m.columns = cols
	m.table.SetColumns(cols)
	// The body height depends on the header height.
	m.resizeTable()
	m.applyFilter()
}

// row returns the cells of item i, producing them on first use.
func (m *Model[V]) row(i int) Row {
	if r, ok := m.rows[i]; ok {
		return r
	}
	r := m.item(m.items[i])
	switch {
	case len(r) < len(m.columns):
		r = append(r, make(Row, len(m.columns)-len(r))...)
	case len(r) > len(m.columns):
		r = r[:len(m.columns)]
	}
	m.rows[i] = r
	return r
}

// Produced returns how many items have been converted to cells since the
// last Refresh.
func (m *Model[V]) Produced() int {
	return len(m.rows)
}

// Columns returns the header produced by the last Refresh.
func (m *Model[V]) Columns() []Column {
	return m.columns
}

// Visible returns the items that pass the current filter, in order.
func (m *Model[V]) Visible() []V {
	out := make([]V, m.VisibleLen())
	for i := range out {
		out[i] = m.items[m.index(i)]
	}
	return out
}

// VisibleLen returns how many items pass the filter.
func (m *Model[V]) VisibleLen() int {
	if m.filter == "" {
		return len(m.items)
	}
	return len(m.matches)
}

// index maps a visible position to an item index.
func (m *Model[V]) index(pos int) int {
	if m.filter == "" {
		return pos
	}
	return m.matches[pos]
}

// SetFilter keeps only the rows whose cell text contains filter,
// ignoring case. Matching needs the cells of every item.
func (m *Model[V]) SetFilter(filter string) {
	m.filter = filter
	m.applyFilter()
}

// Filter returns the current filter text.
func (m *Model[V]) Filter() string {
	return m.filter
}

// ClearFilter removes the filter and shows all rows.
func (m *Model[V]) ClearFilter() {
	m.filter = ""
	m.applyFilter()
}

func (m *Model[V]) applyFilter() {
	m.matches = m.matches[:0]
	if m.filter != "" {
		needle := strings.ToLower(m.filter)
		for i := range m.items {
			if strings.Contains(strings.ToLower(strings.Join(m.row(i), "\x00")), needle) {
				m.matches = append(m.matches, i)
			}
		}
	}
	if m.cursor >= m.VisibleLen() {
		m.cursor = 0
	}
	m.sync()
}

// pageSize is the number of body rows the panel shows.
func (m *Model[V]) pageSize() int {
	return max(m.table.Height(), 1)
}

// sync keeps the cursor inside the window and hands the window's rows to the
// bubbles table.
func (m *Model[V]) sync() {
	n := m.VisibleLen()
	page := m.pageSize()
	m.cursor = min(max(m.cursor, 0), max(n-1, 0))
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+page {
		m.offset = m.cursor - page + 1
	}
	m.offset = min(max(m.offset, 0), max(n-page, 0))

	end := min(m.offset+page, n)
	window := make([]Row, 0, end-m.offset)
	for pos := m.offset; pos < end; pos++ {
		window = append(window, m.row(m.index(pos)))
	}
	m.table.SetRows(window)
	m.table.SetCursor(m.cursor - m.offset)
}

// Cursor returns the cursor position within the visible rows.
func (m *Model[V]) Cursor() int {
	return m.cursor
}

// SetCursor sets the cursor position, scrolling the window when needed.
func (m *Model[V]) SetCursor(pos int) {
	m.cursor = pos
	m.sync()
}

// Offset returns the visible position of the first row in the window.
func (m *Model[V]) Offset() int {
	return m.offset
}

// SelectedItem returns the item under the cursor, or nil when nothing is
// visible.
func (m *Model[V]) SelectedItem() *V {
	if m.cursor < 0 || m.cursor >= m.VisibleLen() {
		return nil
	}
	return &m.items[m.index(m.cursor)]
}

// SetSize sets the outer dimensions, including the Scroller and Table frames.
func (m *Model[V]) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.resizeTable()
	m.sync()
}

func (m *Model[V]) resizeTable() {
	_, innerH := m.innerSize()
	innerH -= m.components.Table().GetVerticalFrameSize()
	m.table.SetHeight(max(innerH, 1))
}

func (m *Model[V]) innerSize() (int, int) {
	s := m.components.Scroller()
	return max(m.width-s.GetHorizontalFrameSize(), 0), max(m.height-s.GetVerticalFrameSize(), 0)
}

// Focus sets the table focus state.
func (m *Model[V]) Focus() {
	m.focused = true
	m.table.Focus()
}

// Blur removes focus from the table.
func (m *Model[V]) Blur() {
	m.focused = false
	m.table.Blur()
}

// Focused returns true if the table has focus.
func (m *Model[V]) Focused() bool {
	return m.focused
}

// Update moves the cursor with the bubbles table key bindings.
func (m *Model[V]) Update(msg tea.Msg) (*Model[V], tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	km, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}
	page := m.pageSize()
	switch {
	case key.Matches(km, m.keys.LineUp):
		m.SetCursor(m.cursor - 1)
	case key.Matches(km, m.keys.LineDown):
		m.SetCursor(m.cursor + 1)
	case key.Matches(km, m.keys.PageUp):
		m.SetCursor(m.cursor - page)
	case key.Matches(km, m.keys.PageDown):
		m.SetCursor(m.cursor + page)
	case key.Matches(km, m.keys.HalfPageUp):
		m.SetCursor(m.cursor - page/2)
	case key.Matches(km, m.keys.HalfPageDown):
		m.SetCursor(m.cursor + page/2)
	case key.Matches(km, m.keys.GotoTop):
		m.SetCursor(0)
	case key.Matches(km, m.keys.GotoBottom):
		m.SetCursor(m.VisibleLen() - 1)
	}
	return m, nil
}

// View renders the windowed grid inside the Table and Scroller styles,
// clipped to the configured size.
func (m *Model[V]) View() string {
	w, h := m.innerSize()
	grid := m.components.Table().Render(m.table.View())
	grid = lipgloss.NewStyle().MaxWidth(w).MaxHeight(h).Render(grid)
	return m.components.Scroller().Render(lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, grid))
}

// Height returns the rendered height of the table.
func (m *Model[V]) Height() int {
	return lipgloss.Height(m.View())
}

// Width returns the rendered width of the table.
func (m *Model[V]) Width() int {
	return lipgloss.Width(m.View())
}

// String returns a string representation for debugging.
func (m *Model[V]) String() string {
	return fmt.Sprintf("Table[items=%d, visible=%d, cursor=%d, filter=%q]",
		len(m.items), m.VisibleLen(), m.Cursor(), m.filter)
}
