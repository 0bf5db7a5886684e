// Package dyntable renders a dataset of untyped records as a scrollable
// table whose columns are derived from the shape of a sample record.
//
// Column derivation is memoized and the rows are handed to a windowed grid
// that only renders what fits in the panel, so large datasets stay cheap to
// scroll. An empty dataset renders a centred "No data available" panel.
//
//	m := dyntable.New(records,
//		dyntable.WithExcludeKeys("id"),
//		dyntable.WithDefaultColumnWidth(20),
//	)
//	_, err := tea.NewProgram(m).Run()
package dyntable

import (
	"fmt"
	"slices"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/dyntable/internal/ui/table"
	"github.com/oakwood-commons/dyntable/pkg/columns"
	"github.com/oakwood-commons/dyntable/pkg/record"
)

// Window size assumed until the terminal reports one.
const (
	FallbackWindowWidth  = 80
	FallbackWindowHeight = 24
)

// DataMsg replaces the dataset of a running table. A non-nil Err keeps the
// current data and reports the error in the footer.
type DataMsg struct {
	Records []record.Record
	Err     error
}

// Model is a Bubble Tea model rendering a dataset as a table.
type Model struct {
	opts  Options
	data  []record.Record
	cache columns.Cache
	cols  []columns.Descriptor
	grid  *table.Model[record.Record]

	winW, winH int

	filtering  bool
	filterText string
	err        error
	quitting   bool
}

// New creates a table over data with the default options adjusted by opts.
func New(data []record.Record, opts ...Option) *Model {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return NewWithOptions(data, o)
}

// NewWithOptions creates a table over data. Zero fields of o take their
// defaults.
func NewWithOptions(data []record.Record, o Options) *Model {
	m := &Model{
		opts: o.normalized(),
		winW: FallbackWindowWidth,
		winH: FallbackWindowHeight,
	}
	m.grid = table.NewModel[record.Record](m.opts.Components, m.header, m.row)
	m.SetData(data)
	return m
}

func (m *Model) header() []table.Column { return HeaderRow(m.cols) }

func (m *Model) row(r record.Record) table.Row { return RowCells(r, m.cols) }

// SetData replaces the dataset. Columns are only re-derived when the sampled
// record or the options changed.
func (m *Model) SetData(data []record.Record) {
	m.data = data
	m.derive()
	m.grid.SetItems(data)
	m.layout()
}

// SetOptions replaces the options and re-renders.
func (m *Model) SetOptions(o Options) {
	m.opts = o.normalized()
	m.grid.SetComponents(m.opts.Components)
	m.derive()
	m.grid.Refresh()
	m.layout()
}

// Options returns the active options.
func (m *Model) Options() Options {
	return m.opts
}

func (m *Model) derive() {
	before := m.cache.Computations()
	m.cols = m.cache.Derive(m.data, m.opts.columnConfig())
	if m.cache.Computations() != before {
		m.opts.Logger.V(1).Info("derived columns", "columns", len(m.cols), "records", len(m.data))
	}
}

// Data returns the current dataset.
func (m *Model) Data() []record.Record {
	return m.data
}

// Columns returns a copy of the current column descriptors.
func (m *Model) Columns() []columns.Descriptor {
	return slices.Clone(m.cols)
}

// Derivations returns how many times columns were actually derived.
func (m *Model) Derivations() int {
	return m.cache.Computations()
}

// Empty reports whether the placeholder is shown instead of the grid.
func (m *Model) Empty() bool {
	return len(m.data) == 0 || len(m.cols) == 0
}

// Err returns the last error delivered through a DataMsg.
func (m *Model) Err() error {
	return m.err
}

// Cursor returns the cursor position among the visible rows.
func (m *Model) Cursor() int {
	return m.grid.Cursor()
}

// Selected returns the record under the cursor, or nil.
func (m *Model) Selected() record.Record {
	if r := m.grid.SelectedItem(); r != nil {
		return *r
	}
	return nil
}

// Filter returns the active row filter text.
func (m *Model) Filter() string {
	return m.grid.Filter()
}

// SetWindowSize sets the space the table resolves its Size options against.
func (m *Model) SetWindowSize(width, height int) {
	m.winW, m.winH = width, height
	m.layout()
}

// PanelSize returns the resolved outer panel width and height.
func (m *Model) PanelSize() (int, int) {
	h := m.winH
	if m.opts.ShowFooter {
		h--
	}
	return m.opts.Width.Resolve(m.winW), m.opts.Height.Resolve(max(h, 1))
}

func (m *Model) layout() {
	w, h := m.PanelSize()
	m.grid.SetSize(w, h)
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetWindowSize(msg.Width, msg.Height)
		return m, nil
	case DataMsg:
		if msg.Err != nil {
			m.err = msg.Err
			m.opts.Logger.Error(msg.Err, "reload failed")
			return m, nil
		}
		m.err = nil
		m.SetData(msg.Records)
		return m, nil
	case tea.KeyPressMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "/":
			m.filtering = true
			m.filterText = m.grid.Filter()
			return m, nil
		case "esc":
			m.grid.ClearFilter()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.grid, cmd = m.grid.Update(msg)
	return m, cmd
}

func (m *Model) updateFilter(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "esc":
		m.filtering = false
		m.filterText = ""
		m.grid.ClearFilter()
	case "enter":
		m.filtering = false
	case "backspace":
		if r := []rune(m.filterText); len(r) > 0 {
			m.filterText = string(r[:len(r)-1])
			m.grid.SetFilter(m.filterText)
		}
	default:
		if msg.Text != "" {
			m.filterText += msg.Text
			m.grid.SetFilter(m.filterText)
		}
	}
	return m, nil
}

// Render returns the current frame as a string.
func (m *Model) Render() string {
	w, h := m.PanelSize()
	var body string
	if m.Empty() {
		body = Placeholder(w, h, m.opts.Components.Scroller(), m.opts.PlaceholderStyle)
	} else {
		body = m.grid.View()
	}
	if m.opts.ShowFooter {
		body = lipgloss.JoinVertical(lipgloss.Left, body, m.footer(w))
	}
	return body
}

func (m *Model) footer(width int) string {
	var s string
	switch {
	case m.err != nil:
		s = "error: " + m.err.Error()
	case m.filtering:
		s = "/" + m.filterText
	default:
		n := m.grid.VisibleLen()
		pos := 0
		if n > 0 {
			pos = m.grid.Cursor() + 1
		}
		s = fmt.Sprintf("row %d/%d", pos, n)
		if total := len(m.data); total != n {
			s += fmt.Sprintf(" of %d", total)
		}
		if f := m.grid.Filter(); f != "" {
			s += fmt.Sprintf("  filter: %s", f)
		}
	}
	return m.opts.FooterStyle.MaxWidth(width).Render(s)
}

// View implements tea.Model.
func (m *Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}
	v := tea.NewView(m.Render())
	v.AltScreen = true
	return v
}
