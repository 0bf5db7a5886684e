package dyntable

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/dyntable/pkg/columns"
	"github.com/oakwood-commons/dyntable/pkg/record"
)

func rec(kv ...any) *record.Ordered {
	o := &record.Ordered{}
	for i := 0; i+1 < len(kv); i += 2 {
		o.Set(kv[i].(string), kv[i+1])
	}
	return o
}

func TestHeaderRowOneCellPerDescriptor(t *testing.T) {
	sample := rec("id", 1, "name", "Ada", "secret", "x", "age", 36)
	cols := columns.Derive(sample, []string{"secret", "missing"}, nil, 10)
	header := HeaderRow(cols)

	require.Len(t, header, 3)
	for i, h := range header {
		assert.Equal(t, 10, h.Width)
		assert.Equal(t, cols[i].Label, strings.TrimSpace(h.Title))
	}
}

func TestAlignmentFollowsNumericFlag(t *testing.T) {
	cols := []columns.Descriptor{
		{Key: "n", Label: "N", Numeric: false, Width: 6},
		{Key: "s", Label: "S", Numeric: true, Width: 6},
	}
	header := HeaderRow(cols)
	assert.Equal(t, "N", header[0].Title, "left-aligned header is not padded")
	assert.Equal(t, "     S", header[1].Title, "numeric header is right-aligned")

	row := RowCells(rec("n", 42, "s", "abc"), cols)
	assert.Equal(t, "42", row[0], "explicit non-numeric renders left-aligned")
	assert.Equal(t, "   abc", row[1], "numeric strings render right-aligned")
}

func TestExplicitNumericOverride(t *testing.T) {
	sample := rec("qty", 3, "code", "A7")
	cols := columns.Derive(sample, nil, map[string]columns.Override{
		"qty":  {Numeric: columns.Bool(false)},
		"code": {Numeric: columns.Bool(true)},
	}, 5)
	header := HeaderRow(cols)
	assert.Equal(t, "Qty", header[0].Title)
	assert.Equal(t, " Code", header[1].Title)

	row := RowCells(sample, cols)
	assert.Equal(t, []string{"3", "   A7"}, []string(row))
}

func TestRowCellsExampleDataset(t *testing.T) {
	data := []record.Record{rec("id", 1, "name", "A"), rec("id", 2, "name", "B")}
	cols := columns.DeriveFromData(data, columns.Config{Exclude: []string{"id"}, DefaultWidth: 50})
	require.Equal(t, []columns.Descriptor{{Key: "name", Label: "Name", Numeric: false, Width: 50}}, cols)

	assert.Equal(t, []string{"A"}, []string(RowCells(data[0], cols)))
	assert.Equal(t, []string{"B"}, []string(RowCells(data[1], cols)))
}

func TestRowCellsMissingAndNilValues(t *testing.T) {
	data := []record.Record{rec("a", 1), rec("b", 2), rec("a", nil)}
	cols := columns.DeriveFromData(data, columns.Config{DefaultWidth: 4})
	require.Len(t, cols, 1)
	assert.Equal(t, "A", cols[0].Label)

	assert.Equal(t, "   1", RowCells(data[0], cols)[0])
	assert.Equal(t, "", strings.TrimSpace(RowCells(data[1], cols)[0]), "missing key renders empty")
	assert.Equal(t, "", strings.TrimSpace(RowCells(data[2], cols)[0]), "nil renders empty")
	assert.Equal(t, "", strings.TrimSpace(RowCells(nil, cols)[0]))
}

func TestRowCellsTruncatesToWidth(t *testing.T) {
	cols := []columns.Descriptor{{Key: "s", Label: "S", Width: 5}}
	cell := RowCells(rec("s", "abcdefghij"), cols)[0]
	assert.Equal(t, 5, runewidth.StringWidth(cell))
	assert.True(t, strings.HasSuffix(cell, ellipsis))
}

func TestRowCellsStringifiesComposites(t *testing.T) {
	cols := []columns.Descriptor{{Key: "tags", Label: "Tags", Width: 20}, {Key: "ok", Label: "Ok", Width: 6}}
	row := RowCells(rec("tags", []any{"a", "b"}, "ok", true), cols)
	assert.Equal(t, `["a","b"]`, row[0])
	assert.Equal(t, "true", row[1])
}

func TestPlaceholder(t *testing.T) {
	out := Placeholder(40, 7, lipgloss.NewStyle().Border(lipgloss.NormalBorder()), lipgloss.NewStyle())
	assert.Contains(t, out, PlaceholderText)
	assert.Equal(t, 7, lipgloss.Height(out))
	assert.Equal(t, 40, lipgloss.Width(out))

	lines := strings.Split(out, "\n")
	mid := lines[3]
	assert.Contains(t, mid, PlaceholderText, "message is vertically centred")
}
