package record

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(t *testing.T, r Record, key string) any {
	t.Helper()
	v, ok := r.Value(key)
	require.True(t, ok, "missing key %q", key)
	return v
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatAuto, false},
		{"JSON", FormatJSON, false},
		{"yml", FormatYAML, false},
		{"jsonl", FormatNDJSON, false},
		{"toml", FormatTOML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
		want Format
	}{
		{"extension json", "a.json", "", FormatJSON},
		{"extension jsonl", "a.jsonl", "", FormatNDJSON},
		{"extension yml", "a.yml", "", FormatYAML},
		{"extension csv", "a.csv", "", FormatCSV},
		{"extension toml", "a.toml", "", FormatTOML},
		{"content array", "", `[{"a":1}]`, FormatJSON},
		{"content ndjson", "", "{\"a\":1}\n{\"a\":2}\n", FormatNDJSON},
		{"content yaml", "", "- a: 1\n", FormatYAML},
		{"empty", "", "  ", FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.file, []byte(tt.data)))
		})
	}
}

func TestDecodeJSONKeepsKeyOrder(t *testing.T) {
	recs, err := Decode([]byte(`[{"zeta":1,"alpha":"x","mid":2.5},{"alpha":"y"}]`), DecodeOptions{})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, recs[0].Keys())
	assert.Equal(t, int64(1), value(t, recs[0], "zeta"))
	assert.Equal(t, 2.5, value(t, recs[0], "mid"))
	assert.Equal(t, []string{"alpha"}, recs[1].Keys())
}

func TestDecodeJSONScalarsAndObjects(t *testing.T) {
	recs, err := Decode([]byte(`[1,"two",null]`), DecodeOptions{Format: FormatJSON})
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, []string{ValueKey}, recs[0].Keys())
	assert.Equal(t, "two", value(t, recs[1], ValueKey))
	assert.Nil(t, value(t, recs[2], ValueKey))

	recs, err = Decode([]byte(`{"a":true}`), DecodeOptions{Format: FormatJSON})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, true, value(t, recs[0], "a"))
}

func TestDecodeJSONPath(t *testing.T) {
	doc := []byte(`{"meta":{"n":2},"data":{"items":[{"id":1},{"id":2}]}}`)
	recs, err := Decode(doc, DecodeOptions{Path: "data.items"})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, int64(2), value(t, recs[1], "id"))

	_, err = Decode(doc, DecodeOptions{Path: "data.missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = Decode([]byte("a: 1\n"), DecodeOptions{Format: FormatYAML, Path: "a"})
	require.Error(t, err)
}

func TestDecodeJSONInvalid(t *testing.T) {
	_, err := Decode([]byte(`[{"a":`), DecodeOptions{Format: FormatJSON})
	require.Error(t, err)
}

func TestDecodeEmptyJSON(t *testing.T) {
	recs, err := Decode([]byte(`[]`), DecodeOptions{})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestDecodeNDJSON(t *testing.T) {
	recs, err := Decode([]byte("{\"b\":1,\"a\":2}\n\n{\"a\":3}\n"), DecodeOptions{Format: FormatNDJSON})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, []string{"b", "a"}, recs[0].Keys())

	_, err = Decode([]byte("{\"a\":1}\nnot json\n"), DecodeOptions{Format: FormatNDJSON})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestDecodeYAML(t *testing.T) {
	doc := `
- name: web
  replicas: 3
  ratio: 0.5
  created: 2024-01-02
- name: db
  tags: [a, b]
`
	recs, err := Decode([]byte(doc), DecodeOptions{Format: FormatYAML})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, []string{"name", "replicas", "ratio", "created"}, recs[0].Keys())
	assert.Equal(t, int64(3), value(t, recs[0], "replicas"))
	assert.Equal(t, 0.5, value(t, recs[0], "ratio"))
	assert.Equal(t, "2024-01-02", value(t, recs[0], "created"))
	assert.Equal(t, []any{"a", "b"}, value(t, recs[1], "tags"))
}

func TestDecodeYAMLMultiDocument(t *testing.T) {
	recs, err := Decode([]byte("a: 1\n---\nb: 2\n"), DecodeOptions{Format: FormatYAML})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, []string{"a"}, recs[0].Keys())
	assert.Equal(t, []string{"b"}, recs[1].Keys())
}

func TestDecodeYAMLMergeKeys(t *testing.T) {
	doc := `
base: &base
  x: 1
item:
  <<: *base
  y: 2
`
	recs, err := Decode([]byte(doc), DecodeOptions{Format: FormatYAML})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	item, ok := value(t, recs[0], "item").(*Ordered)
	require.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, item.Keys())
}

func TestDecodeCSV(t *testing.T) {
	doc := "id,name,code,price\n1,Widget,007,2.50\n2,Gadget,010,3.25\n3,Short\n"
	recs, err := Decode([]byte(doc), DecodeOptions{Format: FormatCSV})
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"id", "name", "code", "price"}, recs[0].Keys())
	assert.Equal(t, int64(1), value(t, recs[0], "id"))
	assert.Equal(t, "007", value(t, recs[0], "code"), "leading zeros stay text")
	assert.Equal(t, "2.50", value(t, recs[0], "price"), "trailing zeros stay text")
	assert.Equal(t, 3.25, value(t, recs[1], "price"))
	assert.Equal(t, []string{"id", "name"}, recs[2].Keys(), "short rows keep present cells only")
}

func TestDecodeCSVEmpty(t *testing.T) {
	recs, err := Decode([]byte(""), DecodeOptions{Format: FormatCSV})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestDecodeTOML(t *testing.T) {
	doc := `
[[servers]]
name = "alpha"
port = 8080

[[servers]]
name = "beta"
port = 9090
`
	recs, err := Decode([]byte(doc), DecodeOptions{Format: FormatTOML})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, []string{"name", "port"}, recs[0].Keys())
	assert.Equal(t, int64(9090), value(t, recs[1], "port"))

	recs, err = Decode([]byte("title = \"x\"\ncount = 2\n"), DecodeOptions{Format: FormatTOML})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, []string{"count", "title"}, recs[0].Keys())
}

func TestDecodeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rows.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- a: 1\n- a: 2\n"), 0o600))

	recs, err := DecodeFile(path, DecodeOptions{})
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	_, err = DecodeFile(filepath.Join(dir, "missing.json"), DecodeOptions{})
	require.Error(t, err)
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	data := []Record{NewOrdered(Field{Key: "b", Value: 1}, Field{Key: "a", Value: "x"})}
	require.NoError(t, Encode(&buf, data))
	assert.JSONEq(t, `[{"b":1,"a":"x"}]`, buf.String())
	assert.Contains(t, buf.String(), `"b": 1,`)
}
