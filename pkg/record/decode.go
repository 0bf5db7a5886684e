package record

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Format names an input document format.
type Format string

const (
	FormatAuto   Format = "auto"
	FormatJSON   Format = "json"
	FormatNDJSON Format = "ndjson"
	FormatYAML   Format = "yaml"
	FormatCSV    Format = "csv"
	FormatTOML   Format = "toml"
)

// ValueKey is the field name used when a dataset item is not an object.
const ValueKey = "value"

// Formats lists the accepted format names.
var Formats = []Format{FormatAuto, FormatJSON, FormatNDJSON, FormatYAML, FormatCSV, FormatTOML}

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatAuto, nil
	}
	if f == "yml" {
		return FormatYAML, nil
	}
	if f == "jsonl" {
		return FormatNDJSON, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (expected one of auto, json, ndjson, yaml, csv, toml)", s)
}

// DetectFormat guesses the format from the file name first and the content
// second. Content that is not recognizably JSON is treated as YAML.
func DetectFormat(name string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".ndjson", ".jsonl":
		return FormatNDJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".csv":
		return FormatCSV
	case ".toml":
		return FormatTOML
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return FormatJSON
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		if gjson.ValidBytes(trimmed) {
			return FormatJSON
		}
		if isNDJSON(trimmed) {
			return FormatNDJSON
		}
	}
	return FormatYAML
}

func isNDJSON(data []byte) bool {
	lines := 0
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if !gjson.ValidBytes(line) {
			return false
		}
		lines++
	}
	return lines > 0
}

// DecodeOptions controls Decode.
type DecodeOptions struct {
	// Format of the input; FormatAuto (or empty) detects it from Name and content.
	Format Format
	// Name is the source file name, used only for format detection.
	Name string
	// Path is a gjson path selecting the dataset inside a JSON document.
	Path string
}

// DecodeFile reads path (or stdin when path is "-") and decodes it.
func DecodeFile(path string, opts DecodeOptions) ([]Record, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" || path == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
		if opts.Name == "" {
			opts.Name = path
		}
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return Decode(data, opts)
}

// Decode turns a document into a dataset. An array becomes one record per
// element; any other top-level value becomes a single record. Items that are
// not objects are wrapped as {"value": item}.
func Decode(data []byte, opts DecodeOptions) ([]Record, error) {
	format := opts.Format
	if format == "" || format == FormatAuto {
		format = DetectFormat(opts.Name, data)
	}
	if opts.Path != "" && format != FormatJSON {
		return nil, fmt.Errorf("--path is only supported for JSON input (got %s)", format)
	}
	switch format {
	case FormatJSON:
		return decodeJSON(data, opts.Path)
	case FormatNDJSON:
		return decodeNDJSON(data)
	case FormatYAML:
		return decodeYAML(data)
	case FormatCSV:
		return decodeCSV(data)
	case FormatTOML:
		return decodeTOML(data)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

func decodeJSON(data []byte, path string) ([]Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON document")
	}
	root := gjson.ParseBytes(data)
	if path != "" {
		root = root.Get(path)
		if !root.Exists() {
			return nil, fmt.Errorf("path %q not found", path)
		}
	}
	return recordsFromResult(root), nil
}

func decodeNDJSON(data []byte) ([]Record, error) {
	var out []Record
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if !gjson.ValidBytes(line) {
			return nil, fmt.Errorf("line %d: invalid JSON", lineNo)
		}
		out = append(out, asRecord(fromResult(gjson.ParseBytes(line))))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan input: %w", err)
	}
	return out, nil
}

func recordsFromResult(root gjson.Result) []Record {
	if !root.IsArray() {
		return []Record{asRecord(fromResult(root))}
	}
	var out []Record
	root.ForEach(func(_, v gjson.Result) bool {
		out = append(out, asRecord(fromResult(v)))
		return true
	})
	return out
}

// fromResult converts a gjson value keeping object key order. Integers stay
// int64 when they fit, other numbers become float64.
func fromResult(r gjson.Result) any {
	switch {
	case r.IsObject():
		o := &Ordered{}
		r.ForEach(func(k, v gjson.Result) bool {
			o.Set(k.String(), fromResult(v))
			return true
		})
		return o
	case r.IsArray():
		items := []any{}
		r.ForEach(func(_, v gjson.Result) bool {
			items = append(items, fromResult(v))
			return true
		})
		return items
	}
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Number:
		if i, err := strconv.ParseInt(r.Raw, 10, 64); err == nil {
			return i
		}
		return r.Float()
	default:
		return r.String()
	}
}

func decodeYAML(data []byte) ([]Record, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var out []Record
	docs := 0
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
		docs++
		v, err := fromNode(&doc)
		if err != nil {
			return nil, err
		}
		if v == nil && len(doc.Content) == 0 {
			continue
		}
		if items, ok := v.([]any); ok && docs == 1 {
			for _, it := range items {
				out = append(out, asRecord(it))
			}
			continue
		}
		out = append(out, asRecord(v))
	}
	return out, nil
}

// fromNode converts a YAML node keeping mapping order.
func fromNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromNode(n.Content[0])
	case yaml.MappingNode:
		o := &Ordered{}
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind == yaml.ScalarNode && k.Tag == "!!merge" {
				merged, err := fromNode(v)
				if err != nil {
					return nil, err
				}
				if mo, ok := merged.(*Ordered); ok {
					for _, f := range mo.fields {
						if _, exists := o.Value(f.Key); !exists {
							o.Set(f.Key, f.Value)
						}
					}
				}
				continue
			}
			val, err := fromNode(v)
			if err != nil {
				return nil, err
			}
			o.Set(k.Value, val)
		}
		return o, nil
	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromNode(c)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	case yaml.AliasNode:
		return fromNode(n.Alias)
	case yaml.ScalarNode:
		if n.Tag == "!!timestamp" {
			return n.Value, nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		if i, ok := v.(int); ok {
			return int64(i), nil
		}
		return v, nil
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
}

func decodeCSV(data []byte) ([]Record, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	var out []Record
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV: %w", err)
		}
		o := &Ordered{}
		for i, key := range header {
			if i >= len(row) {
				break
			}
			o.Set(key, csvValue(row[i]))
		}
		out = append(out, o)
	}
	return out, nil
}

// csvValue turns a cell into a number only when formatting the number again
// yields the same text, so identifiers like "007" stay strings.
func csvValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(i, 10) == s {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && strconv.FormatFloat(f, 'f', -1, 64) == s {
		return f
	}
	return s
}

func decodeTOML(data []byte) ([]Record, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode TOML: %w", err)
	}
	if len(doc) == 0 {
		return nil, nil
	}
	if len(doc) == 1 {
		for _, v := range doc {
			if tables, ok := v.([]any); ok {
				out := make([]Record, 0, len(tables))
				for _, t := range tables {
					out = append(out, asRecord(fromGo(t)))
				}
				return out, nil
			}
		}
	}
	return []Record{FromMap(doc)}, nil
}

func asRecord(v any) Record {
	if o, ok := v.(*Ordered); ok {
		return o
	}
	return NewOrdered(Field{Key: ValueKey, Value: v})
}

// Encode writes the dataset as an indented JSON array.
func Encode(w io.Writer, data []Record) error {
	items := make([]any, len(data))
	for i, r := range data {
		if o, ok := r.(*Ordered); ok {
			items[i] = o
			continue
		}
		o := &Ordered{}
		for _, k := range r.Keys() {
			v, _ := r.Value(k)
			o.Set(k, v)
		}
		items[i] = o
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}
