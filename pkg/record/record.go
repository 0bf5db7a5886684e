// Package record defines the row type rendered by dyntable and the loaders
// that turn JSON, YAML, NDJSON, CSV and TOML documents into rows while keeping
// the key order of the source document.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Record is one row of a dataset: an untyped key/value mapping whose key
// enumeration order is explicit.
type Record interface {
	// Keys returns the field names in enumeration order.
	Keys() []string
	// Value returns the value stored under key and whether the key is present.
	Value(key string) (any, bool)
}

// Field is a single key/value pair of an Ordered record.
type Field struct {
	Key   string
	Value any
}

// Ordered is a Record that remembers insertion order.
// The zero value is an empty record ready to use.
type Ordered struct {
	fields []Field
	index  map[string]int
}

// NewOrdered builds a record from the given fields. A repeated key keeps the
// position of its first occurrence and the value of its last.
func NewOrdered(fields ...Field) *Ordered {
	o := &Ordered{}
	for _, f := range fields {
		o.Set(f.Key, f.Value)
	}
	return o
}

// Set stores value under key, appending the key when it is new.
func (o *Ordered) Set(key string, value any) {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if i, ok := o.index[key]; ok {
		o.fields[i].Value = value
		return
	}
	o.index[key] = len(o.fields)
	o.fields = append(o.fields, Field{Key: key, Value: value})
}

// Keys implements Record.
func (o *Ordered) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.fields))
	for i, f := range o.fields {
		keys[i] = f.Key
	}
	return keys
}

// Value implements Record.
func (o *Ordered) Value(key string) (any, bool) {
	if o == nil || o.index == nil {
		return nil, false
	}
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.fields[i].Value, true
}

// Len returns the number of fields.
func (o *Ordered) Len() int {
	if o == nil {
		return 0
	}
	return len(o.fields)
}

// Fields returns a copy of the fields in order.
func (o *Ordered) Fields() []Field {
	if o == nil {
		return nil
	}
	return append([]Field(nil), o.fields...)
}

// Map converts the record (and any nested ordered records) into plain Go maps
// and slices.
func (o *Ordered) Map() map[string]any {
	if o == nil {
		return nil
	}
	out := make(map[string]any, len(o.fields))
	for _, f := range o.fields {
		out[f.Key] = Plain(f.Value)
	}
	return out
}

// MarshalJSON writes the record as a JSON object in field order.
func (o *Ordered) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Key, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Plain recursively replaces ordered records with map[string]any so values
// can be handed to libraries that only understand built-in Go types.
func Plain(v any) any {
	switch t := v.(type) {
	case *Ordered:
		return t.Map()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Plain(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Plain(e)
		}
		return out
	default:
		return v
	}
}

// FromMap builds an ordered record from a Go map. Go maps carry no order, so
// keys are sorted ascending to keep column order deterministic.
func FromMap(m map[string]any) *Ordered {
	o := &Ordered{}
	for _, k := range SortedKeys(m) {
		o.Set(k, fromGo(m[k]))
	}
	return o
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FromMaps converts a slice of maps with FromMap.
func FromMaps(rows []map[string]any) []Record {
	out := make([]Record, len(rows))
	for i, r := range rows {
		out[i] = FromMap(r)
	}
	return out
}

// FromStruct converts a struct (or pointer to struct) into an ordered record.
// The value is marshaled to JSON, so field order follows the declaration
// order and json tags control the keys.
func FromStruct(v any) (*Ordered, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal struct: %w", err)
	}
	recs, err := Decode(b, DecodeOptions{Format: FormatJSON})
	if err != nil {
		return nil, err
	}
	if len(recs) != 1 {
		return nil, fmt.Errorf("expected a single object, got %d records", len(recs))
	}
	o, ok := recs[0].(*Ordered)
	if !ok {
		return nil, fmt.Errorf("unexpected record type %T", recs[0])
	}
	return o, nil
}

// FromStructs converts a slice of structs with FromStruct.
func FromStructs[T any](items []T) ([]Record, error) {
	out := make([]Record, 0, len(items))
	for i, it := range items {
		o, err := FromStruct(it)
		if err != nil {
			return nil, fmt.Errorf("item [%d]: %w", i, err)
		}
		out = append(out, o)
	}
	return out, nil
}

func fromGo(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return FromMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = fromGo(e)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = FromMap(e)
		}
		return out
	default:
		return v
	}
}
