// Package columns derives table column metadata from the shape of a sample
// record.
//
// Derivation is a pure function of the sample record, the excluded keys, the
// per-column overrides and the default width. [Cache] memoizes it so a table
// only recomputes its columns when one of those inputs actually changes.
package columns

import (
	"encoding/json"
	"reflect"
	"slices"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/oakwood-commons/dyntable/pkg/record"
)

// DefaultWidth is the column width used when neither an override nor a
// positive default width is supplied.
const DefaultWidth = 100

// Descriptor describes one rendered column.
type Descriptor struct {
	// Key is the record field the column reads.
	Key string
	// Label is the header text.
	Label string
	// Numeric right-aligns the header and cells.
	Numeric bool
	// Width is the column width in terminal cells. Always positive.
	Width int
}

// Override replaces derived attributes of a single column. Zero values mean
// "not provided": an empty Label or a zero Width fall back to the derived
// value, and a nil Numeric keeps type inference.
type Override struct {
	Label   string `mapstructure:"label" json:"label,omitempty" yaml:"label,omitempty"`
	Numeric *bool  `mapstructure:"numeric" json:"numeric,omitempty" yaml:"numeric,omitempty"`
	Width   int    `mapstructure:"width" json:"width,omitempty" yaml:"width,omitempty"`
}

// Equal reports whether two overrides carry the same values.
func (o Override) Equal(other Override) bool {
	if o.Label != other.Label || o.Width != other.Width {
		return false
	}
	if (o.Numeric == nil) != (other.Numeric == nil) {
		return false
	}
	return o.Numeric == nil || *o.Numeric == *other.Numeric
}

// Bool returns a pointer to b, for building overrides inline.
func Bool(b bool) *bool { return &b }

// Derive builds one descriptor per key of sample that is not excluded, in
// the sample's key order. A nil sample yields no columns.
func Derive(sample record.Record, exclude []string, overrides map[string]Override, defaultWidth int) []Descriptor {
	if sample == nil {
		return []Descriptor{}
	}
	return build(sample, sample.Keys(), exclude, overrides, defaultWidth)
}

// DeriveFor builds descriptors for an explicit key list instead of the keys
// of the sample. The sample, when non-nil, still drives numeric inference.
func DeriveFor(keys []string, sample record.Record, exclude []string, overrides map[string]Override, defaultWidth int) []Descriptor {
	return build(sample, keys, exclude, overrides, defaultWidth)
}

func build(sample record.Record, keys []string, exclude []string, overrides map[string]Override, defaultWidth int) []Descriptor {
	if defaultWidth <= 0 {
		defaultWidth = DefaultWidth
	}
	out := make([]Descriptor, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		if seen[key] || slices.Contains(exclude, key) {
			continue
		}
		seen[key] = true

		var value any
		if sample != nil {
			value, _ = sample.Value(key)
		}
		ov := overrides[key]

		d := Descriptor{
			Key:     key,
			Label:   Label(key),
			Numeric: IsNumeric(value),
			Width:   defaultWidth,
		}
		if ov.Label != "" {
			d.Label = ov.Label
		}
		if ov.Numeric != nil {
			d.Numeric = *ov.Numeric
		}
		if ov.Width > 0 {
			d.Width = ov.Width
		}
		out = append(out, d)
	}
	return out
}

// Label upper-cases the first character of key and leaves the rest as is.
func Label(key string) string {
	r, size := utf8.DecodeRuneInString(key)
	if r == utf8.RuneError {
		return key
	}
	return string(unicode.ToUpper(r)) + key[size:]
}

// IsNumeric reports whether v holds a number.
func IsNumeric(v any) bool {
	switch v.(type) {
	case nil:
		return false
	case json.Number, decimal.Decimal, *decimal.Decimal:
		return true
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
