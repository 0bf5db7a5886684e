package columns

import (
	"errors"

	"github.com/tidwall/gjson"
)

// SchemaHints are column settings read from a JSON Schema document.
type SchemaHints struct {
	// Order lists the non-deprecated properties in declaration order.
	Order []string
	// Overrides carries title, type and maxLength per property.
	Overrides map[string]Override
	// Exclude lists deprecated properties.
	Exclude []string
}

// ParseSchema reads the properties of a JSON Schema (either an object schema
// or an array schema with object items) and maps them onto column settings:
//
//   - declaration order → column order
//   - title → label
//   - type integer or number → numeric; any other declared type → not numeric
//   - maxLength → width
//   - deprecated: true → excluded
func ParseSchema(data []byte) (SchemaHints, error) {
	if !gjson.ValidBytes(data) {
		return SchemaHints{}, errors.New("invalid JSON schema")
	}
	root := gjson.ParseBytes(data)
	props := root.Get("properties")
	if !props.IsObject() {
		props = root.Get("items.properties")
	}
	hints := SchemaHints{Overrides: map[string]Override{}}
	if !props.IsObject() {
		return hints, nil
	}
	props.ForEach(func(k, v gjson.Result) bool {
		key := k.String()
		if v.Get("deprecated").Bool() {
			hints.Exclude = append(hints.Exclude, key)
			return true
		}
		hints.Order = append(hints.Order, key)

		var ov Override
		ov.Label = v.Get("title").String()
		if t := schemaType(v.Get("type")); t != "" {
			ov.Numeric = Bool(t == "integer" || t == "number")
		}
		if ml := v.Get("maxLength"); ml.Type == gjson.Number && ml.Int() > 0 {
			ov.Width = int(ml.Int())
		}
		if ov != (Override{}) {
			hints.Overrides[key] = ov
		}
		return true
	})
	return hints, nil
}

// schemaType returns the first non-null type of a "type" keyword, which may
// be a string or an array such as ["integer", "null"].
func schemaType(t gjson.Result) string {
	if !t.IsArray() {
		return t.String()
	}
	for _, e := range t.Array() {
		if s := e.String(); s != "null" {
			return s
		}
	}
	return ""
}
