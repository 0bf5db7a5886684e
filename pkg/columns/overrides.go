package columns

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// DecodeOverrides converts a loosely typed map (from YAML, JSON or TOML) into
// overrides. String values such as "true" or "20" are accepted.
func DecodeOverrides(raw map[string]any) (map[string]Override, error) {
	out := make(map[string]Override, len(raw))
	for key, v := range raw {
		var ov Override
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &ov,
			TagName:          "mapstructure",
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(v); err != nil {
			return nil, fmt.Errorf("column %q: %w", key, err)
		}
		if ov.Width < 0 {
			return nil, fmt.Errorf("column %q: width must be non-negative", key)
		}
		out[key] = ov
	}
	return out, nil
}

// ParseOverrideFlag parses "key=label:Name,numeric:true,width:20". Every
// attribute is optional; a label may not contain commas.
func ParseOverrideFlag(s string) (string, Override, error) {
	key, attrs, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", Override{}, fmt.Errorf("invalid column override %q (expected key=attr:value,...)", s)
	}
	var ov Override
	for _, part := range strings.Split(attrs, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, val, ok := strings.Cut(part, ":")
		if !ok {
			return "", Override{}, fmt.Errorf("column %q: invalid attribute %q", key, part)
		}
		val = strings.TrimSpace(val)
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "label":
			ov.Label = val
		case "numeric":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return "", Override{}, fmt.Errorf("column %q: numeric: %w", key, err)
			}
			ov.Numeric = &b
		case "width":
			w, err := strconv.Atoi(val)
			if err != nil {
				return "", Override{}, fmt.Errorf("column %q: width: %w", key, err)
			}
			if w < 0 {
				return "", Override{}, fmt.Errorf("column %q: width must be non-negative", key)
			}
			ov.Width = w
		default:
			return "", Override{}, fmt.Errorf("column %q: unknown attribute %q", key, name)
		}
	}
	return key, ov, nil
}

// Merge returns base with every entry of over applied on top. Provided fields
// of an override win over the base override for the same key.
func Merge(base, over map[string]Override) map[string]Override {
	out := make(map[string]Override, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		cur := out[k]
		if v.Label != "" {
			cur.Label = v.Label
		}
		if v.Numeric != nil {
			cur.Numeric = v.Numeric
		}
		if v.Width > 0 {
			cur.Width = v.Width
		}
		out[k] = cur
	}
	return out
}
