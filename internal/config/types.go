package config

import (
	"strconv"

	"gopkg.in/yaml.v3"
)

// File is the full configuration document: an app: section and a ui: section.
type File struct {
	App AppConfig `yaml:"app"`
	UI  UIConfig  `yaml:"ui"`
}

// AppConfig holds application metadata and debug settings.
type AppConfig struct {
	About AboutConfig `yaml:"about,omitempty"`
	Debug DebugConfig `yaml:"debug,omitempty"`
}

// AboutConfig contains application metadata shown by the version command.
type AboutConfig struct {
	Name          string `yaml:"name,omitempty"`
	Description   string `yaml:"description,omitempty"`
	License       string `yaml:"license,omitempty"`
	RepositoryURL string `yaml:"repository_url,omitempty"`
}

// DebugConfig holds logging configuration.
type DebugConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`
	// Level is the logr verbosity used when debug is enabled (default -1).
	Level *int `yaml:"level,omitempty"`
}

// UIConfig holds everything the table view reads.
type UIConfig struct {
	Theme  ThemeSelectionConfig   `yaml:"theme,omitempty"`
	Themes map[string]ThemeConfig `yaml:"themes,omitempty"`
	Table  TableConfig            `yaml:"table,omitempty"`
}

// ThemeSelectionConfig holds theme selection configuration.
type ThemeSelectionConfig struct {
	Default string `yaml:"default,omitempty"`
}

// ColorValue stores a color token (number or name) and marshals numerics as YAML ints.
type ColorValue string

func (c ColorValue) MarshalYAML() (interface{}, error) {
	if c == "" {
		return "", nil
	}
	s := string(c)
	if _, err := strconv.Atoi(s); err == nil {
		return &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!int",
			Value: s,
		}, nil
	}
	return s, nil
}

func (c *ColorValue) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		*c = ""
		return nil
	}
	// Accept both ints and strings; store the literal value.
	*c = ColorValue(value.Value)
	return nil
}

// ThemeConfig is a YAML-friendly theme (colors accept ints or strings).
type ThemeConfig struct {
	HeaderFG      ColorValue `yaml:"header_fg,omitempty"`
	HeaderBG      ColorValue `yaml:"header_bg,omitempty"`
	CellFG        ColorValue `yaml:"cell_fg,omitempty"`
	SelectedFG    ColorValue `yaml:"selected_fg,omitempty"`
	SelectedBG    ColorValue `yaml:"selected_bg,omitempty"`
	BorderColor   ColorValue `yaml:"border_color,omitempty"`
	PlaceholderFG ColorValue `yaml:"placeholder_fg,omitempty"`
	FooterFG      ColorValue `yaml:"footer_fg,omitempty"`
	BorderStyle   string     `yaml:"border_style,omitempty"`
}

// TableConfig holds the table defaults. Heights and widths accept a cell
// count ("30") or a percentage of the terminal ("100%").
type TableConfig struct {
	Height             string   `yaml:"height,omitempty"`
	Width              string   `yaml:"width,omitempty"`
	DefaultColumnWidth *int     `yaml:"default_column_width,omitempty"`
	ExcludeKeys        []string `yaml:"exclude_keys,omitempty"`
	// Columns maps a field name to its override attributes
	// (label, numeric, width). Decoded with columns.DecodeOverrides.
	Columns map[string]any `yaml:"columns,omitempty"`
	Sample  string         `yaml:"sample,omitempty"`
	Footer  *bool          `yaml:"footer,omitempty"`
}
