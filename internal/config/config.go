// Package config loads the dyntable configuration: the embedded defaults
// merged with an optional user YAML file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

var (
	embeddedConfigOnce sync.Once
	embeddedConfig     File
	embeddedConfigErr  error
)

// DefaultConfigYAML returns a copy of the embedded default config YAML bytes.
func DefaultConfigYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default parses and returns the embedded default configuration.
func Default() (File, error) {
	embeddedConfigOnce.Do(func() {
		if len(embeddedDefaultConfig) == 0 {
			embeddedConfigErr = errors.New("embedded default config is empty")
			return
		}
		if err := yaml.Unmarshal(embeddedDefaultConfig, &embeddedConfig); err != nil {
			embeddedConfigErr = fmt.Errorf("decode embedded default config: %w", err)
			return
		}
		if embeddedConfig.UI.Theme.Default == "" || len(embeddedConfig.UI.Themes) == 0 {
			embeddedConfigErr = errors.New("default config is missing required theme defaults")
		}
	})
	return clone(embeddedConfig), embeddedConfigErr
}

// Load returns the defaults merged with the YAML file at path. An empty path
// returns the defaults.
func Load(path string) (File, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, fmt.Errorf("load default config: %w", err)
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	var user File
	if err := yaml.Unmarshal(data, &user); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	return Merge(cfg, user), nil
}

// ResolvePath returns explicit when set, else the user config file under
// $XDG_CONFIG_HOME/dyntable or ~/.config/dyntable when it exists.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	xdg := os.Getenv("XDG_CONFIG_HOME")
	candidate := ""
	if xdg != "" {
		candidate = filepath.Join(xdg, "dyntable", "config.yaml")
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", "dyntable", "config.yaml")
	}
	if candidate != "" {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}

// Merge overlays every field set in override onto base.
func Merge(base, override File) File {
	cfg := clone(base)

	about := override.App.About
	if about.Name != "" {
		cfg.App.About.Name = about.Name
	}
	if about.Description != "" {
		cfg.App.About.Description = about.Description
	}
	if about.License != "" {
		cfg.App.About.License = about.License
	}
	if about.RepositoryURL != "" {
		cfg.App.About.RepositoryURL = about.RepositoryURL
	}
	if override.App.Debug.Enabled != nil {
		cfg.App.Debug.Enabled = override.App.Debug.Enabled
	}
	if override.App.Debug.Level != nil {
		cfg.App.Debug.Level = override.App.Debug.Level
	}

	if override.UI.Theme.Default != "" {
		cfg.UI.Theme.Default = override.UI.Theme.Default
	}
	if cfg.UI.Themes == nil {
		cfg.UI.Themes = map[string]ThemeConfig{}
	}
	for name, th := range override.UI.Themes {
		cfg.UI.Themes[name] = mergeThemeConfig(cfg.UI.Themes[name], th)
	}

	tbl := override.UI.Table
	if tbl.Height != "" {
		cfg.UI.Table.Height = tbl.Height
	}
	if tbl.Width != "" {
		cfg.UI.Table.Width = tbl.Width
	}
	if tbl.DefaultColumnWidth != nil {
		cfg.UI.Table.DefaultColumnWidth = tbl.DefaultColumnWidth
	}
	if len(tbl.ExcludeKeys) > 0 {
		cfg.UI.Table.ExcludeKeys = append([]string(nil), tbl.ExcludeKeys...)
	}
	if len(tbl.Columns) > 0 {
		if cfg.UI.Table.Columns == nil {
			cfg.UI.Table.Columns = map[string]any{}
		}
		for k, v := range tbl.Columns {
			cfg.UI.Table.Columns[k] = v
		}
	}
	if tbl.Sample != "" {
		cfg.UI.Table.Sample = tbl.Sample
	}
	if tbl.Footer != nil {
		cfg.UI.Table.Footer = tbl.Footer
	}
	return cfg
}

func mergeThemeConfig(base, override ThemeConfig) ThemeConfig {
	out := base
	set := func(val ColorValue, dst *ColorValue) {
		if val != "" {
			*dst = val
		}
	}
	set(override.HeaderFG, &out.HeaderFG)
	set(override.HeaderBG, &out.HeaderBG)
	set(override.CellFG, &out.CellFG)
	set(override.SelectedFG, &out.SelectedFG)
	set(override.SelectedBG, &out.SelectedBG)
	set(override.BorderColor, &out.BorderColor)
	set(override.PlaceholderFG, &out.PlaceholderFG)
	set(override.FooterFG, &out.FooterFG)
	if override.BorderStyle != "" {
		out.BorderStyle = override.BorderStyle
	}
	return out
}

// ThemeNames returns the configured theme names in ascending order.
func (f File) ThemeNames() []string {
	names := make([]string, 0, len(f.UI.Themes))
	for name := range f.UI.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DebugEnabled reports whether app.debug.enabled is set to true.
func (f File) DebugEnabled() bool {
	return f.App.Debug.Enabled != nil && *f.App.Debug.Enabled
}

// FooterEnabled reports whether the row position footer is shown. Defaults to true.
func (f File) FooterEnabled() bool {
	return f.UI.Table.Footer == nil || *f.UI.Table.Footer
}

func clone(f File) File {
	out := f
	if f.UI.Themes != nil {
		out.UI.Themes = make(map[string]ThemeConfig, len(f.UI.Themes))
		for k, v := range f.UI.Themes {
			out.UI.Themes[k] = v
		}
	}
	if f.UI.Table.Columns != nil {
		out.UI.Table.Columns = make(map[string]any, len(f.UI.Table.Columns))
		for k, v := range f.UI.Table.Columns {
			out.UI.Table.Columns[k] = v
		}
	}
	out.UI.Table.ExcludeKeys = append([]string(nil), f.UI.Table.ExcludeKeys...)
	return out
}
