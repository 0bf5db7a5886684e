package ui

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/dyntable/internal/config"
	"github.com/oakwood-commons/dyntable/internal/ui/table"
)

// Theme defines the colors and border used by the table view.
type Theme struct {
	HeaderFG      color.Color // Header text
	HeaderBG      color.Color // Header background
	CellFG        color.Color // Body cell text
	SelectedFG    color.Color // Cursor row foreground
	SelectedBG    color.Color // Cursor row background
	BorderColor   color.Color // Outer border and header rule
	PlaceholderFG color.Color // "No data available" text
	FooterFG      color.Color // Row position footer
	BorderStyle   string      // Border style (normal|rounded)
}

// FallbackTheme is used when the configuration names no usable theme.
func FallbackTheme() Theme {
	return Theme{
		HeaderFG:      lipgloss.Color("81"),  // cyan title
		HeaderBG:      lipgloss.Color("236"), // charcoal header background
		CellFG:        lipgloss.Color("252"),
		SelectedFG:    lipgloss.Color("250"), // muted light text on selection
		SelectedBG:    lipgloss.Color("24"),  // deep teal selection
		BorderColor:   lipgloss.Color("238"), // subtle separators
		PlaceholderFG: lipgloss.Color("244"),
		FooterFG:      lipgloss.Color("244"),
		BorderStyle:   "rounded",
	}
}

// ThemeFromConfig builds a theme from its YAML form on top of FallbackTheme.
func ThemeFromConfig(cfg config.ThemeConfig) Theme {
	th := FallbackTheme()
	set := func(val config.ColorValue, dst *color.Color) {
		if val != "" {
			*dst = lipgloss.Color(string(val))
		}
	}
	set(cfg.HeaderFG, &th.HeaderFG)
	set(cfg.HeaderBG, &th.HeaderBG)
	set(cfg.CellFG, &th.CellFG)
	set(cfg.SelectedFG, &th.SelectedFG)
	set(cfg.SelectedBG, &th.SelectedBG)
	set(cfg.BorderColor, &th.BorderColor)
	set(cfg.PlaceholderFG, &th.PlaceholderFG)
	set(cfg.FooterFG, &th.FooterFG)
	if cfg.BorderStyle != "" {
		th.BorderStyle = cfg.BorderStyle
	}
	th.BorderStyle = normalizeBorderStyle(th.BorderStyle)
	return th
}

// Themes builds every theme declared in the configuration.
func Themes(cfg config.File) map[string]Theme {
	out := make(map[string]Theme, len(cfg.UI.Themes))
	for name, tc := range cfg.UI.Themes {
		out[name] = ThemeFromConfig(tc)
	}
	return out
}

// ThemeByName returns the named theme, or the configured default when name
// is empty.
func ThemeByName(cfg config.File, name string) (Theme, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.TrimSpace(cfg.UI.Theme.Default)
	}
	if name == "" {
		return FallbackTheme(), nil
	}
	tc, ok := cfg.UI.Themes[name]
	if !ok {
		return Theme{}, fmt.Errorf("unknown theme %q (available: %s)", name, availableThemeNames(cfg))
	}
	return ThemeFromConfig(tc), nil
}

func availableThemeNames(cfg config.File) string {
	if len(cfg.UI.Themes) == 0 {
		return "(none)"
	}
	names := make([]string, 0, len(cfg.UI.Themes))
	for name := range cfg.UI.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func normalizeBorderStyle(val string) string {
	v := strings.TrimSpace(strings.ToLower(val))
	switch v {
	case "rounded", "round":
		return "rounded"
	default:
		return "normal"
	}
}

func borderForStyle(style string) lipgloss.Border {
	switch normalizeBorderStyle(style) {
	case "rounded":
		return lipgloss.RoundedBorder()
	default:
		return lipgloss.NormalBorder()
	}
}

// Components maps the theme onto the table roles. With noColor only layout
// and text attributes remain and the cursor row is shown reversed.
func (th Theme) Components(noColor bool) table.StyleComponents {
	c := table.DefaultComponents()
	c.ScrollerStyle = lipgloss.NewStyle().Border(borderForStyle(th.BorderStyle))
	if noColor {
		return c
	}
	c.ScrollerStyle = c.ScrollerStyle.BorderForeground(th.BorderColor)
	c.HeadStyle = c.HeadStyle.
		Foreground(th.HeaderFG).
		Background(th.HeaderBG).
		BorderForeground(th.BorderColor)
	c.BodyStyle = c.BodyStyle.Foreground(th.CellFG)
	c.RowStyle = lipgloss.NewStyle().
		Foreground(th.SelectedFG).
		Background(th.SelectedBG).
		Bold(true)
	return c
}

// PlaceholderStyle styles the empty-state message.
func (th Theme) PlaceholderStyle(noColor bool) lipgloss.Style {
	s := lipgloss.NewStyle().Italic(true)
	if noColor {
		return s
	}
	return s.Foreground(th.PlaceholderFG)
}

// FooterStyle styles the row position footer.
func (th Theme) FooterStyle(noColor bool) lipgloss.Style {
	s := lipgloss.NewStyle()
	if noColor {
		return s
	}
	return s.Foreground(th.FooterFG)
}
