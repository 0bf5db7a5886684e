package dyntable

import (
	"charm.land/lipgloss/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/dyntable/internal/ui/table"
	"github.com/oakwood-commons/dyntable/pkg/columns"
)

// Components maps the structural roles of the table (Scroller, Table, Head,
// Body, Row) onto styles.
type Components = table.Components

// StyleComponents is a Components backed by plain lipgloss styles.
type StyleComponents = table.StyleComponents

// DefaultComponents returns the uncoloured role mapping.
func DefaultComponents() StyleComponents { return table.DefaultComponents() }

// Defaults for Options.
const (
	DefaultHeight = 400
	DefaultWidth  = 100 // percent
)

// PlaceholderText is shown instead of the grid when there is nothing to render.
const PlaceholderText = "No data available"

// Options configures a table.
type Options struct {
	// Height of the outer panel. Defaults to 400 cells, clamped to the window.
	Height Size
	// Width of the outer panel. Defaults to 100% of the window.
	Width Size
	// ExcludeKeys are record fields that never become columns.
	ExcludeKeys []string
	// ColumnConfig overrides derived column attributes by field name.
	ColumnConfig map[string]columns.Override
	// DefaultColumnWidth is used for columns without a width override.
	DefaultColumnWidth int
	// Schema fixes the column keys and order instead of inferring them.
	Schema []string
	// Sample selects the record columns are inferred from.
	Sample columns.SampleStrategy

	Components       Components
	PlaceholderStyle lipgloss.Style
	FooterStyle      lipgloss.Style
	// ShowFooter adds a row position line below the panel.
	ShowFooter bool

	Logger logr.Logger
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Height:             Cells(DefaultHeight),
		Width:              Percent(DefaultWidth),
		DefaultColumnWidth: columns.DefaultWidth,
		Sample:             columns.SampleFirst,
		Components:         table.DefaultComponents(),
		PlaceholderStyle:   lipgloss.NewStyle().Italic(true),
		FooterStyle:        lipgloss.NewStyle(),
		Logger:             logr.Discard(),
	}
}

func (o Options) columnConfig() columns.Config {
	return columns.Config{
		Exclude:      o.ExcludeKeys,
		Overrides:    o.ColumnConfig,
		DefaultWidth: o.DefaultColumnWidth,
		Schema:       o.Schema,
		Sample:       o.Sample,
	}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.Height.IsZero() {
		o.Height = d.Height
	}
	if o.Width.IsZero() {
		o.Width = d.Width
	}
	if o.DefaultColumnWidth <= 0 {
		o.DefaultColumnWidth = d.DefaultColumnWidth
	}
	if o.Sample == "" {
		o.Sample = d.Sample
	}
	if o.Components == nil {
		o.Components = d.Components
	}
	if o.Logger.GetSink() == nil {
		o.Logger = d.Logger
	}
	return o
}

// Option mutates Options.
type Option func(*Options)

// WithHeight sets the outer panel height.
func WithHeight(s Size) Option { return func(o *Options) { o.Height = s } }

// WithWidth sets the outer panel width.
func WithWidth(s Size) Option { return func(o *Options) { o.Width = s } }

// WithExcludeKeys omits the given fields from the columns.
func WithExcludeKeys(keys ...string) Option {
	return func(o *Options) { o.ExcludeKeys = append(o.ExcludeKeys, keys...) }
}

// WithColumnConfig sets per-column overrides.
func WithColumnConfig(cfg map[string]columns.Override) Option {
	return func(o *Options) { o.ColumnConfig = cfg }
}

// WithDefaultColumnWidth sets the width for columns without an override.
func WithDefaultColumnWidth(w int) Option { return func(o *Options) { o.DefaultColumnWidth = w } }

// WithSchema fixes the column keys and their order.
func WithSchema(keys ...string) Option { return func(o *Options) { o.Schema = keys } }

// WithSampleStrategy selects the record columns are inferred from.
func WithSampleStrategy(s columns.SampleStrategy) Option { return func(o *Options) { o.Sample = s } }

// WithComponents sets the role styles.
func WithComponents(c Components) Option { return func(o *Options) { o.Components = c } }

// WithPlaceholderStyle styles the "No data available" message.
func WithPlaceholderStyle(s lipgloss.Style) Option { return func(o *Options) { o.PlaceholderStyle = s } }

// WithFooter shows a row position line styled with s.
func WithFooter(s lipgloss.Style) Option {
	return func(o *Options) {
		o.ShowFooter = true
		o.FooterStyle = s
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l logr.Logger) Option { return func(o *Options) { o.Logger = l } }
