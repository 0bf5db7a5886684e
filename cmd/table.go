package cmd

import (
	"context"
	"fmt"
	"io"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/dyntable/internal/config"
	"github.com/oakwood-commons/dyntable/internal/source"
	"github.com/oakwood-commons/dyntable/internal/ui"
	"github.com/oakwood-commons/dyntable/pkg/columns"
	"github.com/oakwood-commons/dyntable/pkg/dyntable"
	"github.com/oakwood-commons/dyntable/pkg/record"
)

// snapshotChrome is the number of rows a snapshot adds around the records:
// two border rows, the header and its rule.
const snapshotChrome = 4

// tableOptions resolves the table options from the config file, then the
// schema and columns file, then flags.
func (o *rootOptions) tableOptions(cfg config.File, theme ui.Theme) (dyntable.Options, error) {
	tc := cfg.UI.Table
	opts := dyntable.DefaultOptions()
	opts.Logger = o.lgr

	if tc.Height != "" {
		s, err := dyntable.ParseSize(tc.Height)
		if err != nil {
			return opts, fmt.Errorf("config ui.table.height: %w", err)
		}
		opts.Height = s
	}
	if tc.Width != "" {
		s, err := dyntable.ParseSize(tc.Width)
		if err != nil {
			return opts, fmt.Errorf("config ui.table.width: %w", err)
		}
		opts.Width = s
	}
	if !o.height.IsZero() {
		opts.Height = o.height
	}
	if !o.width.IsZero() {
		opts.Width = o.width
	}

	if tc.DefaultColumnWidth != nil {
		opts.DefaultColumnWidth = *tc.DefaultColumnWidth
	}
	if o.colWidth > 0 {
		opts.DefaultColumnWidth = o.colWidth
	}

	sample := tc.Sample
	if o.sample != "" {
		sample = o.sample
	}
	if sample != "" {
		s, err := columns.ParseSampleStrategy(sample)
		if err != nil {
			return opts, err
		}
		opts.Sample = s
	}

	overrides, err := columns.DecodeOverrides(tc.Columns)
	if err != nil {
		return opts, fmt.Errorf("config ui.table.columns: %w", err)
	}
	exclude := append([]string{}, tc.ExcludeKeys...)

	if o.schemaFile != "" {
		hints, err := loadSchema(o.schemaFile)
		if err != nil {
			return opts, err
		}
		opts.Schema = hints.Order
		overrides = columns.Merge(overrides, hints.Overrides)
		exclude = append(exclude, hints.Exclude...)
	}
	if o.columnsFile != "" {
		fromFile, err := loadColumnsFile(o.columnsFile)
		if err != nil {
			return opts, err
		}
		overrides = columns.Merge(overrides, fromFile)
	}
	for _, raw := range o.columns {
		key, ov, err := columns.ParseOverrideFlag(raw)
		if err != nil {
			return opts, err
		}
		overrides = columns.Merge(overrides, map[string]columns.Override{key: ov})
	}
	opts.ColumnConfig = overrides
	opts.ExcludeKeys = append(exclude, o.exclude...)

	opts.Components = theme.Components(o.noColor)
	opts.PlaceholderStyle = theme.PlaceholderStyle(o.noColor)
	opts.FooterStyle = theme.FooterStyle(o.noColor)
	opts.ShowFooter = cfg.FooterEnabled()
	return opts, nil
}

// renderSnapshot writes one frame sized to fit every record.
func (o *rootOptions) renderSnapshot(w io.Writer, data []record.Record, opts dyntable.Options) error {
	m := dyntable.NewWithOptions(data, opts)
	width, _ := detectTerminalSize()
	height := max(len(data), 1) + snapshotChrome
	if opts.ShowFooter {
		height++
	}
	m.SetWindowSize(width, height)
	_, err := fmt.Fprintln(w, m.Render())
	return err
}

// runProgram runs the interactive table until the user quits. With --watch
// the input file is reloaded into the running program on change.
func (o *rootOptions) runProgram(ctx context.Context, data []record.Record, opts dyntable.Options, load source.LoadFunc) error {
	m := dyntable.NewWithOptions(data, opts)
	progOpts, release := programOptions()
	defer release()
	if w, h := detectTerminalSize(); w > 0 && h > 0 {
		progOpts = append(progOpts, tea.WithWindowSize(w, h))
	}
	p := tea.NewProgram(m, progOpts...)

	if o.watch {
		wctx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			send := func(records []record.Record, err error) {
				p.Send(dyntable.DataMsg{Records: records, Err: err})
			}
			if err := source.Watch(wctx, o.run.Input.Path, load, send); err != nil {
				send(nil, err)
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run table: %w", err)
	}
	return nil
}
