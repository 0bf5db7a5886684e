package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/dyntable/internal/config"
	"github.com/oakwood-commons/dyntable/internal/limiter"
	"github.com/oakwood-commons/dyntable/internal/ui"
	"github.com/oakwood-commons/dyntable/pkg/dyntable"
	"github.com/oakwood-commons/dyntable/pkg/logger"
	"github.com/oakwood-commons/dyntable/pkg/record"
	"github.com/oakwood-commons/dyntable/pkg/settings"
)

// errShowHelp is returned by loadData when no input is provided and help should be shown.
var errShowHelp = errors.New("no input provided")

// exitError carries the process exit status for an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// usageError marks err as a usage or input problem (exit status 2).
func usageError(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: 2, err: err}
}

// ExitCode maps an error returned by Execute to a process exit status:
// 0 on success, 2 for usage or input errors, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	return 1
}

// rootOptions holds the flag values of one root command instance.
type rootOptions struct {
	configFile  string
	themeName   string
	format      string
	jsonPath    string
	sqlitePath  string
	query       string
	exclude     []string
	columns     []string
	columnsFile string
	schemaFile  string
	colWidth    int
	sample      string
	where       string
	limit       int
	offset      int
	tail        int
	height      dyntable.Size
	width       dyntable.Size
	snapshot    bool
	interactive bool
	watch       bool
	noColor     bool
	debug       bool
	logFile     string

	run *settings.Run
	lgr logr.Logger
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	cmd := &cobra.Command{
		Use:   settings.CliBinaryName + " [file]",
		Short: shortHelp(),
		Long:  longHelp(),
		Example: "\n  dyntable people.json\n  dyntable people.csv --exclude id --column age=label:Years\n" +
			"  curl -s api/users | dyntable --path data.items --where 'row.active'\n" +
			"  dyntable --sqlite app.db --query 'SELECT * FROM users' --snapshot\n" +
			"  dyntable events.ndjson --watch\n",
		Args: func(cmd *cobra.Command, args []string) error {
			return usageError(cobra.MaximumNArgs(1)(cmd, args))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setup(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.execute(cmd, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.format, "format", string(record.FormatAuto), "input format: auto|json|yaml|ndjson|csv|toml")
	f.StringVar(&o.jsonPath, "path", "", "gjson path selecting the records inside a JSON document (e.g. data.items)")
	f.StringVar(&o.sqlitePath, "sqlite", "", "read records from this SQLite database (requires --query)")
	f.StringVar(&o.query, "query", "", "SQL query run against --sqlite")
	f.StringSliceVar(&o.exclude, "exclude", nil, "field names never shown as columns (repeatable or comma separated)")
	f.StringArrayVar(&o.columns, "column", nil, "column override: key=label:Text,numeric:true,width:20 (repeatable)")
	f.StringVar(&o.columnsFile, "columns-file", "", "YAML, JSON or TOML file mapping field names to column overrides")
	f.StringVar(&o.schemaFile, "schema", "", "JSON Schema file fixing column order and hints (title, type, maxLength, deprecated)")
	f.IntVar(&o.colWidth, "default-column-width", 0, "width of columns without an override (default from config)")
	f.StringVar(&o.sample, "sample", "", "record used to infer columns: first|first-non-empty (default from config)")
	f.StringVar(&o.where, "where", "", "CEL predicate over 'row' keeping matching records, e.g. 'row.age > 30'")
	f.IntVar(&o.limit, "limit", 0, "Limit total number of records displayed")
	f.IntVar(&o.offset, "offset", 0, "Skip the first N records")
	f.IntVar(&o.tail, "tail", 0, "Show the last N records (mutually exclusive with --limit; ignores --offset)")
	f.Var(&o.height, "height", "table height in rows or percent of the terminal, e.g. 20 or 50% (default from config)")
	f.Var(&o.width, "width", "table width in cells or percent of the terminal, e.g. 80 or 100% (default from config)")
	f.BoolVar(&o.snapshot, "snapshot", false, "render the table once to stdout and exit")
	f.BoolVarP(&o.interactive, "interactive", "i", false, "start the interactive table (default when stdout is a terminal)")
	f.BoolVar(&o.watch, "watch", false, "reload the input file when it changes (interactive only)")
	f.StringVar(&o.themeName, "theme", "", "theme name (default from config; see 'dyntable themes')")
	f.BoolVar(&o.noColor, "no-color", false, "disable color output")

	pf := cmd.PersistentFlags()
	pf.StringVar(&o.configFile, "config-file", "", "path to a YAML config file (themes, table defaults)")
	pf.BoolVar(&o.debug, "debug", false, "enable debug logging")
	pf.StringVar(&o.logFile, "log-file", "", "write logs to this file instead of stderr")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})
	cmd.Version = versionString()
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.AddCommand(newVersionCmd(), newThemesCmd(o))
	return cmd
}

var rootCmd = newRootCmd()

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setup builds the per-run settings and the logger. Logs go to --log-file,
// else stderr. The interactive table owns the terminal, so it logs nowhere
// without --log-file and reports reload errors in its footer instead.
func (o *rootOptions) setup(cmd *cobra.Command, args []string) error {
	run := settings.NewCliParams()
	run.NoColor = o.noColor
	run.Snapshot = o.snapshot
	run.Watch = o.watch
	run.LogFile = o.logFile
	run.Input = settings.InputSettings{Format: o.format, SQLite: o.sqlitePath, Query: o.query}
	if len(args) > 0 {
		run.Input.Path = args[0]
	}
	if o.debug {
		run.MinLogLevel = -1
	}
	o.run = run

	opts := logger.Options{Level: run.MinLogLevel, Output: cmd.ErrOrStderr(), File: o.logFile}
	if o.logFile != "" {
		opts.Encoding = logger.EncodingJSON
	} else if o.interactiveMode() {
		opts.Output = io.Discard
	}
	global, err := logger.Init(opts)
	if err != nil {
		return usageError(err)
	}
	lgr := global.WithValues(logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())
	o.lgr = lgr

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithLogger(ctx, &lgr)
	ctx = settings.IntoContext(ctx, run)
	cmd.SetContext(ctx)
	return nil
}

// interactiveMode reports whether the table runs as a program rather than
// a one-off render.
func (o *rootOptions) interactiveMode() bool {
	if o.snapshot {
		return false
	}
	return o.interactive || o.watch || stdoutIsTerminal()
}

func (o *rootOptions) execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	limits := limiter.Config{Limit: o.limit, Offset: o.offset, Tail: o.tail}
	if err := limits.Validate(); err != nil {
		return usageError(fmt.Errorf("record limiting error: %w", err))
	}
	if err := o.validate(); err != nil {
		return usageError(err)
	}

	cfg, err := config.Load(config.ResolvePath(o.configFile))
	if err != nil {
		return usageError(err)
	}
	o.lgr.V(1).Info("config loaded", "themes", cfg.ThemeNames(), "debug", cfg.DebugEnabled())

	theme, err := ui.ThemeByName(cfg, o.themeName)
	if err != nil {
		return usageError(err)
	}
	tableOpts, err := o.tableOptions(cfg, theme)
	if err != nil {
		return usageError(err)
	}

	load := func() ([]record.Record, error) {
		data, err := o.loadData(ctx, args)
		if err != nil {
			return nil, err
		}
		return o.refine(data, limits)
	}
	data, err := load()
	if errors.Is(err, errShowHelp) {
		return cmd.Help()
	}
	if err != nil {
		return usageError(err)
	}
	o.lgr.V(1).Info("input loaded", logger.InputKey, o.run.Input.Path, "records", len(data))

	if !o.interactiveMode() {
		return o.renderSnapshot(cmd.OutOrStdout(), data, tableOpts)
	}
	return o.runProgram(ctx, data, tableOpts, load)
}

// validate checks flag combinations cobra cannot express on its own.
func (o *rootOptions) validate() error {
	switch {
	case o.sqlitePath != "" && o.query == "":
		return errors.New("--query is required with --sqlite")
	case o.query != "" && o.sqlitePath == "":
		return errors.New("--query needs --sqlite")
	case o.snapshot && o.interactive:
		return errors.New("--snapshot and --interactive are mutually exclusive")
	case o.snapshot && o.watch:
		return errors.New("--snapshot and --watch are mutually exclusive")
	case o.watch && (o.sqlitePath != "" || o.run.Input.FromStdin()):
		return errors.New("--watch needs a file argument")
	}
	return nil
}

func shortHelp() string {
	cfg, _ := config.Default()
	if d := strings.TrimSpace(cfg.App.About.Description); d != "" {
		return d
	}
	return "Browse records as a scrollable table"
}

func longHelp() string {
	return shortHelp() + `

Records are read from a file or stdin (JSON, YAML, NDJSON, CSV or TOML) or
from a SQLite query. Columns are derived from the first record: its fields in
order, labelled with an upper-cased first letter, numbers right aligned.

Keys in the interactive table: arrows/pgup/pgdown move, / filters rows,
esc clears the filter, q quits.`
}
