// Package settings provides build metadata, per-run configuration, and
// context helpers shared by the dyntable CLI and library packages.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "dyntable"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// InputSettings describes where the dataset for a run comes from.
type InputSettings struct {
	// Path is the input file; "-" or empty reads stdin.
	Path string
	// Format is the declared input format, or "auto".
	Format string
	// SQLite is a database path; when set the dataset is the result of Query.
	SQLite string
	Query  string
}

// FromStdin reports whether the dataset is read from standard input.
func (i InputSettings) FromStdin() bool {
	return i.SQLite == "" && (i.Path == "" || i.Path == "-")
}

// VersionInfo holds metadata about the build.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds the settings for a single execution.
type Run struct {
	MinLogLevel int8
	LogFile     string
	Input       InputSettings
	Snapshot    bool
	Watch       bool
	NoColor     bool
	ExitOnError bool
}

// NewCliParams returns the defaults for a CLI run.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		Input: InputSettings{
			Path:   "-",
			Format: "auto",
		},
		ExitOnError: true,
	}
}
