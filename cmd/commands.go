package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"
	rdebug "runtime/debug"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/dyntable/internal/config"
	"github.com/oakwood-commons/dyntable/pkg/settings"
)

// versionData collects build details from ldflags, falling back to the
// module build info.
func versionData() map[string]string {
	v := settings.VersionInformation
	data := map[string]string{
		"name":      settings.CliBinaryName,
		"version":   v.BuildVersion,
		"commit":    v.Commit,
		"buildTime": v.BuildTime,
		"goVersion": runtime.Version(),
		"platform":  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if info, ok := rdebug.ReadBuildInfo(); ok {
		if data["version"] == "v0.0.0-nightly" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			data["version"] = info.Main.Version
		}
		if data["commit"] == "unknown" {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" && len(s.Value) >= 7 {
					data["commit"] = s.Value[:7]
					break
				}
			}
		}
	}
	return data
}

// versionString builds the string used by `version` and --version.
func versionString() string {
	d := versionData()
	return fmt.Sprintf("%s %s (commit %s, %s, %s)", d["name"], d["version"], d["commit"], d["goVersion"], d["platform"])
}

func newVersionCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print dyntable version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch output {
			case "", "text":
				fmt.Fprintln(cmd.OutOrStdout(), versionString())
				return nil
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(versionData())
			default:
				return usageError(fmt.Errorf("invalid output %q (use text|json)", output))
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text|json")
	return cmd
}

func newThemesCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List available themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(config.ResolvePath(o.configFile))
			if err != nil {
				return usageError(err)
			}
			def := cfg.UI.Theme.Default
			if def == "" {
				def = "dark"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Available themes (default: %s):\n", def)
			for _, name := range cfg.ThemeNames() {
				fmt.Fprintf(out, " - %s\n", name)
			}
			return nil
		},
	}
}
