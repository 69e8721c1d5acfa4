package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// defaultConfigPath matches the server's default configuration location.
const defaultConfigPath = "configs/config.yaml"

// Options holds the flags of the batch command.
type Options struct {
	ConfigPath string
	DBPath     string
	Format     string // "text" | "json"
	Parallel   int
	Verbose    bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the sensor-ingest command.
func NewRootCommand(version string) *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:   "sensor-ingest [file ...]",
		Short: "Load NDJSON sensor readings into the reading store",
		Long: `Load newline-delimited JSON sensor readings into the reading store.

Each line is {"id", "gas", "fire", "time"?}. Reads standard input when no
files are given or a file is "-" (allowed once). Unknown sensors are registered on first
reading. Malformed lines and failed inserts are skipped and counted.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(_ *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return &ExitError{
					Code:    ExitCommandError,
					Message: fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats),
				}
			}
			if opts.Parallel < 1 {
				return &ExitError{Code: ExitCommandError, Message: "--parallel must be at least 1"}
			}
			if countStdin(args) > 1 {
				return &ExitError{Code: ExitCommandError, Message: `standard input ("-") can be given only once`}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, opts, args, version)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", defaultConfigPath, "configuration file (defaults apply if missing)")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "SQLite database path (overrides config)")
	cmd.Flags().StringVar(&opts.Format, "format", "text", "output format (text|json)")
	cmd.Flags().IntVarP(&opts.Parallel, "parallel", "p", 1, "number of files to load concurrently")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log each skipped record")

	return cmd
}

func countStdin(args []string) int {
	n := 0
	for _, a := range args {
		if a == stdinSource {
			n++
		}
	}
	return n
}
