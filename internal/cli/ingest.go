package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/sensor-core/internal/infrastructure/config"
	"github.com/nerrad567/sensor-core/internal/infrastructure/database"
	"github.com/nerrad567/sensor-core/internal/infrastructure/logging"
	"github.com/nerrad567/sensor-core/internal/sensor"
	_ "github.com/nerrad567/sensor-core/migrations" // Registry schema
)

// stdinSource names standard input on the command line.
const stdinSource = "-"

// runIngest loads every source into the store and prints the report.
func runIngest(cmd *cobra.Command, opts *Options, args []string, version string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		//nolint:errcheck // Best-effort report; the exit code carries the failure
		out.Error(ErrCodeConfig, err.Error())
		return &ExitError{Code: ExitCommandError, Message: "loading config", Err: err}
	}
	if opts.DBPath != "" {
		cfg.Database.Driver = config.DriverSQLite
		cfg.Database.Path = opts.DBPath
	}

	runID := uuid.NewString()
	logCfg := cfg.Logging
	if opts.Verbose {
		logCfg.Level = "debug"
	}
	log := logging.NewWithWriter(logCfg, version, cmd.ErrOrStderr()).With("run_id", runID)

	dbCfg := database.ConfigFromSettings(cfg.Database)
	dbCfg.Logger = log
	db, err := database.Connect(ctx, dbCfg)
	if err != nil {
		//nolint:errcheck // Best-effort report; the exit code carries the failure
		out.Error(ErrCodeConnection, err.Error())
		return &ExitError{Code: ExitCommandError, Message: "connecting to database", Err: err}
	}
	defer db.Close() //nolint:errcheck // Process is exiting

	if err := db.Migrate(ctx); err != nil {
		//nolint:errcheck // Best-effort report; the exit code carries the failure
		out.Error(ErrCodeConnection, err.Error())
		return &ExitError{Code: ExitCommandError, Message: "running migrations", Err: err}
	}

	store := sensor.NewStore(db)
	store.SetLogger(log)

	sources := args
	if len(sources) == 0 {
		sources = []string{stdinSource}
	}

	report := &Report{
		RunID: runID,
		Files: ingestSources(ctx, store, sources, opts.Parallel, cmd.InOrStdin(), log),
	}
	failed := 0
	for _, f := range report.Files {
		report.Total.Add(f.BatchResult)
		if f.Error != "" {
			failed++
		}
	}

	log.Info("batch ingestion finished",
		"files", len(report.Files),
		"processed", report.Total.Processed,
		"skipped_malformed", report.Total.SkippedMalformed,
		"skipped_failed", report.Total.SkippedFailed,
	)

	if err := out.Report(report); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if failed > 0 {
		return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("%d of %d inputs could not be read", failed, len(sources))}
	}
	return nil
}

// ingestSources loads each source, at most parallel at a time.
// Results are returned in argument order. A failing source never stops the others.
func ingestSources(ctx context.Context, ing sensor.Ingester, sources []string, parallel int, stdin io.Reader, log *logging.Logger) []FileResult {
	results := make([]FileResult, len(sources))

	var g errgroup.Group
	g.SetLimit(parallel)
	for i, src := range sources {
		g.Go(func() error {
			res, err := ingestSource(ctx, ing, src, stdin, log.With("source", src))
			results[i] = FileResult{Source: src, BatchResult: res}
			if err != nil {
				results[i].Error = err.Error()
				log.Error("batch input failed", "source", src, "error", err)
			}
			return nil
		})
	}
	g.Wait() //nolint:errcheck // Per-source errors are recorded in results

	return results
}

func ingestSource(ctx context.Context, ing sensor.Ingester, src string, stdin io.Reader, log *logging.Logger) (sensor.BatchResult, error) {
	var r io.Reader
	if src == stdinSource {
		r = stdin
	} else {
		f, err := os.Open(src)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return sensor.BatchResult{}, fmt.Errorf("file not found: %s", src)
			}
			return sensor.BatchResult{}, fmt.Errorf("opening %s: %w", src, err)
		}
		defer f.Close() //nolint:errcheck // Read-only file
		r = f
	}

	log.Debug("loading batch input")
	return sensor.IngestNDJSON(ctx, ing, r, log)
}
