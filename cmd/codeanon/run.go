package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"codeanon/internal/config"
	"codeanon/internal/logging"
	"codeanon/internal/manifest"
	"codeanon/internal/pipeline"
	"codeanon/internal/redact"
)

const (
	lockFileName = "codeanon.lock"
	logFileName  = "codeanon.log"
)

// runAnonymize performs one full anonymization pass. Per-file failures are
// degraded and logged; only run-level failures surface as a non-zero exit.
func runAnonymize(cmd *cobra.Command, cfg *config.Config, src, dest string) error {
	srcPath, err := config.ExpandPath(src)
	if err != nil {
		return fmt.Errorf("resolve source: %w", err)
	}
	if info, err := os.Stat(srcPath); err != nil {
		return fmt.Errorf("source: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("source %s is not a directory", srcPath)
	}

	destPath, err := config.ExpandPath(dest)
	if err != nil {
		return fmt.Errorf("resolve destination: %w", err)
	}
	if err := os.MkdirAll(destPath, 0o755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	// Concurrent runs against one destination corrupt numbering and dedup;
	// the second run fails fast instead.
	lock := flock.New(filepath.Join(destPath, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire destination lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another run is already writing to %s", destPath)
	}
	defer func() { _ = lock.Unlock() }()

	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{filepath.Join(destPath, logFileName)},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	store, err := manifest.Open(destPath)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}
	defer store.Close()

	engine, err := redact.NewPatternEngine(cfg.Redaction)
	if err != nil {
		return fmt.Errorf("build redaction engine: %w", err)
	}

	runID := uuid.NewString()
	runner, err := pipeline.New(pipeline.Options{
		Config:   cfg,
		Logger:   logger,
		Redactor: engine,
		Store:    store,
		RunID:    runID,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	logger.Info("anonymizing",
		logging.String("run_id", runID),
		logging.String("src", srcPath),
		logging.String("dest", destPath),
		logging.Int("level", cfg.Scan.SubmissionLevel),
		logging.Bool("compare_sizes", cfg.Scan.CompareSizes),
	)
	fmt.Fprintln(cmd.OutOrStdout(), "Anonymizing code, this may take a while...")

	if err := store.BeginRun(ctx, runID, srcPath, destPath); err != nil {
		return err
	}

	report, runErr := runner.Run(ctx, srcPath, destPath)

	if err := store.FinishRun(ctx, runID, report.Totals()); err != nil {
		logger.Warn("manifest finish failed", logging.Error(err))
	}
	if runErr != nil {
		logger.Error("run aborted", logging.Error(runErr))
		return runErr
	}

	logger.Info("run complete",
		logging.String("run_id", runID),
		logging.Int("processed", report.Processed),
		logging.Int("degraded", report.Degraded),
		logging.Int("duplicates", report.Duplicates),
		logging.Int("skipped", report.Skipped),
		logging.Int("read_errors", report.ReadErrors),
		logging.Int("write_errors", report.WriteErrors),
		logging.Int("bad_archives", report.BadArchives),
	)

	printSummary(cmd, report)
	fmt.Fprintf(cmd.OutOrStdout(), "%d anonymized files written to %s\n", report.Processed, destPath)
	return nil
}

func printSummary(cmd *cobra.Command, report pipeline.Report) {
	rows := [][]string{
		{"Anonymized clean", strconv.Itoa(report.Processed)},
		{"Processed with errors", strconv.Itoa(report.Degraded)},
		{"Duplicates skipped", strconv.Itoa(report.Duplicates)},
		{"Outside submissions", strconv.Itoa(report.Skipped)},
		{"Read errors", strconv.Itoa(report.ReadErrors)},
		{"Write errors", strconv.Itoa(report.WriteErrors)},
		{"Bad archives", strconv.Itoa(report.BadArchives)},
	}

	out := cmd.OutOrStdout()
	if stdoutIsTerminal() {
		fmt.Fprintln(out, renderTable([]string{"Outcome", "Files"}, rows, []columnAlignment{alignLeft, alignRight}))
		return
	}
	for _, row := range rows {
		fmt.Fprintf(out, "%s: %s\n", row[0], row[1])
	}
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
