package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"codeanon/internal/archive"
	"codeanon/internal/config"
	"codeanon/internal/dedup"
	"codeanon/internal/exclusion"
	"codeanon/internal/logging"
	"codeanon/internal/manifest"
	"codeanon/internal/redact"
	"codeanon/internal/submission"
)

// Options wires a Runner. Store may be nil when no manifest is wanted (tests).
type Options struct {
	Config   *config.Config
	Logger   *slog.Logger
	Redactor redact.Redactor
	Store    *manifest.Store
	RunID    string
}

// Runner orchestrates one anonymization pass over a source tree.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
	pass   *redact.Pass
	index  dedup.Index
	excl   *exclusion.Set
	store  *manifest.Store
	runID  string

	expander *archive.Expander
	tracker  *submission.Tracker
	report   Report
}

// New validates options and constructs a Runner.
func New(opts Options) (*Runner, error) {
	if opts.Config == nil {
		return nil, errors.New("pipeline requires a config")
	}
	if opts.Redactor == nil {
		return nil, errors.New("pipeline requires a redactor")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg:    opts.Config,
		logger: logging.WithComponent(logger, "pipeline"),
		pass:   redact.NewPass(opts.Redactor),
		index: dedup.Index{
			CompareSizes:  opts.Config.Scan.CompareSizes,
			SizeTolerance: opts.Config.Scan.SizeTolerance,
		},
		excl: exclusion.New(
			opts.Config.Scan.Exclude,
			opts.Config.Scan.SourceExtensions,
			opts.Config.Scan.ArchiveExtensions,
		),
		store: opts.Store,
		runID: opts.RunID,
	}, nil
}

// Run walks src top-down, writing anonymized submissions under dest. The
// returned report is valid even when err is non-nil; err reflects run-level
// failures (unreadable root, cancellation), never per-file ones.
func (r *Runner) Run(ctx context.Context, src, dest string) (Report, error) {
	r.report = Report{}
	r.expander = archive.NewExpander(dest, r.cfg.Scan.MaxExtractBytes)
	r.tracker = submission.NewTracker(src, dest, r.cfg.Scan.SubmissionLevel)

	// Reclaim scratch leftovers from a previously interrupted run before
	// walking, and drop this run's scratch root no matter how we exit.
	if err := r.expander.CleanupAll(); err != nil {
		r.logger.Warn("unable to clear scratch root", logging.Error(err))
	}
	defer func() {
		if err := r.expander.CleanupAll(); err != nil {
			r.logger.Warn("unable to remove scratch root", logging.Error(err))
		}
	}()

	walkErr := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return r.directory(path, src)
		}
		return r.file(ctx, path)
	})
	if walkErr != nil {
		return r.report, fmt.Errorf("walk %s: %w", src, walkErr)
	}

	if err := r.expander.CleanupAll(); err != nil {
		r.logger.Warn("unable to remove scratch root", logging.Error(err))
	}
	if err := pruneEmptyDirs(dest); err != nil {
		r.logger.Warn("unable to prune empty destination directories", logging.Error(err))
	}
	return r.report, nil
}

func (r *Runner) directory(path, src string) error {
	if path != src && r.excl.Dir(filepath.Base(path)) {
		r.logger.Debug("pruning excluded directory", logging.String("path", path))
		return fs.SkipDir
	}
	r.tracker.Leave(path)
	root, err := r.tracker.EnterDir(path)
	if err != nil {
		return err
	}
	if root != nil {
		r.logger.Info("new submission",
			logging.Int("number", root.Number),
			logging.String("source", root.Source),
			logging.String("dest", root.Dest),
		)
	}
	return nil
}

func (r *Runner) file(ctx context.Context, path string) error {
	name := filepath.Base(path)
	if r.excl.File(name) {
		r.logger.Debug("skipping excluded file", logging.String("path", path))
		return nil
	}

	r.tracker.Leave(filepath.Dir(path))
	if r.excl.IsArchive(name) {
		root, err := r.tracker.EnterArchive(path)
		if err != nil {
			return err
		}
		if root != nil {
			r.logger.Info("new submission from archive",
				logging.Int("number", root.Number),
				logging.String("source", root.Source),
				logging.String("dest", root.Dest),
			)
		}
	}

	active := r.tracker.Active()
	if active == nil {
		r.logger.Info("skipping file outside any submission", logging.String("path", path))
		r.report.Skipped++
		r.record(ctx, path, "", manifest.OutcomeSkipped, "outside any submission")
		return nil
	}

	if r.excl.IsArchive(name) {
		r.archiveFile(ctx, path, active)
		return nil
	}
	r.sourceFile(ctx, path, active)
	return nil
}

// sourceFile runs the dedup check and the redaction pass for one source file.
// All failures are recorded and absorbed; the walk continues.
func (r *Runner) sourceFile(ctx context.Context, path string, active *submission.Root) {
	name := filepath.Base(path)

	var size int64
	if r.index.CompareSizes {
		info, err := os.Stat(path)
		if err != nil {
			r.logger.Error("stat failed, skipping file", logging.String("path", path), logging.Error(err))
			r.report.ReadErrors++
			r.record(ctx, path, "", manifest.OutcomeReadError, err.Error())
			return
		}
		size = info.Size()
	}

	exists, err := r.index.Exists(active.Dest, name, size)
	if err != nil {
		r.logger.Error("dedup check failed, skipping file", logging.String("path", path), logging.Error(err))
		r.report.ReadErrors++
		r.record(ctx, path, "", manifest.OutcomeReadError, err.Error())
		return
	}
	if exists {
		r.logger.Info("skipping duplicate", logging.String("path", path), logging.String("submission", active.Dest))
		r.report.Duplicates++
		r.record(ctx, path, "", manifest.OutcomeDuplicate, "")
		return
	}

	dest := filepath.Join(active.Dest, name)
	result, err := r.pass.File(ctx, path, dest)
	switch {
	case errors.Is(err, redact.ErrRead):
		r.logger.Error("unreadable source file", logging.String("path", path), logging.Error(err))
		r.report.ReadErrors++
		r.record(ctx, path, "", manifest.OutcomeReadError, err.Error())
	case errors.Is(err, redact.ErrWrite):
		r.logger.Error("destination write failed", logging.String("path", dest), logging.Error(err))
		r.report.WriteErrors++
		r.record(ctx, path, dest, manifest.OutcomeWriteError, err.Error())
	case err != nil:
		r.logger.Error("redaction pass failed", logging.String("path", path), logging.Error(err))
		r.report.ReadErrors++
		r.record(ctx, path, "", manifest.OutcomeReadError, err.Error())
	case result.Status == redact.StatusDegraded:
		r.logger.Warn("processed with errors", logging.String("path", path), logging.String("dest", dest))
		r.report.Degraded++
		r.record(ctx, path, dest, manifest.OutcomeDegraded, "one or more lines left unredacted")
	default:
		r.logger.Debug("anonymized", logging.String("path", path), logging.String("dest", dest))
		r.report.Processed++
		r.record(ctx, path, dest, manifest.OutcomeProcessed, "")
	}
}

// archiveFile expands one archive and recurses into its contents under the
// ambient submission. The workspace is removed on every exit path.
func (r *Runner) archiveFile(ctx context.Context, path string, active *submission.Root) {
	workspace, err := r.expander.Expand(path)
	if err != nil {
		r.logger.Warn("could not unzip, skipping", logging.String("path", path), logging.Error(err))
		r.report.BadArchives++
		r.record(ctx, path, "", manifest.OutcomeBadArchive, err.Error())
		return
	}
	defer func() {
		if err := r.expander.Remove(workspace); err != nil {
			r.logger.Warn("unable to remove workspace", logging.String("workspace", workspace), logging.Error(err))
		}
	}()

	if err := r.walkExpanded(ctx, workspace, active); err != nil {
		r.logger.Warn("archive traversal aborted", logging.String("path", path), logging.Error(err))
	}
}

// walkExpanded traverses an expanded archive. The submission tracker is not
// consulted: the ambient submission root flows through unchanged, so nested
// archive contents land in the same numbered destination.
func (r *Runner) walkExpanded(ctx context.Context, workspace string, active *submission.Root) error {
	return filepath.WalkDir(workspace, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != workspace && r.excl.Dir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		name := d.Name()
		if r.excl.File(name) {
			return nil
		}
		if r.excl.IsArchive(name) {
			r.archiveFile(ctx, path, active)
			return nil
		}
		r.sourceFile(ctx, path, active)
		return nil
	})
}

// record journals a file event; manifest failures are logged, never fatal.
func (r *Runner) record(ctx context.Context, src, dest string, outcome manifest.Outcome, detail string) {
	if r.store == nil {
		return
	}
	if err := r.store.RecordFile(ctx, r.runID, src, dest, outcome, detail); err != nil {
		r.logger.Warn("manifest record failed", logging.String("path", src), logging.Error(err))
	}
}
