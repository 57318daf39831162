package manifest

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; users delete the database to adopt the new schema.
const schemaVersion = 1

// FileName is the manifest database name inside a destination tree.
const FileName = "codeanon.db"

// ErrSchemaMismatch indicates the database was written by a different
// codeanon version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store manages manifest persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the manifest database inside destRoot.
func Open(destRoot string) (*Store, error) {
	if err := os.MkdirAll(destRoot, 0o755); err != nil {
		return nil, fmt.Errorf("ensure destination: %w", err)
	}

	dbPath := filepath.Join(destRoot, FileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the on-disk location of the database.
func (s *Store) Path() string {
	return s.path
}

// BeginRun inserts a run row marking the start of an anonymization pass.
func (s *Store) BeginRun(ctx context.Context, id, sourceRoot, destRoot string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source_root, dest_root, started_at) VALUES (?, ?, ?, ?)`,
		id, sourceRoot, destRoot, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun stamps the run's completion time and final counters.
func (s *Store) FinishRun(ctx context.Context, id string, totals Totals) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, processed = ?, degraded = ?, duplicates = ?,
            skipped = ?, read_errors = ?, write_errors = ?, bad_archives = ?
         WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		totals.Processed, totals.Degraded, totals.Duplicates, totals.Skipped,
		totals.ReadErrors, totals.WriteErrors, totals.BadArchives,
		id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("finish run: unknown run %s", id)
	}
	return nil
}

// RecordFile journals one per-file outcome.
func (s *Store) RecordFile(ctx context.Context, runID, sourcePath, destPath string, outcome Outcome, detail string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO file_events (run_id, source_path, dest_path, outcome, detail, recorded_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		runID, sourcePath, nullableString(destPath), string(outcome), nullableString(detail),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record file event: %w", err)
	}
	return nil
}

// ListRuns returns runs newest first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, source_root, dest_root, started_at, finished_at,
            processed, degraded, duplicates, skipped, read_errors, write_errors, bad_archives
        FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run      Run
			started  string
			finished sql.NullString
		)
		if err := rows.Scan(
			&run.ID, &run.SourceRoot, &run.DestRoot, &started, &finished,
			&run.Totals.Processed, &run.Totals.Degraded, &run.Totals.Duplicates,
			&run.Totals.Skipped, &run.Totals.ReadErrors, &run.Totals.WriteErrors,
			&run.Totals.BadArchives,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = parseTimestamp(started)
		if finished.Valid {
			run.FinishedAt = parseTimestamp(finished.String)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// FileEvents returns the journal for one run in insertion order.
func (s *Store) FileEvents(ctx context.Context, runID string) ([]FileEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, source_path, dest_path, outcome, detail, recorded_at
         FROM file_events WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list file events: %w", err)
	}
	defer rows.Close()

	var events []FileEvent
	for rows.Next() {
		var (
			evt      FileEvent
			dest     sql.NullString
			detail   sql.NullString
			recorded string
			outcome  string
		)
		if err := rows.Scan(&evt.ID, &evt.RunID, &evt.SourcePath, &dest, &outcome, &detail, &recorded); err != nil {
			return nil, fmt.Errorf("scan file event: %w", err)
		}
		evt.DestPath = dest.String
		evt.Detail = detail.String
		evt.Outcome = Outcome(outcome)
		evt.RecordedAt = parseTimestamp(recorded)
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate file events: %w", err)
	}
	return events, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to recreate)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimestamp(value string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}
