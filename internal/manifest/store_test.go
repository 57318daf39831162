package manifest_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"codeanon/internal/manifest"

	_ "modernc.org/sqlite"
)

func openStore(t *testing.T, destRoot string) *manifest.Store {
	t.Helper()

	store, err := manifest.Open(destRoot)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func TestOpenCreatesDatabaseInDestRoot(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "dest")
	store := openStore(t, dest)

	want := filepath.Join(dest, manifest.FileName)
	if store.Path() != want {
		t.Fatalf("path = %q, want %q", store.Path(), want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("database file missing: %v", err)
	}
}

func TestRunLifecycle(t *testing.T) {
	store := openStore(t, t.TempDir())
	ctx := context.Background()

	if err := store.BeginRun(ctx, "run-1", "/tmp/src", "/tmp/dest"); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if !runs[0].FinishedAt.IsZero() {
		t.Fatal("run should not be finished yet")
	}

	totals := manifest.Totals{Processed: 4, Degraded: 1, Duplicates: 2, BadArchives: 1}
	if err := store.FinishRun(ctx, "run-1", totals); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	runs, err = store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	got := runs[0]
	if got.Totals != totals {
		t.Fatalf("totals = %+v, want %+v", got.Totals, totals)
	}
	if got.FinishedAt.IsZero() || got.FinishedAt.Before(got.StartedAt) {
		t.Fatalf("bad timestamps: started %v finished %v", got.StartedAt, got.FinishedAt)
	}
	if got.SourceRoot != "/tmp/src" || got.DestRoot != "/tmp/dest" {
		t.Fatalf("unexpected roots: %+v", got)
	}
}

func TestFinishRunRejectsUnknownRun(t *testing.T) {
	store := openStore(t, t.TempDir())
	if err := store.FinishRun(context.Background(), "missing", manifest.Totals{}); err == nil {
		t.Fatal("expected error for unknown run id")
	}
}

func TestListRunsNewestFirstWithLimit(t *testing.T) {
	store := openStore(t, t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"run-a", "run-b", "run-c"} {
		if err := store.BeginRun(ctx, id, "/src", "/dest"); err != nil {
			t.Fatalf("BeginRun(%s): %v", id, err)
		}
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("limit not honored, got %d runs", len(runs))
	}
	if runs[0].StartedAt.Before(runs[1].StartedAt) {
		t.Fatal("runs not ordered newest first")
	}
}

func TestFileEventsRoundTrip(t *testing.T) {
	store := openStore(t, t.TempDir())
	ctx := context.Background()

	if err := store.BeginRun(ctx, "run-1", "/src", "/dest"); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if err := store.RecordFile(ctx, "run-1", "/src/a/Main.java", "/dest/submission_00/Main.java", manifest.OutcomeProcessed, ""); err != nil {
		t.Fatalf("RecordFile: %v", err)
	}
	if err := store.RecordFile(ctx, "run-1", "/src/a/bad.jar", "", manifest.OutcomeBadArchive, "not a zip"); err != nil {
		t.Fatalf("RecordFile: %v", err)
	}

	events, err := store.FileEvents(ctx, "run-1")
	if err != nil {
		t.Fatalf("FileEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	first, second := events[0], events[1]
	if first.Outcome != manifest.OutcomeProcessed || first.DestPath != "/dest/submission_00/Main.java" {
		t.Fatalf("unexpected first event: %+v", first)
	}
	if second.Outcome != manifest.OutcomeBadArchive || second.Detail != "not a zip" || second.DestPath != "" {
		t.Fatalf("unexpected second event: %+v", second)
	}
	if first.RecordedAt.IsZero() {
		t.Fatal("recorded_at not persisted")
	}
}

func TestRecordFileRequiresKnownRun(t *testing.T) {
	store := openStore(t, t.TempDir())
	err := store.RecordFile(context.Background(), "ghost", "/src/x.java", "", manifest.OutcomeSkipped, "")
	if err == nil {
		t.Fatal("foreign key should reject events for unknown runs")
	}
}

func TestOpenRejectsFutureSchema(t *testing.T) {
	dest := t.TempDir()
	store, err := manifest.Open(dest)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Simulate a database written by a newer release.
	db, err := sql.Open("sqlite", filepath.Join(dest, manifest.FileName))
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump schema version: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close raw db: %v", err)
	}

	if _, err := manifest.Open(dest); !errors.Is(err, manifest.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
