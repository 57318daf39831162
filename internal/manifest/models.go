package manifest

import "time"

// Outcome classifies what happened to one file during a run.
type Outcome string

const (
	OutcomeProcessed  Outcome = "processed"
	OutcomeDegraded   Outcome = "degraded"
	OutcomeDuplicate  Outcome = "duplicate"
	OutcomeSkipped    Outcome = "skipped"
	OutcomeReadError  Outcome = "read_error"
	OutcomeWriteError Outcome = "write_error"
	OutcomeBadArchive Outcome = "bad_archive"
)

// Totals carries the final counters persisted when a run finishes.
type Totals struct {
	Processed   int
	Degraded    int
	Duplicates  int
	Skipped     int
	ReadErrors  int
	WriteErrors int
	BadArchives int
}

// Run is one anonymization pass over a source tree.
type Run struct {
	ID         string
	SourceRoot string
	DestRoot   string
	StartedAt  time.Time
	FinishedAt time.Time
	Totals     Totals
}

// FileEvent is one recorded per-file outcome.
type FileEvent struct {
	ID         int64
	RunID      string
	SourcePath string
	DestPath   string
	Outcome    Outcome
	Detail     string
	RecordedAt time.Time
}
