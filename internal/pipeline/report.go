package pipeline

import "codeanon/internal/manifest"

// Report tallies per-file outcomes for one run. Processed counts only files
// anonymized without error; degraded files were written but carry at least
// one unredacted line.
type Report struct {
	Processed   int
	Degraded    int
	Duplicates  int
	Skipped     int
	ReadErrors  int
	WriteErrors int
	BadArchives int
}

// Written returns the number of files that reached the destination tree.
func (r Report) Written() int {
	return r.Processed + r.Degraded
}

// Totals converts the report into manifest counters.
func (r Report) Totals() manifest.Totals {
	return manifest.Totals{
		Processed:   r.Processed,
		Degraded:    r.Degraded,
		Duplicates:  r.Duplicates,
		Skipped:     r.Skipped,
		ReadErrors:  r.ReadErrors,
		WriteErrors: r.WriteErrors,
		BadArchives: r.BadArchives,
	}
}
