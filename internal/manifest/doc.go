// Package manifest journals run and per-file outcomes in SQLite.
//
// Each destination tree carries its own database. One row per run records the
// roots, timestamps, and final counters; file events record the interesting
// per-file outcomes (processed, degraded, duplicate, errors) so a run can be
// audited after the fact and surfaced through the runs command.
//
// The database is an audit trail, not coordination state; schema changes bump
// schemaVersion in store.go and users delete the database to adopt it.
package manifest
