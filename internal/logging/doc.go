// Package logging builds the slog loggers used across codeanon.
//
// It provides console and JSON handlers behind a single Options struct,
// multi-destination output (stdout, stderr, or files), and typed attribute
// helpers so call sites stay terse. The console handler renders a compact
// header line with inline key=value fields; the JSON handler emits one object
// per record for machine consumption.
package logging
