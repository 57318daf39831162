// Package redact rewrites personally identifying text inside source-file
// comments.
//
// The Redactor interface is the boundary to the detection engine: text in,
// redacted text out, with per-call failure. PatternEngine is the built-in
// implementation, substituting fixed replacement values for recognized entity
// kinds. Pass applies a Redactor to one file at a time, classifying lines with
// a small comment-state machine so that only comment text is ever rewritten;
// code lines pass through verbatim.
//
// All failures are scoped: an unreadable file is skipped, a failed line is
// kept as-is and the file reported as degraded rather than dropped.
package redact
