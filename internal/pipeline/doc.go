// Package pipeline drives one anonymization run end to end.
//
// The Runner walks the source tree top-down, prunes excluded entries, tracks
// submission boundaries, deduplicates against each submission's destination,
// and dispatches files to the comment redaction pass or the archive expander.
// Expanded archives are walked recursively under the same submission context,
// so nested archive contents flatten into the same numbered destination.
//
// Every failure is per-file or per-archive and degrades the run rather than
// aborting it. After the walk the Runner prunes empty destination directories
// and removes the scratch root unconditionally.
package pipeline
