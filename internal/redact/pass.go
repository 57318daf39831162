package redact

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Status classifies the outcome of a file pass.
type Status int

const (
	// StatusClean means every eligible line was redacted without error.
	StatusClean Status = iota
	// StatusDegraded means at least one line's redaction failed; the file was
	// still written with those lines unmodified.
	StatusDegraded
)

// Result summarizes one file pass.
type Result struct {
	Status        Status
	Lines         int
	EligibleLines int
}

// Pass applies a Redactor to the comment lines of individual files.
type Pass struct {
	redactor Redactor
}

// NewPass wires the redaction engine used for every file in a run.
func NewPass(r Redactor) *Pass {
	return &Pass{redactor: r}
}

// File reads src, redacts its comment lines, and writes the result to dest.
// Read failures (including undecodable content) return ErrRead and nothing is
// written; write failures return ErrWrite. Per-line redaction failures do not
// fail the file: the line is kept as-is and the result reports StatusDegraded.
func (p *Pass) File(ctx context.Context, src, dest string) (Result, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", ErrRead, src, err)
	}

	text, err := decode(data)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", ErrRead, src, err)
	}

	result, out := p.text(ctx, text)

	if err := os.WriteFile(dest, []byte(out), 0o644); err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", ErrWrite, dest, err)
	}
	return result, nil
}

// text runs the line state machine over decoded content and returns the
// reassembled output with a trailing newline per line.
func (p *Pass) text(ctx context.Context, text string) (Result, string) {
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	var (
		scanner commentScanner
		builder strings.Builder
		result  Result
	)
	builder.Grow(len(text) + 1)
	result.Lines = len(lines)

	for _, line := range lines {
		if scanner.eligible(line) {
			result.EligibleLines++
			redacted, err := p.redactor.Redact(ctx, line)
			if err != nil {
				result.Status = StatusDegraded
			} else {
				line = redacted
			}
		}
		builder.WriteString(line)
		builder.WriteByte('\n')
	}
	return result, builder.String()
}

// decode attempts strict UTF-8 first, then falls back to Windows-1252 for
// legacy submissions. Content with NUL bytes is treated as binary and
// rejected rather than mangled.
func decode(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return "", fmt.Errorf("binary content")
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode windows-1252: %w", err)
	}
	return string(decoded), nil
}
