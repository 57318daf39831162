package redact

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"codeanon/internal/config"
)

var (
	// ErrRead marks a source file unreadable under all attempted encodings.
	ErrRead = errors.New("read error")
	// ErrWrite marks a destination write failure.
	ErrWrite = errors.New("write error")
	// ErrRedaction marks a single line's redaction failure.
	ErrRedaction = errors.New("redaction error")
)

// Redactor is the boundary to the PII detection engine. Implementations must
// be safe for reuse across files within a run.
type Redactor interface {
	Redact(ctx context.Context, text string) (string, error)
}

// maxLineBytes bounds a single line handed to the engine; longer lines are
// reported as a redaction failure and kept unmodified.
const maxLineBytes = 64 * 1024

var (
	emailPattern     = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	studentIDPattern = regexp.MustCompile(`\b\d{8,10}\b`)
)

type rule struct {
	kind        string
	pattern     *regexp.Regexp
	replacement string
}

// PatternEngine is the built-in Redactor: per-entity regular expressions with
// fixed replacement values. Replacements are fixed points of their own
// patterns, so re-running over already-redacted text is a no-op.
type PatternEngine struct {
	rules []rule
}

// NewPatternEngine builds an engine from the redaction configuration.
func NewPatternEngine(cfg config.Redaction) (*PatternEngine, error) {
	engine := &PatternEngine{rules: make([]rule, 0, len(cfg.Entities))}
	for _, kind := range cfg.Entities {
		switch kind {
		case "email":
			engine.rules = append(engine.rules, rule{kind: kind, pattern: emailPattern, replacement: cfg.EmailReplacement})
		case "student_id":
			engine.rules = append(engine.rules, rule{kind: kind, pattern: studentIDPattern, replacement: cfg.StudentIDReplacement})
		default:
			return nil, fmt.Errorf("unknown redaction entity kind %q", kind)
		}
	}
	return engine, nil
}

// Redact applies every configured rule to text.
func (e *PatternEngine) Redact(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRedaction, err)
	}
	if len(text) > maxLineBytes {
		return "", fmt.Errorf("%w: line exceeds %d bytes", ErrRedaction, maxLineBytes)
	}
	for _, r := range e.rules {
		text = r.pattern.ReplaceAllString(text, r.replacement)
	}
	return text, nil
}
