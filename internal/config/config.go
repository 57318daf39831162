package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Scan contains traversal and deduplication configuration.
type Scan struct {
	// SubmissionLevel is the directory depth relative to the scan root at
	// which a new submission boundary is recognized. Default: 1
	SubmissionLevel int `toml:"submission_level"`
	// Exclude lists case-insensitive substrings; any path segment containing
	// one is skipped entirely.
	Exclude []string `toml:"exclude"`
	// SourceExtensions are the file extensions handed to the redaction pass.
	SourceExtensions []string `toml:"source_extensions"`
	// ArchiveExtensions are the file extensions expanded as zip containers.
	ArchiveExtensions []string `toml:"archive_extensions"`
	// CompareSizes switches deduplication to name+size mode.
	CompareSizes bool `toml:"compare_sizes"`
	// SizeTolerance is the byte slack allowed in name+size mode.
	SizeTolerance int64 `toml:"size_tolerance"`
	// MaxExtractBytes bounds the total bytes extracted from a single archive.
	// Guards against zip bombs. Default: 1 GiB
	MaxExtractBytes int64 `toml:"max_extract_bytes"`
}

// Redaction contains configuration for the built-in pattern redaction engine.
type Redaction struct {
	// Entities selects which recognizers run. Known kinds: "email", "student_id".
	Entities []string `toml:"entities"`
	// EmailReplacement substitutes detected email addresses.
	EmailReplacement string `toml:"email_replacement"`
	// StudentIDReplacement substitutes detected 8-10 digit student IDs.
	StudentIDReplacement string `toml:"student_id_replacement"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for codeanon.
//
// Configuration sections by subsystem:
//   - Scan: traversal depth, exclusions, extensions, dedup mode, budgets
//   - Redaction: recognizer selection and replacement values
//   - Logging: log format and level
type Config struct {
	Scan      Scan      `toml:"scan"`
	Redaction Redaction `toml:"redaction"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/codeanon/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all list fields normalized and lowercased.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("codeanon.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// ExcludeList merges the configured exclusion substrings with a user-provided
// list. When append is false the user list replaces the configured one.
func (c *Config) ExcludeList(userList string, appendToDefault bool) []string {
	user := splitList(userList)
	if len(user) == 0 {
		return c.Scan.Exclude
	}
	if !appendToDefault {
		return user
	}
	merged := make([]string, 0, len(c.Scan.Exclude)+len(user))
	merged = append(merged, c.Scan.Exclude...)
	merged = append(merged, user...)
	return dedupeStrings(merged)
}

func (c *Config) normalize() {
	c.Scan.Exclude = dedupeStrings(lowerAll(c.Scan.Exclude))
	c.Scan.SourceExtensions = normalizeExtensions(c.Scan.SourceExtensions)
	c.Scan.ArchiveExtensions = normalizeExtensions(c.Scan.ArchiveExtensions)
	if c.Scan.SizeTolerance <= 0 {
		c.Scan.SizeTolerance = defaultSizeTolerance
	}
	if c.Scan.MaxExtractBytes <= 0 {
		c.Scan.MaxExtractBytes = defaultMaxExtractBytes
	}
	c.Redaction.Entities = dedupeStrings(lowerAll(c.Redaction.Entities))
	if strings.TrimSpace(c.Redaction.EmailReplacement) == "" {
		c.Redaction.EmailReplacement = defaultEmailReplacement
	}
	if strings.TrimSpace(c.Redaction.StudentIDReplacement) == "" {
		c.Redaction.StudentIDReplacement = defaultStudentIDReplacement
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if c.Scan.SubmissionLevel < 0 {
		return fmt.Errorf("scan.submission_level: must be >= 0, got %d", c.Scan.SubmissionLevel)
	}
	if len(c.Scan.SourceExtensions) == 0 {
		return errors.New("scan.source_extensions: at least one extension is required")
	}
	for _, kind := range c.Redaction.Entities {
		switch kind {
		case "email", "student_id":
		default:
			return fmt.Errorf("redaction.entities: unknown entity kind %q", kind)
		}
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// CreateSample writes the embedded sample configuration to path.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath resolves ~ prefixes and returns an absolute path.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func expandPath(pathValue string) (string, error) {
	trimmed := strings.TrimSpace(pathValue)
	if trimmed == "" {
		return "", errors.New("path is empty")
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			trimmed = home
		} else {
			trimmed = filepath.Join(home, trimmed[2:])
		}
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return abs, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func normalizeExtensions(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if !strings.HasPrefix(v, ".") {
			v = "." + v
		}
		out = append(out, v)
	}
	return dedupeStrings(out)
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
