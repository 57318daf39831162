// Package config loads, normalizes, and validates codeanon configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// CLI and pipeline need: exclusion substrings, recognized source and archive
// extensions, the submission boundary level, deduplication mode, extraction
// budgets, and redaction replacements.
//
// Always obtain settings through this package so downstream code receives
// sanitized lowercase exclusion lists, canonical extensions, and clear
// validation errors.
package config
