// Package exclusion decides which path segments and files the traversal
// skips: build artifacts, IDE metadata, bundled third-party libraries, and
// anything that is neither a recognized source file nor an archive.
package exclusion

import (
	"path/filepath"
	"strings"
)

// Set is an immutable exclusion matcher built once from configuration.
type Set struct {
	substrings []string
	sourceExts map[string]struct{}
	archiveExt map[string]struct{}
}

// New builds a Set. Substrings are matched case-insensitively against path
// segments; extension lists must already be normalized to lowercase with a
// leading dot.
func New(substrings, sourceExts, archiveExts []string) *Set {
	s := &Set{
		substrings: make([]string, 0, len(substrings)),
		sourceExts: make(map[string]struct{}, len(sourceExts)),
		archiveExt: make(map[string]struct{}, len(archiveExts)),
	}
	for _, sub := range substrings {
		sub = strings.ToLower(strings.TrimSpace(sub))
		if sub != "" {
			s.substrings = append(s.substrings, sub)
		}
	}
	for _, ext := range sourceExts {
		s.sourceExts[ext] = struct{}{}
	}
	for _, ext := range archiveExts {
		s.archiveExt[ext] = struct{}{}
	}
	return s
}

// Dir reports whether a directory name should be pruned from the traversal.
func (s *Set) Dir(name string) bool {
	return s.matches(name)
}

// File reports whether a file should be skipped: either a segment match or an
// extension outside the recognized source/archive set.
func (s *Set) File(name string) bool {
	if s.matches(name) {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := s.sourceExts[ext]; ok {
		return false
	}
	if _, ok := s.archiveExt[ext]; ok {
		return false
	}
	return true
}

// IsSource reports whether the file extension is a recognized source type.
func (s *Set) IsSource(name string) bool {
	_, ok := s.sourceExts[strings.ToLower(filepath.Ext(name))]
	return ok
}

// IsArchive reports whether the file extension is a recognized archive type.
func (s *Set) IsArchive(name string) bool {
	_, ok := s.archiveExt[strings.ToLower(filepath.Ext(name))]
	return ok
}

func (s *Set) matches(name string) bool {
	lowered := strings.ToLower(name)
	for _, sub := range s.substrings {
		if strings.Contains(lowered, sub) {
			return true
		}
	}
	return false
}
