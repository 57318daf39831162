// Package submission decides where one submission ends and the next begins
// as the traversal descends the source tree.
//
// At most one submission is active at a time. A submission opens when the
// walk reaches a directory at the configured level, or an archive standing in
// for a whole submission one level above it, and closes when the walk leaves
// its source subtree. Destinations are numbered in traversal-encounter order.
package submission

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Root pairs one submission's source subtree (a directory or a lone archive)
// with its numbered destination directory.
type Root struct {
	Source string
	Dest   string
	Number int
}

// Tracker is the boundary state machine threaded through the traversal.
type Tracker struct {
	scanRoot string
	destRoot string
	level    int
	counter  int
	active   *Root
}

// NewTracker configures boundary detection for one run. level is the depth,
// relative to scanRoot, at which submission directories live.
func NewTracker(scanRoot, destRoot string, level int) *Tracker {
	return &Tracker{scanRoot: scanRoot, destRoot: destRoot, level: level}
}

// Active returns the current submission, or nil when none is open.
func (t *Tracker) Active() *Root {
	return t.active
}

// Leave closes the active submission if dir is no longer inside its source
// subtree. Called before the entry rules are evaluated for each directory.
func (t *Tracker) Leave(dir string) {
	if t.active == nil {
		return
	}
	if !isWithin(t.active.Source, dir) {
		t.active = nil
	}
}

// EnterDir opens a new submission when dir sits at the configured level and
// none is active. Returns the newly opened root, or nil when nothing changed.
func (t *Tracker) EnterDir(dir string) (*Root, error) {
	if t.active != nil {
		return nil, nil
	}
	depth, rel, err := t.depth(dir)
	if err != nil {
		return nil, err
	}
	if depth != t.level {
		return nil, nil
	}
	return t.open(dir, filepath.Dir(rel))
}

// EnterArchive opens a new submission for an archive found one level above
// the submission level: the lone archive stands in for a whole submission
// directory, so its containing directory provides the mirrored path.
func (t *Tracker) EnterArchive(archivePath string) (*Root, error) {
	if t.active != nil {
		return nil, nil
	}
	dir := filepath.Dir(archivePath)
	depth, rel, err := t.depth(dir)
	if err != nil {
		return nil, err
	}
	if depth != t.level-1 {
		return nil, nil
	}
	return t.open(archivePath, rel)
}

func (t *Tracker) open(source, mirrored string) (*Root, error) {
	dest := filepath.Join(t.destRoot, mirrored, fmt.Sprintf("submission_%02d", t.counter))
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, fmt.Errorf("create submission directory %s: %w", dest, err)
	}
	t.active = &Root{Source: source, Dest: dest, Number: t.counter}
	t.counter++
	return t.active, nil
}

// depth returns dir's depth relative to the scan root along with the relative
// path itself. The scan root is depth 0.
func (t *Tracker) depth(dir string) (int, string, error) {
	rel, err := filepath.Rel(t.scanRoot, dir)
	if err != nil {
		return 0, "", fmt.Errorf("relativize %s: %w", dir, err)
	}
	if rel == "." {
		return 0, rel, nil
	}
	return strings.Count(rel, string(os.PathSeparator)) + 1, rel, nil
}

// isWithin reports whether path equals root or lies underneath it.
func isWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator)))
}
