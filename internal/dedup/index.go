// Package dedup answers whether an equivalent file already exists somewhere
// under a submission's destination tree, so loose and archived copies of the
// same file are only written once.
package dedup

import (
	"errors"
	"io/fs"
	"path/filepath"
)

// Index queries a submission destination for existing copies of a candidate.
type Index struct {
	// CompareSizes additionally requires the existing file's size to be
	// within SizeTolerance bytes of the candidate's.
	CompareSizes  bool
	SizeTolerance int64
}

// errFound short-circuits the walk once a match is seen.
var errFound = errors.New("found")

// Exists reports whether any file named name already exists under destRoot.
// The search is recursive over the whole submission destination; first match
// wins. In name+size mode, a same-named file outside the tolerance is treated
// as a different file.
func (ix Index) Exists(destRoot, name string, size int64) (bool, error) {
	err := filepath.WalkDir(destRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != name {
			return nil
		}
		if !ix.CompareSizes {
			return errFound
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		delta := info.Size() - size
		if delta < 0 {
			delta = -delta
		}
		if delta <= ix.SizeTolerance {
			return errFound
		}
		return nil
	})
	if errors.Is(err, errFound) {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
