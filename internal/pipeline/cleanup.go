package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
)

// pruneEmptyDirs removes destination directories that ended up empty, in
// post-order so emptied parents are removed too. The destination root itself
// is never removed.
func pruneEmptyDirs(root string) error {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// WalkDir yields parents before children; deleting in reverse visits
	// children first.
	for i := len(dirs) - 1; i >= 0; i-- {
		entries, err := os.ReadDir(dirs[i])
		if err != nil {
			continue
		}
		if len(entries) == 0 {
			_ = os.Remove(dirs[i])
		}
	}
	return nil
}
