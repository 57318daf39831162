// Package archive expands zip containers (also .jar) into scratch workspaces
// owned by the caller for the duration of one expansion.
//
// Workspaces live under a single scratch root inside the destination tree so
// that leftovers from an interrupted run are found and reclaimed by the next
// invocation's defensive cleanup. Corrupt archives, entries escaping the
// workspace, and extractions exceeding the byte budget are all reported as
// ErrBadArchive; the caller treats the archive as contributing zero files.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrBadArchive marks a corrupt or unsafe archive.
var ErrBadArchive = errors.New("bad archive")

// ScratchDirName is the scratch root created inside the destination tree.
const ScratchDirName = ".codeanon-scratch"

// Expander extracts archives into per-archive scratch workspaces.
type Expander struct {
	scratchRoot string
	maxBytes    int64
}

// NewExpander roots the scratch area inside destRoot. maxBytes bounds the
// total bytes one archive may extract.
func NewExpander(destRoot string, maxBytes int64) *Expander {
	return &Expander{
		scratchRoot: filepath.Join(destRoot, ScratchDirName),
		maxBytes:    maxBytes,
	}
}

// ScratchRoot returns the directory holding all workspaces for this run.
func (e *Expander) ScratchRoot() string {
	return e.scratchRoot
}

// Expand extracts the archive into a freshly named workspace and returns its
// path. The workspace name is qualified by the archive's full path, so
// same-named archives in different source branches never collide. On any
// failure the partial workspace is removed and ErrBadArchive is returned.
func (e *Expander) Expand(archivePath string) (string, error) {
	workspace := filepath.Join(e.scratchRoot, workspaceName(archivePath))
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return "", fmt.Errorf("create workspace for %s: %w", archivePath, err)
	}

	if err := e.extract(archivePath, workspace); err != nil {
		_ = os.RemoveAll(workspace)
		return "", err
	}
	return workspace, nil
}

// Remove deletes a workspace and everything under it. Callers defer this
// around every expansion so a workspace never outlives its call.
func (e *Expander) Remove(workspace string) error {
	return os.RemoveAll(workspace)
}

// CleanupAll removes the scratch root outright, including leftovers from
// earlier interrupted runs.
func (e *Expander) CleanupAll() error {
	return os.RemoveAll(e.scratchRoot)
}

func (e *Expander) extract(archivePath, workspace string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBadArchive, archivePath, err)
	}
	defer reader.Close()

	remaining := e.maxBytes
	prefix := workspace + string(os.PathSeparator)
	for _, entry := range reader.File {
		target := filepath.Join(workspace, filepath.FromSlash(entry.Name))
		if !strings.HasPrefix(target, prefix) {
			return fmt.Errorf("%w: %s: entry %q escapes workspace", ErrBadArchive, archivePath, entry.Name)
		}
		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create dir %s: %w", target, err)
			}
			continue
		}
		written, err := extractFile(entry, target, remaining)
		if err != nil {
			return fmt.Errorf("%w: %s: entry %q: %w", ErrBadArchive, archivePath, entry.Name, err)
		}
		remaining -= written
		if remaining < 0 {
			return fmt.Errorf("%w: %s: extraction exceeds %d byte budget", ErrBadArchive, archivePath, e.maxBytes)
		}
	}
	return nil
}

func extractFile(entry *zip.File, target string, budget int64) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, err
	}
	in, err := entry.Open()
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(target)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	// Copy one byte past the budget so overruns are detectable by the caller.
	written, err := io.Copy(out, io.LimitReader(in, budget+1))
	if err != nil {
		return written, err
	}
	return written, nil
}

// workspaceName derives a collision-free directory name from the archive's
// identity: its base name with dots flattened, qualified by a short hash of
// the absolute path.
func workspaceName(archivePath string) string {
	abs, err := filepath.Abs(archivePath)
	if err != nil {
		abs = archivePath
	}
	digest := fnv.New32a()
	_, _ = digest.Write([]byte(abs))
	base := strings.ReplaceAll(filepath.Base(archivePath), ".", "_")
	return fmt.Sprintf("%s-%08x", base, digest.Sum32())
}
