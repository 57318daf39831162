package testsupport

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// BuildZip returns a zip archive holding the given entries (slash-separated
// names). Useful for embedding archives inside archives.
func BuildZip(t testing.TB, entries map[string][]byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		if _, err := f.Write(content); err != nil {
			t.Fatalf("write zip entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	return buf.Bytes()
}

// WriteZip builds a zip archive at path from string entries.
func WriteZip(t testing.TB, path string, entries map[string]string) {
	t.Helper()

	raw := make(map[string][]byte, len(entries))
	for name, content := range entries {
		raw[name] = []byte(content)
	}
	WriteZipRaw(t, path, raw)
}

// WriteZipRaw builds a zip archive at path from byte entries.
func WriteZipRaw(t testing.TB, path string, entries map[string][]byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, BuildZip(t, entries), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
