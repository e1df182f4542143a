package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path, and any missing parent directories, holding size
// filler bytes. A size <= 0 still writes one byte so the file passes the
// non-empty artifact checks the stages apply.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()
	if size <= 0 {
		size = 1
	}
	writeBytes(t, path, bytes.Repeat([]byte{'v'}, int(size)))
}

// WriteText writes content to path, creating parent directories. Caption and
// transcript fixtures use it.
func WriteText(t testing.TB, path, content string) {
	t.Helper()
	writeBytes(t, path, []byte(content))
}

// MediaFiles lays down a one kilobyte placeholder for each path.
func MediaFiles(t testing.TB, paths ...string) {
	t.Helper()
	for _, path := range paths {
		WriteFile(t, path, 1024)
	}
}

func writeBytes(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
