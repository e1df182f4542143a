package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRequireFile(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "audio.mp3")
	empty := filepath.Join(dir, "empty.mp3")
	if err := os.WriteFile(full, []byte("ID3"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := RequireFile(full); err != nil {
		t.Fatalf("expected file to satisfy RequireFile: %v", err)
	}
	if err := RequireFile(empty); err == nil {
		t.Fatal("expected error for empty file")
	}
	if err := RequireFile(dir); err == nil {
		t.Fatal("expected error for directory")
	}
	if err := RequireFile(filepath.Join(dir, "missing")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestEnsureParentDirAndCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "nested", "deeper", "dst.txt")
	if err := os.WriteFile(src, []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureParentDir(dst); err != nil {
		t.Fatal(err)
	}
	if err := CopyFile(src, dst); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello world" {
		t.Fatalf("content mismatch: %q", got)
	}
}
