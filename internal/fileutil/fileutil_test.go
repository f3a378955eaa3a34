package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileExists(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if FileExists(path) {
		t.Fatal("missing file reported as existing")
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !FileExists(path) {
		t.Fatal("existing file reported as missing")
	}
	if FileExists(dir) {
		t.Fatal("directory reported as regular file")
	}
}

func TestNonEmptyFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if NonEmptyFile(empty) {
		t.Fatal("empty file reported as non-empty")
	}
	full := filepath.Join(dir, "full")
	if err := os.WriteFile(full, []byte("data"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !NonEmptyFile(full) {
		t.Fatal("non-empty file reported as empty")
	}
}

func TestHashStringsStable(t *testing.T) {
	t.Parallel()
	a := HashStrings("one", "two")
	b := HashStrings("one", "two")
	if a != b {
		t.Fatal("hash not deterministic")
	}
	if a == HashStrings("onet", "wo") {
		t.Fatal("hash boundary collision")
	}
}

func TestHashFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	sum, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}
	if len(sum) != 64 {
		t.Fatalf("unexpected digest length: %d", len(sum))
	}
}
