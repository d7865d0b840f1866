package s57

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindUpdateFilesSequential(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "US5MA22M.000")
	write(t, base, "base")
	write(t, filepath.Join(dir, "US5MA22M.001"), "u1")
	write(t, filepath.Join(dir, "US5MA22M.002"), "u2")
	// a gap at .003 - .004 must not be picked up
	write(t, filepath.Join(dir, "US5MA22M.004"), "u4")

	updates, err := FindUpdateFiles(base)
	if err != nil {
		t.Fatalf("FindUpdateFiles: %v", err)
	}
	want := []string{
		filepath.Join(dir, "US5MA22M.001"),
		filepath.Join(dir, "US5MA22M.002"),
	}
	if len(updates) != len(want) {
		t.Fatalf("updates = %v, want %v", updates, want)
	}
	for i := range want {
		if updates[i] != want[i] {
			t.Errorf("updates[%d] = %q, want %q", i, updates[i], want[i])
		}
	}
}

func TestFindUpdateFilesNoneExist(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "US5MA22M.000")
	write(t, base, "base")

	updates, err := FindUpdateFiles(base)
	if err != nil {
		t.Fatalf("FindUpdateFiles: %v", err)
	}
	if len(updates) != 0 {
		t.Errorf("updates = %v, want none", updates)
	}
}

func write(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
