package scan

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
}

func TestListFlatSkipsHiddenAndDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "alpha"))
	writeFile(t, filepath.Join(root, "bravo"))
	writeFile(t, filepath.Join(root, ".hidden"))
	writeFile(t, filepath.Join(root, "sub", "nested"))

	names, err := List(root, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"alpha", "bravo"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("got %v, want %v", names, want)
	}
}

func TestListRecursiveUsesSlashPaths(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "alpha"))
	writeFile(t, filepath.Join(root, "sub", "nested"))
	writeFile(t, filepath.Join(root, "sub", ".hidden"))
	writeFile(t, filepath.Join(root, ".git", "config"))

	names, err := List(root, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"alpha", "sub/nested"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("got %v, want %v", names, want)
	}
}

func TestListMissingRootIsEmpty(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	for _, recursive := range []bool{false, true} {
		names, err := List(missing, recursive)
		if err != nil {
			t.Fatalf("recursive=%v: %v", recursive, err)
		}
		if len(names) != 0 {
			t.Fatalf("recursive=%v: expected empty, got %v", recursive, names)
		}
	}
}

func TestDirsSkipsHiddenSubtrees(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "one"))
	writeFile(t, filepath.Join(root, "a", "b", "two"))
	writeFile(t, filepath.Join(root, ".cache", "three"))

	dirs, err := Dirs(root)
	if err != nil {
		t.Fatalf("dirs: %v", err)
	}
	want := []string{
		filepath.Join(root, "a"),
		filepath.Join(root, "a", "b"),
	}
	if !reflect.DeepEqual(dirs, want) {
		t.Fatalf("got %v, want %v", dirs, want)
	}
}
