// Package scan enumerates the visible entries of a map directory.
//
// Names with a dot-prefixed component are reserved for write temporaries and
// hidden files, so every listing excludes them. A missing root is an empty
// directory, not an error.
package scan

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Hidden reports whether a single path component is dot-prefixed.
func Hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// List returns the slash-separated relative paths of the files under root.
// When recursive is false only direct children are listed; otherwise the
// whole tree is walked. Results are in lexical order.
func List(root string, recursive bool) ([]string, error) {
	if recursive {
		return listTree(root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || Hidden(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

func listTree(root string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipAll
			}
			// Unreadable subtrees are skipped, not fatal.
			return nil
		}
		if path == root {
			return nil
		}
		if Hidden(entry.Name()) {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	return names, err
}

// Dirs returns the absolute paths of the visible subdirectories under root,
// excluding root itself. Used to seed recursive watches.
func Dirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipAll
			}
			return nil
		}
		if path == root || !entry.IsDir() {
			return nil
		}
		if Hidden(entry.Name()) {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	return dirs, err
}
