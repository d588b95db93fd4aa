// Copyright 2026 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ignoredDir follows the go command's conventions: directories whose
// names begin with '.' or '_' and testdata directories are ignored.
func ignoredDir(root, path, name string) bool {
	return path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "testdata")
}

// Modules returns the directories below root that contain a go.mod file.
// Nested modules are not returned and, following the go command's
// conventions, directories whose names begin with '.' or '_' and
// testdata directories are ignored.
func Modules(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if ignoredDir(root, path, d.Name()) {
			return filepath.SkipDir
		}
		if _, err := os.Stat(filepath.Join(path, "go.mod")); err == nil {
			dirs = append(dirs, path)
			return filepath.SkipDir
		}
		return nil
	})
	return dirs, err
}

// GoFiles returns the .go files below root, relative to root, that the
// go command would consider. Directories listed in exclude, such as a
// module cache placed within root, are also ignored.
func GoFiles(root string, exclude ...string) ([]string, error) {
	var excluded []string
	for _, dir := range exclude {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		excluded = append(excluded, abs)
	}
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if ignoredDir(root, path, d.Name()) {
				return filepath.SkipDir
			}
			if len(excluded) > 0 {
				abs, err := filepath.Abs(path)
				if err != nil {
					return err
				}
				if slices.Contains(excluded, abs) {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if filepath.Ext(path) != ".go" || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	return files, err
}
