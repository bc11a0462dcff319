package indexer

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/kettleby/autoctx/internal/index"
)

// Directories never descended into, independent of configuration.
var defaultIgnoreDirs = map[string]bool{
	".git":             true,
	".hg":              true,
	".svn":             true,
	"vendor":           true,
	"node_modules":     true,
	"__pycache__":      true,
	"dist":             true,
	"build":            true,
	"target":           true,
	index.StateDirName: true,
}

// IgnoredDir reports whether a directory name is never descended into,
// such as VCS metadata, dependency trees, and the state directory.
func IgnoredDir(name string) bool {
	return defaultIgnoreDirs[name] || strings.HasPrefix(name, ".")
}

// Walker enumerates candidate source files under a root, applying the
// extension allowlist, built-in ignore rules, and user doublestar
// patterns.
type Walker struct {
	extensions map[string]bool
	ignore     []string
}

// NewWalker creates a walker for the given extension allowlist and extra
// ignore patterns.
func NewWalker(extensions, ignore []string) *Walker {
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = true
	}
	return &Walker{extensions: exts, ignore: ignore}
}

// Discover returns the sorted, root-relative slash paths of all candidate
// files. Enumeration order never affects final index content, only
// transient progress order; sorting keeps runs comparable.
func (w *Walker) Discover(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d == nil {
				// The root itself is unreadable or missing.
				return err
			}
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if IgnoredDir(d.Name()) {
				return filepath.SkipDir
			}
			if w.matchesIgnore(rel + "/") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if !w.extensions[strings.ToLower(filepath.Ext(rel))] {
			return nil
		}
		if w.matchesIgnore(rel) {
			return nil
		}

		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}

func (w *Walker) matchesIgnore(rel string) bool {
	trimmed := strings.TrimSuffix(rel, "/")
	for _, pattern := range w.ignore {
		if ok, err := doublestar.Match(pattern, trimmed); err == nil && ok {
			return true
		}
	}
	return false
}
