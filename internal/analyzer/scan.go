package analyzer

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
	"github.com/jakoblorz/go-airules/internal/filesystem"
)

// defaultSkipDirs are never descended into, independent of .gitignore.
var defaultSkipDirs = []string{
	".git", ".hg", ".svn",
	"node_modules", "bower_components", "vendor",
	"dist", "build", "target", "out",
	"__pycache__", ".venv", "venv", "env", ".tox", ".nox",
	".mypy_cache", ".pytest_cache", ".ruff_cache",
	".next", ".nuxt", ".svelte-kit", ".turbo", ".cache",
	".idea", ".vscode", "coverage", ".terraform",
}

// scan is the file inventory of a project. Paths are slash separated and
// relative to root.
type scan struct {
	fs        filesystem.FileSystem
	root      string
	files     []string
	dirs      []string
	fileSet   map[string]struct{}
	truncated bool
}

func (a *Analyzer) scanProject(root string) (*scan, error) {
	ignore, err := loadGitIgnore(a.fs, root)
	if err != nil {
		return nil, err
	}

	s := &scan{
		fs:      a.fs,
		root:    root,
		fileSet: make(map[string]struct{}),
	}

	err = a.fs.WalkDir(root, func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if entry.IsDir() {
			if _, skip := a.skipDirs[entry.Name()]; skip {
				return filepath.SkipDir
			}
		}

		if ignore != nil {
			if match := ignore.Relative(rel, entry.IsDir()); match != nil && match.Ignore() {
				if entry.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if entry.IsDir() {
			s.dirs = append(s.dirs, rel)
			return nil
		}

		if len(s.files) >= a.maxFiles {
			s.truncated = true
			return fs.SkipAll
		}
		s.files = append(s.files, rel)
		s.fileSet[rel] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	sort.Strings(s.files)
	sort.Strings(s.dirs)
	return s, nil
}

func loadGitIgnore(fsys filesystem.FileSystem, root string) (gitignore.GitIgnore, error) {
	ignorePath := filepath.Join(root, ".gitignore")
	if !fsys.Exists(ignorePath) {
		return nil, nil
	}

	data, err := fsys.ReadFile(ignorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read .gitignore: %w", err)
	}

	return gitignore.New(bytes.NewReader(data), root, nil), nil
}

// has reports whether the file exists in the inventory.
func (s *scan) has(rel string) bool {
	_, ok := s.fileSet[rel]
	return ok
}

// match returns the files matching any of the doublestar patterns.
func (s *scan) match(patterns ...string) []string {
	var out []string
	for _, f := range s.files {
		for _, pattern := range patterns {
			if ok, _ := doublestar.Match(pattern, f); ok {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// any reports whether at least one file matches a pattern.
func (s *scan) any(patterns ...string) bool {
	for _, f := range s.files {
		for _, pattern := range patterns {
			if ok, _ := doublestar.Match(pattern, f); ok {
				return true
			}
		}
	}
	return false
}

// hasDirNamed reports whether a directory with one of the given base names
// exists anywhere in the tree.
func (s *scan) hasDirNamed(names ...string) bool {
	for _, d := range s.dirs {
		base := path.Base(d)
		for _, name := range names {
			if strings.EqualFold(base, name) {
				return true
			}
		}
	}
	return false
}

// hasTopDir reports whether a root-level directory with one of the names exists.
func (s *scan) hasTopDir(names ...string) bool {
	for _, d := range s.dirs {
		if strings.Contains(d, "/") {
			continue
		}
		for _, name := range names {
			if strings.EqualFold(d, name) {
				return true
			}
		}
	}
	return false
}

func (s *scan) read(rel string) ([]byte, error) {
	return s.fs.ReadFile(filepath.Join(s.root, filepath.FromSlash(rel)))
}
