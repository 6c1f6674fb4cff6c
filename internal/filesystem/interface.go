package filesystem

import (
	"io/fs"
)

// FileSystem abstracts the file operations used to scan a project and write
// rule files, so every component can run against the in-memory mock in tests.
type FileSystem interface {
	// File operations
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm fs.FileMode) error
	Remove(path string) error

	// Directory operations
	ReadDir(path string) ([]fs.DirEntry, error)
	MkdirAll(path string, perm fs.FileMode) error

	// Path operations
	Stat(path string) (fs.FileInfo, error)
	Exists(path string) bool
	Getwd() (string, error)

	// WalkDir visits root and everything below it in lexical order. Returning
	// filepath.SkipDir for a directory skips its whole subtree.
	WalkDir(root string, fn fs.WalkDirFunc) error

	// Glob returns the sorted paths matching a doublestar pattern ("**"
	// matches any number of directories).
	Glob(pattern string) ([]string, error)
}
