package filesystem

import (
	"fmt"
	"io/fs"
	"path/filepath"
)

// FindUp looks for name in startDir and each of its parents. It returns the
// full path of the first match and false when the filesystem root is reached
// without one.
func FindUp(fsys FileSystem, startDir, name string) (string, bool) {
	dir := filepath.Clean(startDir)

	for {
		candidate := filepath.Join(dir, name)
		if fsys.Exists(candidate) {
			return candidate, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// WriteFileAll writes data to path, creating missing parent directories.
func WriteFileAll(fsys FileSystem, path string, data []byte, perm fs.FileMode) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := fsys.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
