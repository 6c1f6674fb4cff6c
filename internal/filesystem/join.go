package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"syscall"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// ErrPathEscapesRoot is returned when a relative path points outside its root.
var ErrPathEscapesRoot = errors.New("path escapes project root")

// linkReader is implemented by filesystems that know about symlinks.
type linkReader interface {
	Lstat(path string) (fs.FileInfo, error)
	Readlink(path string) (string, error)
}

// joinVFS lets securejoin resolve symlinks through a FileSystem. Filesystems
// without symlink support are treated as having none.
type joinVFS struct {
	fs FileSystem
}

func (v joinVFS) Lstat(name string) (fs.FileInfo, error) {
	if lr, ok := v.fs.(linkReader); ok {
		return lr.Lstat(name)
	}
	return v.fs.Stat(name)
}

func (v joinVFS) Readlink(name string) (string, error) {
	if lr, ok := v.fs.(linkReader); ok {
		return lr.Readlink(name)
	}
	return "", &fs.PathError{Op: "readlink", Path: name, Err: syscall.EINVAL}
}

// SecureJoin joins rel onto root and guarantees the result stays inside
// root, also when intermediate components are symlinks. Relative paths that
// lexically leave root are rejected with ErrPathEscapesRoot.
func SecureJoin(fsys FileSystem, root, rel string) (string, error) {
	if filepath.IsAbs(rel) || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapesRoot, rel)
	}

	path, err := securejoin.SecureJoinVFS(root, rel, joinVFS{fs: fsys})
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", rel, err)
	}
	return path, nil
}
