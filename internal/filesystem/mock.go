package filesystem

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// MockFileSystem is an in-memory FileSystem for tests. It is safe for
// concurrent use.
type MockFileSystem struct {
	mu         sync.RWMutex
	files      map[string]*MockFile
	currentDir string
}

// MockFile represents a file or directory in the mock filesystem
type MockFile struct {
	Content []byte
	Mode    fs.FileMode
	ModTime time.Time
	IsDir   bool
}

type mockFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() interface{}   { return nil }

type mockDirEntry struct {
	info fs.FileInfo
}

func (m *mockDirEntry) Name() string               { return m.info.Name() }
func (m *mockDirEntry) IsDir() bool                { return m.info.IsDir() }
func (m *mockDirEntry) Type() fs.FileMode          { return m.info.Mode().Type() }
func (m *mockDirEntry) Info() (fs.FileInfo, error) { return m.info, nil }

// NewMockFileSystem creates an empty MockFileSystem rooted at "/" with
// "/workspace" as working directory.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files: map[string]*MockFile{
			"/": {Mode: 0755 | fs.ModeDir, IsDir: true},
		},
		currentDir: "/workspace",
	}
}

// AddFile adds a file and its missing parent directories
func (mfs *MockFileSystem) AddFile(path string, content []byte) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	cleanPath := filepath.Clean(path)
	mfs.ensureParents(cleanPath, 0755)
	mfs.files[cleanPath] = &MockFile{
		Content: append([]byte(nil), content...),
		Mode:    0644,
		ModTime: time.Now(),
	}
}

// AddDir adds a directory and its missing parents
func (mfs *MockFileSystem) AddDir(path string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	cleanPath := filepath.Clean(path)
	mfs.ensureParents(cleanPath, 0755)
	if _, exists := mfs.files[cleanPath]; !exists {
		mfs.files[cleanPath] = &MockFile{
			Mode:    0755 | fs.ModeDir,
			ModTime: time.Now(),
			IsDir:   true,
		}
	}
}

func (mfs *MockFileSystem) ensureParents(path string, perm fs.FileMode) {
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		if _, exists := mfs.files[dir]; !exists {
			mfs.files[dir] = &MockFile{
				Mode:    perm | fs.ModeDir,
				ModTime: time.Now(),
				IsDir:   true,
			}
		}
		if dir == filepath.Dir(dir) {
			return
		}
	}
}

func (mfs *MockFileSystem) ReadFile(path string) ([]byte, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	file, exists := mfs.files[filepath.Clean(path)]
	if !exists {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	if file.IsDir {
		return nil, &fs.PathError{Op: "read", Path: path, Err: errors.New("is a directory")}
	}
	return append([]byte(nil), file.Content...), nil
}

func (mfs *MockFileSystem) WriteFile(path string, data []byte, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	cleanPath := filepath.Clean(path)
	parent, exists := mfs.files[filepath.Dir(cleanPath)]
	if !exists || !parent.IsDir {
		return &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	if existing, ok := mfs.files[cleanPath]; ok && existing.IsDir {
		return &fs.PathError{Op: "open", Path: path, Err: errors.New("is a directory")}
	}

	mfs.files[cleanPath] = &MockFile{
		Content: append([]byte(nil), data...),
		Mode:    perm,
		ModTime: time.Now(),
	}
	return nil
}

func (mfs *MockFileSystem) Remove(path string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	cleanPath := filepath.Clean(path)
	if _, exists := mfs.files[cleanPath]; !exists {
		return &fs.PathError{Op: "remove", Path: path, Err: fs.ErrNotExist}
	}
	if len(mfs.children(cleanPath)) > 0 {
		return &fs.PathError{Op: "remove", Path: path, Err: errors.New("directory not empty")}
	}
	delete(mfs.files, cleanPath)
	return nil
}

func (mfs *MockFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	cleanPath := filepath.Clean(path)
	file, exists := mfs.files[cleanPath]
	if !exists {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	if !file.IsDir {
		return nil, &fs.PathError{Op: "readdir", Path: path, Err: errors.New("not a directory")}
	}

	children := mfs.children(cleanPath)
	entries := make([]fs.DirEntry, 0, len(children))
	for _, child := range children {
		entries = append(entries, mfs.entry(child))
	}
	return entries, nil
}

func (mfs *MockFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	cleanPath := filepath.Clean(path)
	for dir := cleanPath; ; dir = filepath.Dir(dir) {
		if existing, ok := mfs.files[dir]; ok && !existing.IsDir {
			return &fs.PathError{Op: "mkdir", Path: dir, Err: errors.New("not a directory")}
		}
		if dir == filepath.Dir(dir) {
			break
		}
	}

	mfs.ensureParents(cleanPath, perm)
	if _, exists := mfs.files[cleanPath]; !exists {
		mfs.files[cleanPath] = &MockFile{
			Mode:    perm | fs.ModeDir,
			ModTime: time.Now(),
			IsDir:   true,
		}
	}
	return nil
}

func (mfs *MockFileSystem) Stat(path string) (fs.FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	cleanPath := filepath.Clean(path)
	if _, exists := mfs.files[cleanPath]; !exists {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
	}
	return mfs.info(cleanPath), nil
}

func (mfs *MockFileSystem) Exists(path string) bool {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	_, exists := mfs.files[filepath.Clean(path)]
	return exists
}

func (mfs *MockFileSystem) Getwd() (string, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	return mfs.currentDir, nil
}

// WalkDir walks a snapshot of the tree taken when the walk starts, so fn may
// modify the filesystem.
func (mfs *MockFileSystem) WalkDir(root string, fn fs.WalkDirFunc) error {
	mfs.mu.RLock()
	cleanRoot := filepath.Clean(root)
	if _, exists := mfs.files[cleanRoot]; !exists {
		mfs.mu.RUnlock()
		return fn(root, nil, &fs.PathError{Op: "lstat", Path: root, Err: fs.ErrNotExist})
	}
	tree := make(map[string][]string)
	entries := make(map[string]fs.DirEntry)
	for p := range mfs.files {
		if p != cleanRoot && !isUnder(p, cleanRoot) {
			continue
		}
		entries[p] = mfs.entry(p)
		if p != cleanRoot {
			parent := filepath.Dir(p)
			tree[parent] = append(tree[parent], p)
		}
	}
	mfs.mu.RUnlock()

	for _, children := range tree {
		sort.Strings(children)
	}

	err := walkTree(cleanRoot, entries, tree, fn)
	if errors.Is(err, filepath.SkipDir) || errors.Is(err, fs.SkipAll) {
		return nil
	}
	return err
}

func walkTree(path string, entries map[string]fs.DirEntry, tree map[string][]string, fn fs.WalkDirFunc) error {
	entry := entries[path]
	if err := fn(path, entry, nil); err != nil {
		return err
	}
	if !entry.IsDir() {
		return nil
	}

	for _, child := range tree[path] {
		err := walkTree(child, entries, tree, fn)
		if err == nil {
			continue
		}
		if errors.Is(err, filepath.SkipDir) {
			if entries[child].IsDir() {
				continue
			}
			// SkipDir on a file skips the remaining entries of its directory.
			return nil
		}
		return err
	}
	return nil
}

func (mfs *MockFileSystem) Glob(pattern string) ([]string, error) {
	pattern = filepath.ToSlash(pattern)
	if !doublestar.ValidatePattern(pattern) {
		return nil, doublestar.ErrBadPattern
	}

	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	var matches []string
	for p := range mfs.files {
		matched, err := doublestar.Match(pattern, filepath.ToSlash(p))
		if err != nil {
			return nil, err
		}
		if matched {
			matches = append(matches, p)
		}
	}

	sort.Strings(matches)
	return matches, nil
}

// SetCurrentDir sets the working directory returned by Getwd
func (mfs *MockFileSystem) SetCurrentDir(dir string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	mfs.currentDir = filepath.Clean(dir)
}

// Files returns the sorted paths of all regular files below root.
func (mfs *MockFileSystem) Files(root string) []string {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	cleanRoot := filepath.Clean(root)
	var paths []string
	for p, f := range mfs.files {
		if !f.IsDir && isUnder(p, cleanRoot) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}

func (mfs *MockFileSystem) children(dir string) []string {
	var out []string
	for p := range mfs.files {
		if p != dir && filepath.Dir(p) == dir {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func (mfs *MockFileSystem) info(path string) *mockFileInfo {
	file := mfs.files[path]
	return &mockFileInfo{
		name:    filepath.Base(path),
		size:    int64(len(file.Content)),
		mode:    file.Mode,
		modTime: file.ModTime,
		isDir:   file.IsDir,
	}
}

func (mfs *MockFileSystem) entry(path string) fs.DirEntry {
	return &mockDirEntry{info: mfs.info(path)}
}

func isUnder(path, root string) bool {
	if root == string(filepath.Separator) {
		return path != root
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
