// Package fsutil provides filesystem abstractions for testability, plus
// the trial-file layout rules: discovery, device pairing and output paths.
package fsutil

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FileSystem is the file access used by readers, sinks and report writers.
// OSFileSystem backs the commands and MemoryFileSystem backs tests.
type FileSystem interface {
	// Create opens name for writing, truncating any previous content.
	Create(name string) (io.WriteCloser, error)

	// ReadFile returns the whole content of name.
	ReadFile(name string) ([]byte, error)

	// WriteFile replaces the content of name with data.
	WriteFile(name string, data []byte, perm os.FileMode) error

	Stat(name string) (fs.FileInfo, error)

	// MkdirAll ensures path and its parents exist.
	MkdirAll(path string, perm os.FileMode) error

	// ListFiles returns every regular file below root, sorted.
	ListFiles(root string) ([]string, error)

	Exists(name string) bool
}

// OSFileSystem forwards to the os package.
type OSFileSystem struct{}

func (OSFileSystem) Create(name string) (io.WriteCloser, error) {
	return os.Create(name)
}

func (OSFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (OSFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

func (OSFileSystem) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (OSFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// ListFiles walks root and collects regular files.
func (OSFileSystem) ListFiles(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// Exists is true for anything os.Stat can see.
func (OSFileSystem) Exists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		return false
	}
	return true
}

// MemoryFileSystem is an in-memory FileSystem for tests. Writing a file
// implicitly creates its parent directories. Paths are cleaned with
// filepath.Clean.
type MemoryFileSystem struct {
	mu    sync.RWMutex
	files map[string]memFile
	dirs  map[string]bool
}

type memFile struct {
	data []byte
	mode os.FileMode
}

// NewMemoryFileSystem creates an empty in-memory filesystem.
func NewMemoryFileSystem() *MemoryFileSystem {
	return &MemoryFileSystem{
		files: make(map[string]memFile),
		dirs:  make(map[string]bool),
	}
}

// put stores a copy of data and registers the parent directories.
// Callers hold m.mu.
func (m *MemoryFileSystem) put(name string, data []byte, mode os.FileMode) {
	m.files[name] = memFile{data: append([]byte(nil), data...), mode: mode}
	m.markDirs(filepath.Dir(name))
}

func (m *MemoryFileSystem) markDirs(dir string) {
	for ; dir != "." && dir != string(filepath.Separator) && !m.dirs[dir]; dir = filepath.Dir(dir) {
		m.dirs[dir] = true
	}
}

// Create truncates name immediately. Written bytes become visible on Close.
func (m *MemoryFileSystem) Create(name string) (io.WriteCloser, error) {
	name = filepath.Clean(name)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(name, nil, 0644)
	return &memWriter{fs: m, name: name}, nil
}

// ReadFile returns a copy of the file contents.
func (m *MemoryFileSystem) ReadFile(name string) ([]byte, error) {
	name = filepath.Clean(name)
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), f.data...), nil
}

// WriteFile stores a copy of data.
func (m *MemoryFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(filepath.Clean(name), data, perm)
	return nil
}

// Stat reports size and mode for files and IsDir for directories.
func (m *MemoryFileSystem) Stat(name string) (fs.FileInfo, error) {
	name = filepath.Clean(name)
	m.mu.RLock()
	defer m.mu.RUnlock()
	if f, ok := m.files[name]; ok {
		return memInfo{name: filepath.Base(name), size: int64(len(f.data)), mode: f.mode}, nil
	}
	if m.dirs[name] {
		return memInfo{name: filepath.Base(name), mode: fs.ModeDir | 0755}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

// MkdirAll registers path and its parents.
func (m *MemoryFileSystem) MkdirAll(path string, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markDirs(filepath.Clean(path))
	return nil
}

// ListFiles returns the stored files below root, sorted.
func (m *MemoryFileSystem) ListFiles(root string) ([]string, error) {
	root = filepath.Clean(root)
	m.mu.RLock()
	defer m.mu.RUnlock()
	if root != "." && !m.dirs[root] {
		if _, ok := m.files[root]; !ok {
			return nil, &fs.PathError{Op: "walk", Path: root, Err: fs.ErrNotExist}
		}
	}
	prefix := root + string(filepath.Separator)
	var out []string
	for name := range m.files {
		if root == "." || name == root || strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Exists reports whether name is a stored file or directory.
func (m *MemoryFileSystem) Exists(name string) bool {
	name = filepath.Clean(name)
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[name]
	return ok || m.dirs[name]
}

type memWriter struct {
	fs   *MemoryFileSystem
	name string
	buf  []byte
}

func (w *memWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *memWriter) Close() error {
	w.fs.mu.Lock()
	defer w.fs.mu.Unlock()
	w.fs.put(w.name, w.buf, 0644)
	return nil
}

type memInfo struct {
	name string
	size int64
	mode os.FileMode
}

func (i memInfo) Name() string       { return i.name }
func (i memInfo) Size() int64        { return i.size }
func (i memInfo) Mode() os.FileMode  { return i.mode }
func (i memInfo) ModTime() time.Time { return time.Time{} }
func (i memInfo) IsDir() bool        { return i.mode.IsDir() }
func (i memInfo) Sys() any           { return nil }
