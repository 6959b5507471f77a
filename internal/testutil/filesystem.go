package testutil

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"pdfmgr/internal/volume"
)

// MockFile represents a file in the mock filesystem.
type MockFile struct {
	Content     []byte
	Permissions fs.FileMode
	ModTime     time.Time
	IsDirectory bool
}

// MockFilesystemManager is an in-memory filesystem for testing.
// Files are listed in the order they were added, so tests control the
// listing order the walk starts from.
type MockFilesystemManager struct {
	files map[string]*MockFile
	order []string
}

// NewMockFilesystemManager creates a new mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files: make(map[string]*MockFile),
	}
}

// AddFile adds a file to the mock filesystem, replacing any existing one.
func (m *MockFilesystemManager) AddFile(path string, content []byte) {
	m.put(path, &MockFile{
		Content:     content,
		Permissions: 0644,
		ModTime:     time.Now(),
	})
}

// AddDirectory adds a directory to the mock filesystem.
func (m *MockFilesystemManager) AddDirectory(path string) {
	m.put(path, &MockFile{
		Permissions: 0755,
		ModTime:     time.Now(),
		IsDirectory: true,
	})
}

// AddPDFs adds a directory holding one small file per name, in the given order.
func (m *MockFilesystemManager) AddPDFs(dir string, names ...string) {
	m.AddDirectory(dir)
	for _, n := range names {
		m.AddFile(filepath.Join(dir, n), []byte("%PDF "+n))
	}
}

// Exists reports whether path is present.
func (m *MockFilesystemManager) Exists(path string) bool {
	_, ok := m.files[path]
	return ok
}

// Content returns the content of the file at path.
func (m *MockFilesystemManager) Content(path string) ([]byte, bool) {
	f, ok := m.files[path]
	if !ok || f.IsDirectory {
		return nil, false
	}
	return f.Content, true
}

// FilesIn returns the base names of files directly inside dir, in insertion order.
func (m *MockFilesystemManager) FilesIn(dir string) []string {
	var names []string
	for _, p := range m.order {
		if filepath.Dir(p) == dir && !m.files[p].IsDirectory {
			names = append(names, filepath.Base(p))
		}
	}
	return names
}

func (m *MockFilesystemManager) put(path string, f *MockFile) {
	if _, ok := m.files[path]; !ok {
		m.order = append(m.order, path)
	}
	m.files[path] = f
}

func (m *MockFilesystemManager) Stat(path string) (fs.FileInfo, error) {
	file, ok := m.files[path]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
	}
	return newMockFileInfo(path, file), nil
}

func (m *MockFilesystemManager) ListPDFs(dir string) ([]*volume.FileEntry, error) {
	d, ok := m.files[dir]
	if !ok || !d.IsDirectory {
		return nil, fmt.Errorf("reading directory: %s: %w", dir, fs.ErrNotExist)
	}
	var entries []*volume.FileEntry
	for _, p := range m.order {
		f := m.files[p]
		if filepath.Dir(p) != dir || f.IsDirectory {
			continue
		}
		if !strings.EqualFold(filepath.Ext(p), ".pdf") {
			continue
		}
		entries = append(entries, volume.NewFileEntry(p, newMockFileInfo(p, f)))
	}
	return entries, nil
}

func (m *MockFilesystemManager) MkdirAll(dir string) error {
	for d := dir; ; d = filepath.Dir(d) {
		if f, ok := m.files[d]; ok {
			if !f.IsDirectory {
				return fmt.Errorf("mkdir %s: not a directory", d)
			}
		} else {
			m.AddDirectory(d)
		}
		if parent := filepath.Dir(d); parent == d {
			return nil
		}
	}
}

func (m *MockFilesystemManager) Open(path string) (io.ReadCloser, error) {
	file, ok := m.files[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	if file.IsDirectory {
		return nil, fmt.Errorf("cannot open directory: %s", path)
	}
	return io.NopCloser(bytes.NewReader(file.Content)), nil
}

// mockFileInfo implements fs.FileInfo
type mockFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func newMockFileInfo(path string, f *MockFile) *mockFileInfo {
	mode := f.Permissions
	if f.IsDirectory {
		mode |= fs.ModeDir
	}
	return &mockFileInfo{
		name:    filepath.Base(path),
		size:    int64(len(f.Content)),
		mode:    mode,
		modTime: f.ModTime,
		isDir:   f.IsDirectory,
	}
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() any           { return nil }

// Compile-time check
var _ volume.FilesystemManager = (*MockFilesystemManager)(nil)
