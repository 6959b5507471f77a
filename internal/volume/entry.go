package volume

import (
	"io/fs"
	"path/filepath"
)

// FileEntry is a listed input PDF with the file info cached at listing time.
// FileEntry values are created by FilesystemManager.ListPDFs and never change.
type FileEntry struct {
	path string
	info fs.FileInfo
}

// NewFileEntry creates a FileEntry from its components.
// This is primarily for use by FilesystemManager implementations.
func NewFileEntry(path string, info fs.FileInfo) *FileEntry {
	return &FileEntry{path: path, info: info}
}

// Path returns the path of the file as listed.
func (e *FileEntry) Path() string {
	return e.path
}

// Name returns the base name of the file.
func (e *FileEntry) Name() string {
	return filepath.Base(e.path)
}

// Size returns the byte size cached at listing time, or 0 when unknown.
func (e *FileEntry) Size() int64 {
	if e.info == nil {
		return 0
	}
	return e.info.Size()
}

// Paths returns the paths of entries in order.
func Paths(entries []*FileEntry) []string {
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.path
	}
	return paths
}
