package fs

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"pdfmgr/internal/volume"
)

// OSFilesystemManager is the real filesystem implementation of FilesystemManager.
// It performs actual filesystem operations using the os package.
type OSFilesystemManager struct {
	ignore *IgnoreMatcher
}

// NewOSFilesystemManager creates a new filesystem manager that operates on the real filesystem.
// Files whose names match any of the ignore patterns are left out of listings.
func NewOSFilesystemManager(ignorePatterns []string) *OSFilesystemManager {
	return &OSFilesystemManager{ignore: NewIgnoreMatcher(ignorePatterns)}
}

// Stat returns fresh file info for a path.
func (m *OSFilesystemManager) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// ListPDFs returns the regular .pdf files directly inside dir.
// The extension match is case-insensitive. Symlinks are followed and kept
// when they point at a regular file; dangling links, subdirectories and
// other special files are skipped, as are names matched by the configured
// ignore patterns or by dir/.pdfignore.
func (m *OSFilesystemManager) ListPDFs(dir string) ([]*volume.FileEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	local, err := ParseIgnoreFile(filepath.Join(dir, IgnoreFileName))
	if err != nil {
		return nil, err
	}
	ignore := m.ignore.With(local)

	var pdfs []*volume.FileEntry
	for _, entry := range entries {
		if !IsPDF(entry.Name()) || ignore.Match(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		var info fs.FileInfo
		switch {
		case entry.Type().IsRegular():
			if info, err = entry.Info(); err != nil {
				return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
			}
		case entry.Type()&fs.ModeSymlink != 0:
			// The target's info carries the size that gets reported.
			target, err := os.Stat(path)
			if err != nil || !target.Mode().IsRegular() {
				continue
			}
			info = target
		default:
			continue
		}
		pdfs = append(pdfs, volume.NewFileEntry(path, info))
	}

	return pdfs, nil
}

// MkdirAll creates dir and any missing parents.
func (m *OSFilesystemManager) MkdirAll(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// Open opens a file for reading.
func (m *OSFilesystemManager) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// IsPDF reports whether name has a .pdf extension in any letter case.
func IsPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// Compile-time check that OSFilesystemManager implements volume.FilesystemManager interface
var _ volume.FilesystemManager = (*OSFilesystemManager)(nil)
