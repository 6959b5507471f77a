package volume

import (
	"io"
	"io/fs"
)

// FilesystemManager provides the filesystem operations the walk needs.
// It abstracts file access to enable testing without touching the real filesystem.
type FilesystemManager interface {
	// Stat returns fresh file info for a path.
	Stat(path string) (fs.FileInfo, error)

	// ListPDFs returns the regular files directly inside dir whose extension
	// is ".pdf" in any letter case, in directory order. It does not recurse.
	ListPDFs(dir string) ([]*FileEntry, error)

	// MkdirAll creates dir and any missing parents.
	MkdirAll(dir string) error

	// Open opens a file for reading.
	Open(path string) (io.ReadCloser, error)
}
