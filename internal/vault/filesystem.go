package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"pdfmgr/internal/volume"
)

// FileSystemVault keeps archived volumes below a root directory, one file
// per key:
//
//	<root>/
//	  runs/
//	    <runID>/
//	      volume_001.pdf
type FileSystemVault struct {
	name string
	root string
}

// NewFileSystemVault creates a filesystem archive rooted at root, creating
// the directory if needed.
func NewFileSystemVault(name, root string) (*FileSystemVault, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive root: %w", err)
	}
	return &FileSystemVault{name: name, root: root}, nil
}

func (v *FileSystemVault) pathFor(key string) string {
	return filepath.Join(v.root, filepath.FromSlash(key))
}

// Put stores r under key with an atomic write (temp file + rename).
func (v *FileSystemVault) Put(ctx context.Context, key string, r io.Reader) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dest := v.pathFor(key)
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Get writes the object stored under key to w.
func (v *FileSystemVault) Get(_ context.Context, key string, w io.Writer) error {
	if err := validateKey(key); err != nil {
		return err
	}

	f, err := os.Open(v.pathFor(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return notFound(v.name, key)
		}
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	return nil
}

// ValidateSetup verifies that the root is a writable directory.
func (v *FileSystemVault) ValidateSetup(context.Context) error {
	info, err := os.Stat(v.root)
	if err != nil {
		return fmt.Errorf("archive root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: archive root is not a directory: %s", volume.ErrConfig, v.root)
	}

	probe, err := os.CreateTemp(v.root, ".probe-*")
	if err != nil {
		return fmt.Errorf("archive root not writable: %w", err)
	}
	probe.Close()
	return os.Remove(probe.Name())
}

var _ volume.Archive = (*FileSystemVault)(nil)
