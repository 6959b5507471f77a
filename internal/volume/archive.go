package volume

import (
	"context"
	"fmt"
	"io"
	"path"
)

// Archive provides an interface for off-site copies of committed volumes.
// All operations stream through io.Reader/io.Writer so large volumes are
// never held in memory by the caller.
type Archive interface {
	// Put stores the content read from r under key, replacing any existing object.
	Put(ctx context.Context, key string, r io.Reader) error

	// Get writes the object stored under key to w.
	Get(ctx context.Context, key string, w io.Writer) error

	// ValidateSetup verifies that the archive is accessible and properly configured.
	ValidateSetup(ctx context.Context) error
}

// ArchiveKey returns the archive key of a volume produced by a run.
func ArchiveKey(runID, name string) string {
	return path.Join("runs", runID, name)
}

// Archiver copies committed volumes into an Archive, encrypting them when an
// Encryptor is configured.
type Archiver struct {
	archive   Archive
	fsmgr     FilesystemManager
	encryptor Encryptor
	logger    Logger
}

// NewArchiver creates an Archiver. encryptor may be nil for plaintext copies.
func NewArchiver(archive Archive, fsmgr FilesystemManager, encryptor Encryptor, logger Logger) *Archiver {
	return &Archiver{
		archive:   archive,
		fsmgr:     fsmgr,
		encryptor: encryptor,
		logger:    logger,
	}
}

// Encrypted reports whether stored volumes are encrypted.
func (a *Archiver) Encrypted() bool {
	return a.encryptor != nil
}

// Store copies the volume file at volumePath into the archive.
func (a *Archiver) Store(ctx context.Context, runID, volumePath string) error {
	f, err := a.fsmgr.Open(volumePath)
	if err != nil {
		return fmt.Errorf("opening volume: %w", err)
	}
	defer f.Close()

	key := ArchiveKey(runID, path.Base(volumePath))

	var r io.Reader = f
	if a.encryptor != nil {
		pr, pw := io.Pipe()
		go func() {
			pw.CloseWithError(a.encryptor.Encrypt(f, pw))
		}()
		defer pr.Close()
		r = pr
	}

	if err := a.archive.Put(ctx, key, r); err != nil {
		return fmt.Errorf("uploading %s: %w", key, err)
	}

	a.logger.Info("volume archived", "key", key, "encrypted", a.Encrypted())
	return nil
}

// Fetch writes an archived volume to w. dec must be non-nil when the volume
// was stored encrypted.
func (a *Archiver) Fetch(ctx context.Context, runID, name string, dec DecryptionContext, w io.Writer) error {
	key := ArchiveKey(runID, name)
	if dec == nil {
		if err := a.archive.Get(ctx, key, w); err != nil {
			return fmt.Errorf("downloading %s: %w", key, err)
		}
		return nil
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(a.archive.Get(ctx, key, pw))
	}()
	defer pr.Close()

	if err := dec.Decrypt(pr, w); err != nil {
		return fmt.Errorf("decrypting %s: %w", key, err)
	}
	return nil
}
