package vault

import (
	"context"
	"fmt"

	"pdfmgr/internal/config"
	"pdfmgr/internal/volume"
)

// NewArchiveFromConfig creates the archive backend named by cfg.Type.
// Type "none" (or empty) disables archiving and returns a nil Archive.
func NewArchiveFromConfig(ctx context.Context, cfg config.ArchiveConfig) (volume.Archive, error) {
	name := cfg.Name
	if name == "" {
		name = cfg.Type
	}

	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemoryVault(name), nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("%w: filesystem archive requires fs_root to be set", volume.ErrConfig)
		}
		v, err := NewFileSystemVault(name, cfg.FSRoot)
		if err != nil {
			return nil, err
		}
		return v, nil
	case "s3":
		cfg.Name = name
		v, err := NewS3Vault(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%w: unknown archive type: %s", volume.ErrConfig, cfg.Type)
	}
}
