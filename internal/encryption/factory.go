package encryption

import (
	"fmt"

	"pdfmgr/internal/config"
	"pdfmgr/internal/volume"
)

// NewEncryptorFromConfig creates the archive Encryptor named by cfg.Type.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (volume.Encryptor, error) {
	switch cfg.Type {
	case "age", "":
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("%w: unknown encryption type: %q", volume.ErrConfig, cfg.Type)
	}
}
