package testutil

import (
	"pdfmgr/internal/encryption"
	"pdfmgr/internal/volume"
)

// NewTestEncryptor creates a new test encryptor for testing.
func NewTestEncryptor() volume.Encryptor {
	return encryption.NewTestEncryptor()
}
