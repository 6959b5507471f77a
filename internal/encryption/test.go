package encryption

import (
	"bytes"
	"fmt"
	"io"

	"pdfmgr/internal/volume"
)

// testMagic marks data "encrypted" by TestEncryptor.
var testMagic = []byte("PMVOL\x00\x01\x00")

// TestEncryptor is a deterministic, reversible stand-in for AgeEncryptor.
// It wraps data in a magic prefix so archived bytes differ from the volume
// on disk, and it tracks Setup so key commands can be tested without crypto.
type TestEncryptor struct {
	configured bool
	passphrase string
}

var _ volume.Encryptor = (*TestEncryptor)(nil)

// NewTestEncryptor creates a TestEncryptor that is already configured.
func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{configured: true}
}

func (e *TestEncryptor) Setup(passphrase string) error {
	if passphrase == "" {
		return fmt.Errorf("%w: passphrase must not be empty", volume.ErrInvalidInput)
	}
	e.passphrase = passphrase
	e.configured = true
	return nil
}

func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := w.Write(testMagic); err != nil {
		return fmt.Errorf("writing test header: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

// Unlock accepts any passphrase unless Setup recorded one.
func (e *TestEncryptor) Unlock(passphrase string) (volume.DecryptionContext, error) {
	if e.passphrase != "" && passphrase != e.passphrase {
		return nil, fmt.Errorf("decrypting private key (wrong passphrase?)")
	}
	return &TestDecryptionContext{}, nil
}

func (e *TestEncryptor) IsConfigured() bool {
	return e.configured
}

// TestDecryptionContext removes the prefix added by TestEncryptor.
type TestDecryptionContext struct{}

var _ volume.DecryptionContext = (*TestDecryptionContext)(nil)

func (c *TestDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	header := make([]byte, len(testMagic))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading test header: %w", err)
	}
	if !bytes.Equal(header, testMagic) {
		return fmt.Errorf("invalid test encryption header")
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}
