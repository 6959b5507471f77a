package encryption

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pdfmgr/internal/config"
	"pdfmgr/internal/volume"
)

func newTestAgeEncryptor(t *testing.T) *AgeEncryptor {
	t.Helper()
	dir := t.TempDir()
	return NewAgeEncryptor(config.EncryptionConfig{
		PublicKeyPath:  filepath.Join(dir, "keys", "archive.pub"),
		PrivateKeyPath: filepath.Join(dir, "keys", "archive.key"),
	})
}

func TestAgeEncryptor_Setup(t *testing.T) {
	t.Parallel()
	e := newTestAgeEncryptor(t)

	if e.IsConfigured() {
		t.Fatal("IsConfigured() = true before Setup, want false")
	}
	if err := e.Setup("volume-passphrase"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if !e.IsConfigured() {
		t.Error("IsConfigured() = false after Setup, want true")
	}

	info, err := os.Stat(e.identityPath)
	if err != nil {
		t.Fatalf("stat private key: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("private key permissions = %o, want 600", perm)
	}
}

func TestAgeEncryptor_SetupRefusesToOverwrite(t *testing.T) {
	t.Parallel()
	e := newTestAgeEncryptor(t)
	if err := e.Setup("first"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	before, _ := os.ReadFile(e.recipientPath)

	err := e.Setup("second")
	if !errors.Is(err, volume.ErrConfig) {
		t.Fatalf("second Setup() error = %v, want ErrConfig", err)
	}
	after, _ := os.ReadFile(e.recipientPath)
	if !bytes.Equal(before, after) {
		t.Error("public key changed after refused Setup")
	}
}

func TestAgeEncryptor_SetupEmptyPassphrase(t *testing.T) {
	t.Parallel()
	e := newTestAgeEncryptor(t)
	if err := e.Setup(""); !errors.Is(err, volume.ErrInvalidInput) {
		t.Errorf("Setup(\"\") error = %v, want ErrInvalidInput", err)
	}
	if e.IsConfigured() {
		t.Error("IsConfigured() = true after rejected Setup")
	}
}

func TestAgeEncryptor_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "small volume", input: []byte("%PDF-1.4 volume_001")},
		{name: "empty", input: []byte{}},
		{name: "binary", input: []byte{0x00, 0xff, 0x01, 0xfe}},
		{name: "multi chunk", input: bytes.Repeat([]byte("stream endstream "), 8000)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := newTestAgeEncryptor(t)
			if err := e.Setup("pw"); err != nil {
				t.Fatalf("Setup() error = %v", err)
			}

			var sealed bytes.Buffer
			if err := e.Encrypt(bytes.NewReader(tt.input), &sealed); err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if len(tt.input) > 0 && bytes.Contains(sealed.Bytes(), tt.input) {
				t.Error("ciphertext contains the plaintext")
			}

			dc, err := e.Unlock("pw")
			if err != nil {
				t.Fatalf("Unlock() error = %v", err)
			}
			var plain bytes.Buffer
			if err := dc.Decrypt(&sealed, &plain); err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(plain.Bytes(), tt.input) {
				t.Errorf("round trip: got %d bytes, want %d", plain.Len(), len(tt.input))
			}
		})
	}
}

func TestAgeEncryptor_UnlockWrongPassphrase(t *testing.T) {
	t.Parallel()
	e := newTestAgeEncryptor(t)
	if err := e.Setup("right"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if _, err := e.Unlock("wrong"); err == nil {
		t.Error("Unlock() with wrong passphrase succeeded")
	}
}

func TestAgeEncryptor_BeforeSetup(t *testing.T) {
	t.Parallel()
	e := newTestAgeEncryptor(t)

	var buf bytes.Buffer
	if err := e.Encrypt(bytes.NewReader([]byte("data")), &buf); !errors.Is(err, volume.ErrConfig) {
		t.Errorf("Encrypt() error = %v, want ErrConfig", err)
	}
	if _, err := e.Unlock("pw"); !errors.Is(err, volume.ErrConfig) {
		t.Errorf("Unlock() error = %v, want ErrConfig", err)
	}
}

func TestNewEncryptorFromConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ     string
		wantErr bool
	}{
		{typ: ""},
		{typ: "age"},
		{typ: "test"},
		{typ: "rot13", wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.typ, func(t *testing.T) {
			t.Parallel()
			enc, err := NewEncryptorFromConfig(config.EncryptionConfig{Type: tt.typ})
			if tt.wantErr {
				if !errors.Is(err, volume.ErrConfig) {
					t.Errorf("error = %v, want ErrConfig", err)
				}
				return
			}
			if err != nil || enc == nil {
				t.Errorf("NewEncryptorFromConfig(%q) = %v, %v", tt.typ, enc, err)
			}
		})
	}
}
