package encryption

import (
	"bytes"
	"testing"
)

func TestTestEncryptor_RoundTrip(t *testing.T) {
	t.Parallel()

	e := NewTestEncryptor()
	input := []byte("%PDF-1.4 merged volume")

	var sealed bytes.Buffer
	if err := e.Encrypt(bytes.NewReader(input), &sealed); err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if !bytes.HasPrefix(sealed.Bytes(), testMagic) {
		t.Error("encrypted output lacks test header")
	}
	if bytes.Equal(sealed.Bytes(), input) {
		t.Error("encrypted output equals input")
	}

	dc, err := e.Unlock("anything")
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	var plain bytes.Buffer
	if err := dc.Decrypt(&sealed, &plain); err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if !bytes.Equal(plain.Bytes(), input) {
		t.Errorf("round trip = %q, want %q", plain.Bytes(), input)
	}
}

func TestTestEncryptor_SetupPassphrase(t *testing.T) {
	t.Parallel()

	e := NewTestEncryptor()
	if err := e.Setup("secret"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if _, err := e.Unlock("other"); err == nil {
		t.Error("Unlock() with wrong passphrase succeeded")
	}
	if _, err := e.Unlock("secret"); err != nil {
		t.Errorf("Unlock() error = %v", err)
	}
}

func TestTestDecryptionContext_BadHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "plaintext", input: []byte("%PDF-1.4 not sealed")},
		{name: "short", input: []byte("PM")},
		{name: "empty", input: nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			if err := (&TestDecryptionContext{}).Decrypt(bytes.NewReader(tt.input), &out); err == nil {
				t.Error("Decrypt() succeeded on data without header")
			}
		})
	}
}
