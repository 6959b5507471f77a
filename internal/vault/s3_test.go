package vault

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"pdfmgr/internal/config"
	"pdfmgr/internal/volume"
)

// fakeS3 is a path-style object store serving the handful of requests the
// archive makes.
type fakeS3 struct {
	bucket  string
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")
	bucket, key, _ := strings.Cut(path, "/")
	if bucket != f.bucket {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodHead && key == "":
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		f.objects[key] = data
		w.Header().Set("ETag", `"fake"`)
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet:
		data, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(data)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newFakeS3Vault(t *testing.T, prefix string) (*S3Vault, *fakeS3) {
	t.Helper()
	fake := &fakeS3{bucket: "volumes", objects: make(map[string][]byte)}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	v, err := NewS3Vault(context.Background(), config.ArchiveConfig{
		Type:              "s3",
		Name:              "offsite",
		S3Bucket:          "volumes",
		S3Prefix:          prefix,
		S3Region:          "us-east-1",
		S3Endpoint:        srv.URL,
		S3AccessKeyID:     "test-access-key",
		S3SecretAccessKey: "test-secret-key",
	})
	if err != nil {
		t.Fatalf("NewS3Vault() error = %v", err)
	}
	return v, fake
}

func TestS3Vault_ObjectKey(t *testing.T) {
	tests := []struct {
		prefix, key, want string
	}{
		{"", "runs/r1/volume_001.pdf", "runs/r1/volume_001.pdf"},
		{"pdfmgr", "runs/r1/volume_001.pdf", "pdfmgr/runs/r1/volume_001.pdf"},
		{"backups/pdf/", "runs/r1/volume_001.pdf", "backups/pdf/runs/r1/volume_001.pdf"},
	}
	for _, tt := range tests {
		v := &S3Vault{prefix: tt.prefix}
		if got := v.objectKey(tt.key); got != tt.want {
			t.Errorf("objectKey(%q) with prefix %q = %q, want %q", tt.key, tt.prefix, got, tt.want)
		}
	}
}

func TestS3Vault_PutGet(t *testing.T) {
	v, fake := newFakeS3Vault(t, "pdfmgr")
	ctx := context.Background()

	content := "%PDF-1.4 archived volume"
	if err := v.Put(ctx, "runs/r1/volume_001.pdf", strings.NewReader(content)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, ok := fake.objects["pdfmgr/runs/r1/volume_001.pdf"]; !ok {
		t.Fatalf("object not stored under prefixed key, have %v", fake.objects)
	}

	var buf bytes.Buffer
	if err := v.Get(ctx, "runs/r1/volume_001.pdf", &buf); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if buf.String() != content {
		t.Errorf("Get() = %q, want %q", buf.String(), content)
	}
}

func TestS3Vault_GetMissing(t *testing.T) {
	v, _ := newFakeS3Vault(t, "")

	var buf bytes.Buffer
	err := v.Get(context.Background(), "runs/r1/volume_404.pdf", &buf)
	if !errors.Is(err, volume.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestS3Vault_ValidateSetup(t *testing.T) {
	v, _ := newFakeS3Vault(t, "")
	if err := v.ValidateSetup(context.Background()); err != nil {
		t.Errorf("ValidateSetup() error = %v", err)
	}

	v.bucket = "other"
	if err := v.ValidateSetup(context.Background()); err == nil {
		t.Error("ValidateSetup() for unknown bucket succeeded")
	}
}
