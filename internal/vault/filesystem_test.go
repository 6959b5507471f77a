package vault

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pdfmgr/internal/volume"
)

func TestFileSystemVault(t *testing.T) {
	archiveTests(t, func(t *testing.T) volume.Archive {
		v, err := NewFileSystemVault("test", filepath.Join(t.TempDir(), "archive"))
		if err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}
		return v
	})
}

func TestFileSystemVault_Layout(t *testing.T) {
	root := filepath.Join(t.TempDir(), "archive")
	v, err := NewFileSystemVault("test", root)
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}

	if err := v.Put(context.Background(), "runs/run-7/volume_003.pdf", strings.NewReader("pdf")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	want := filepath.Join(root, "runs", "run-7", "volume_003.pdf")
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("archived file not at %s: %v", want, err)
	}
	if string(data) != "pdf" {
		t.Errorf("content = %q, want %q", data, "pdf")
	}

	entries, err := os.ReadDir(filepath.Dir(want))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("archive directory holds %d entries, want only the volume (temp file left behind?)", len(entries))
	}
}

func TestFileSystemVault_PutCancelled(t *testing.T) {
	v, err := NewFileSystemVault("test", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := v.Put(ctx, "runs/r/volume_001.pdf", strings.NewReader("x")); err == nil {
		t.Error("Put() with cancelled context succeeded")
	}
}

func TestFileSystemVault_ValidateSetup_RootIsFile(t *testing.T) {
	dir := t.TempDir()
	v, err := NewFileSystemVault("test", dir)
	if err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(dir, "plain")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	v.root = file

	if err := v.ValidateSetup(context.Background()); err == nil {
		t.Error("ValidateSetup() on a file root succeeded")
	}
}
