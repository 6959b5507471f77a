package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewIgnoreMatcher(t *testing.T) {
	t.Run("skips blank lines and comments", func(t *testing.T) {
		t.Parallel()
		m := NewIgnoreMatcher([]string{"", "  ", "# comment", "draft-*.pdf"})
		if len(m.patterns) != 1 {
			t.Fatalf("expected 1 pattern, got %d", len(m.patterns))
		}
		if m.patterns[0] != "draft-*.pdf" {
			t.Errorf("expected draft-*.pdf, got %s", m.patterns[0])
		}
	})

	t.Run("With does not mutate the receiver", func(t *testing.T) {
		t.Parallel()
		m := NewIgnoreMatcher([]string{"a.pdf"})
		m2 := m.With([]string{"b.pdf"})
		if len(m.patterns) != 1 {
			t.Errorf("original patterns modified: got %d, want 1", len(m.patterns))
		}
		if len(m2.patterns) != 2 {
			t.Errorf("combined patterns: got %d, want 2", len(m2.patterns))
		}
	})
}

func TestIgnoreMatcher_Match(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		file     string
		want     bool
	}{
		{name: "glob matches", patterns: []string{"draft-*"}, file: "draft-Chap 1.pdf", want: true},
		{name: "glob does not match", patterns: []string{"draft-*"}, file: "Chap 1.pdf", want: false},
		{name: "exact name", patterns: []string{"cover.pdf"}, file: "cover.pdf", want: true},
		{name: "full path uses base name", patterns: []string{"cover.pdf"}, file: filepath.Join("in", "cover.pdf"), want: true},
		{name: "no patterns", patterns: nil, file: "cover.pdf", want: false},
		{name: "bad pattern is skipped", patterns: []string{"[", "cover.pdf"}, file: "cover.pdf", want: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := NewIgnoreMatcher(tt.patterns)
			if got := m.Match(tt.file); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.file, got, tt.want)
			}
		})
	}
}

func TestParseIgnoreFile(t *testing.T) {
	t.Run("missing file returns nil", func(t *testing.T) {
		t.Parallel()
		patterns, err := ParseIgnoreFile(filepath.Join(t.TempDir(), IgnoreFileName))
		if err != nil {
			t.Fatalf("ParseIgnoreFile() error = %v", err)
		}
		if patterns != nil {
			t.Errorf("expected nil, got %v", patterns)
		}
	})

	t.Run("reads lines", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), IgnoreFileName)
		if err := os.WriteFile(path, []byte("# scans to skip\ncover.pdf\n\nextra-*.pdf\n"), 0644); err != nil {
			t.Fatal(err)
		}
		patterns, err := ParseIgnoreFile(path)
		if err != nil {
			t.Fatalf("ParseIgnoreFile() error = %v", err)
		}
		if len(patterns) != 4 {
			t.Fatalf("expected 4 raw lines, got %d: %v", len(patterns), patterns)
		}
	})
}
