package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFileName is the per-directory file listing input PDFs to leave out
// of a walk, one glob per line.
const IgnoreFileName = ".pdfignore"

// IgnoreMatcher checks file names against a set of glob patterns.
// Listings are not recursive, so patterns always match the base name.
type IgnoreMatcher struct {
	patterns []string
}

// NewIgnoreMatcher creates an IgnoreMatcher from raw pattern strings.
// Blank lines and lines starting with '#' are skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	var patterns []string
	for _, raw := range rawPatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		patterns = append(patterns, raw)
	}
	return &IgnoreMatcher{patterns: patterns}
}

// With returns a matcher holding the patterns of m plus rawPatterns.
func (m *IgnoreMatcher) With(rawPatterns []string) *IgnoreMatcher {
	extra := NewIgnoreMatcher(rawPatterns)
	return &IgnoreMatcher{patterns: append(append([]string{}, m.patterns...), extra.patterns...)}
}

// Match reports whether a file with the given name should be ignored.
func (m *IgnoreMatcher) Match(name string) bool {
	base := filepath.Base(name)
	for _, p := range m.patterns {
		matched, err := filepath.Match(p, base)
		if err != nil {
			// Bad pattern: skip it.
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

// ParseIgnoreFile returns the lines of the ignore file at path, or nil when
// there is none.
func ParseIgnoreFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	text := strings.TrimRight(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	return strings.Split(text, "\n"), nil
}
