package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"pdfmgr/internal/volume"
)

// MergeCall records one call to StubMerger.Merge.
type MergeCall struct {
	Paths []string
	Out   string
	Level *volume.Level
}

// StubMerger writes the newline-joined base names of its inputs into the
// mock filesystem instead of producing a real PDF.
type StubMerger struct {
	fsmgr *MockFilesystemManager
	fail  map[string]error // output base name -> error
	Calls []MergeCall
}

// NewStubMerger creates a StubMerger writing into fsmgr.
func NewStubMerger(fsmgr *MockFilesystemManager) *StubMerger {
	return &StubMerger{fsmgr: fsmgr, fail: make(map[string]error)}
}

// FailOn makes merges into an output with the given base name fail with err.
func (s *StubMerger) FailOn(name string, err error) {
	s.fail[name] = err
}

func (s *StubMerger) Merge(_ context.Context, paths []string, out string, level *volume.Level) error {
	s.Calls = append(s.Calls, MergeCall{Paths: append([]string{}, paths...), Out: out, Level: level})

	if err, ok := s.fail[filepath.Base(out)]; ok {
		return err
	}
	names := make([]string, len(paths))
	for i, p := range paths {
		if !s.fsmgr.Exists(p) {
			return fmt.Errorf("%w: input file not found: %s", volume.ErrNotFound, p)
		}
		names[i] = filepath.Base(p)
	}
	s.fsmgr.AddFile(out, []byte(strings.Join(names, "\n")))
	return nil
}

// MergedNames returns the input base names recorded in a stub volume.
func (s *StubMerger) MergedNames(out string) []string {
	content, ok := s.fsmgr.Content(out)
	if !ok {
		return nil
	}
	return strings.Split(string(content), "\n")
}

var _ volume.Merger = (*StubMerger)(nil)
