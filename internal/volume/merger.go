package volume

import "context"

// Merger joins PDFs into one output file. It is implemented by the PDF
// backend.
type Merger interface {
	// Merge writes a single PDF at out containing the pages of each path in
	// order. Missing paths fail with ErrNotFound, non-PDF paths with
	// ErrInvalidInput, and write failures with ErrIO. When level is non-nil
	// the merged file is recompressed at that level.
	Merge(ctx context.Context, paths []string, out string, level *Level) error
}
