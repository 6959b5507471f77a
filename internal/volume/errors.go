package volume

import "errors"

// Error classes. Callers wrap these with fmt.Errorf("...: %w", Err...) and
// test for them with errors.Is.
var (
	// ErrConfig marks a bad walk parameter (order, batch size, input path
	// kind). It is raised before anything is written.
	ErrConfig = errors.New("invalid configuration")

	// ErrNotFound marks a missing input directory or input file.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput marks an input that exists but cannot be processed,
	// such as a file without a .pdf extension or an unknown compression level.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIO marks a filesystem write failure for a single output.
	ErrIO = errors.New("i/o failure")
)
