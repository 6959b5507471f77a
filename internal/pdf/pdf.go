// Package pdf implements merging and compression of PDF files on top of
// pdfcpu. It is the backend behind volume.Merger and the merge and compress
// commands.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"pdfmgr/internal/volume"
)

// Backend merges and compresses PDF files with pdfcpu.
type Backend struct {
	logger volume.Logger
}

// NewBackend creates a Backend. pdfcpu is kept from reading or creating its
// own configuration directory.
func NewBackend(logger volume.Logger) *Backend {
	model.ConfigPath = "disable"
	return &Backend{logger: logger}
}

// CompressResult reports the effect of a compression.
type CompressResult struct {
	Level          volume.Level
	OriginalSize   int64
	CompressedSize int64
}

// Ratio returns the size reduction in percent. It is negative when the
// output grew.
func (r *CompressResult) Ratio() float64 {
	if r.OriginalSize == 0 {
		return 0
	}
	return (1 - float64(r.CompressedSize)/float64(r.OriginalSize)) * 100
}

// Merge writes a single PDF at out holding the pages of paths in order.
// When level is non-nil the merged document is optimized at that level
// before it is moved into place. out is never left half-written.
func (b *Backend) Merge(ctx context.Context, paths []string, out string, level *volume.Level) error {
	if len(paths) == 0 {
		return fmt.Errorf("%w: no input files", volume.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	conf := newConfiguration(nil)
	for _, p := range paths {
		if err := checkInput(p); err != nil {
			return err
		}
		if err := api.ValidateFile(p, conf); err != nil {
			return fmt.Errorf("%w: invalid PDF %s: %v", volume.ErrInvalidInput, p, err)
		}
	}

	err := writeAtomically(out, func(tmp string) error {
		if level == nil {
			if len(paths) == 1 {
				return copyFile(paths[0], tmp)
			}
			return api.MergeCreateFile(paths, tmp, false, conf)
		}

		merged, err := tempPath(filepath.Dir(out))
		if err != nil {
			return err
		}
		defer os.Remove(merged)

		src := paths[0]
		if len(paths) > 1 {
			if err := api.MergeCreateFile(paths, merged, false, conf); err != nil {
				return err
			}
			src = merged
		}
		return api.OptimizeFile(src, tmp, newConfiguration(level))
	})
	if err != nil {
		return fmt.Errorf("merging into %s: %w", out, err)
	}

	b.logger.Info("merged pdf files", "count", len(paths), "output", out, "compression", levelName(level))
	return nil
}

// Compress rewrites the PDF at in to out, optimized at the given level.
func (b *Backend) Compress(ctx context.Context, in, out string, level volume.Level) (*CompressResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := volume.ParseLevel(level.String()); err != nil {
		return nil, err
	}
	if err := checkInput(in); err != nil {
		return nil, err
	}

	original, err := os.Stat(in)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}

	err = writeAtomically(out, func(tmp string) error {
		return api.OptimizeFile(in, tmp, newConfiguration(&level))
	})
	if err != nil {
		return nil, fmt.Errorf("compressing %s: %w", in, err)
	}

	compressed, err := os.Stat(out)
	if err != nil {
		return nil, fmt.Errorf("%w: stat output: %v", volume.ErrIO, err)
	}

	res := &CompressResult{
		Level:          level,
		OriginalSize:   original.Size(),
		CompressedSize: compressed.Size(),
	}
	b.logger.Info("compressed pdf", "input", in, "output", out, "level", level.String(),
		"original", res.OriginalSize, "compressed", res.CompressedSize)
	return res, nil
}

// PageCount returns the number of pages of the PDF at path.
func (b *Backend) PageCount(path string) (int, error) {
	if err := checkInput(path); err != nil {
		return 0, err
	}
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: counting pages of %s: %v", volume.ErrInvalidInput, path, err)
	}
	return n, nil
}

// newConfiguration returns a pdfcpu configuration that tolerates the small
// format deviations common in scanner output, tuned to level when non-nil.
func newConfiguration(level *volume.Level) *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if level == nil {
		return conf
	}

	s := level.Settings()
	conf.Optimize = true
	conf.WriteObjectStream = s.CompressStreams
	conf.WriteXRefStream = s.CompressStreams
	conf.OptimizeResourceDicts = s.CompressImages
	conf.OptimizeDuplicateContentStreams = *level == volume.LevelAggressive
	return conf
}

// checkInput verifies that path exists, is a file and has a .pdf extension.
func checkInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: input file not found: %s", volume.ErrNotFound, path)
		}
		return fmt.Errorf("%w: stat %s: %v", volume.ErrIO, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: input is a directory: %s", volume.ErrInvalidInput, path)
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return fmt.Errorf("%w: file is not a PDF: %s", volume.ErrInvalidInput, path)
	}
	return nil
}

// writeAtomically runs write against a temp file next to dest and renames
// it into place on success. The temp file is removed on failure.
func writeAtomically(dest string, write func(tmp string) error) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: creating output directory: %v", volume.ErrIO, err)
	}

	tmp, err := tempPath(dir)
	if err != nil {
		return err
	}

	success := false
	defer func() {
		if !success {
			os.Remove(tmp)
		}
	}()

	if err := write(tmp); err != nil {
		return fmt.Errorf("%w: %v", volume.ErrIO, err)
	}

	if err := os.Rename(tmp, dest); err != nil {
		return fmt.Errorf("%w: renaming temp file: %v", volume.ErrIO, err)
	}

	success = true
	return nil
}

// copyFile copies a lone input unchanged; there is nothing to merge.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// tempPath reserves a uniquely named .pdf file in dir and returns its path.
func tempPath(dir string) (string, error) {
	f, err := os.CreateTemp(dir, ".pdfmgr-*.pdf")
	if err != nil {
		return "", fmt.Errorf("%w: creating temp file: %v", volume.ErrIO, err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("%w: closing temp file: %v", volume.ErrIO, err)
	}
	return name, nil
}

func levelName(level *volume.Level) string {
	if level == nil {
		return "none"
	}
	return level.String()
}

// Compile-time check that Backend implements volume.Merger interface
var _ volume.Merger = (*Backend)(nil)
