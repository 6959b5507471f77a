package volume

import (
	"context"
	"fmt"
	"path/filepath"
)

// Outcome is the result of committing one batch.
type Outcome struct {
	Volume    int
	Name      string
	Path      string
	Size      int64
	FileCount int
	Status    VolumeStatus
	Err       error
}

// Committer turns approved batches into volume files in an output directory.
type Committer struct {
	merger    Merger
	fsmgr     FilesystemManager
	logger    Logger
	outputDir string
	level     *Level
}

// NewCommitter creates a Committer writing into outputDir. level may be nil.
func NewCommitter(merger Merger, fsmgr FilesystemManager, logger Logger, outputDir string, level *Level) *Committer {
	return &Committer{
		merger:    merger,
		fsmgr:     fsmgr,
		logger:    logger,
		outputDir: outputDir,
		level:     level,
	}
}

// Commit merges the files of b into its volume file. An empty batch is a
// no-op reported as skipped. Merge errors are returned in the Outcome, never
// as a panic or a run-level error, so the caller can continue with the next
// batch.
func (c *Committer) Commit(ctx context.Context, b *Batch) Outcome {
	out := filepath.Join(c.outputDir, b.Name)
	o := Outcome{
		Volume:    b.Volume,
		Name:      b.Name,
		Path:      out,
		FileCount: len(b.Files),
	}

	if b.Empty() {
		o.Status = VolumeSkipped
		return o
	}

	if err := c.merger.Merge(ctx, Paths(b.Files), out, c.level); err != nil {
		c.logger.Error("volume failed", "volume", b.Volume, "path", out, "error", err)
		o.Status = VolumeFailed
		o.Err = fmt.Errorf("creating %s: %w", b.Name, err)
		return o
	}

	info, err := c.fsmgr.Stat(out)
	if err != nil {
		c.logger.Error("volume written but not readable", "volume", b.Volume, "path", out, "error", err)
		o.Status = VolumeFailed
		o.Err = fmt.Errorf("stat %s: %w", b.Name, err)
		return o
	}

	o.Size = info.Size()
	o.Status = VolumeCommitted
	c.logger.Info("volume created", "volume", b.Volume, "path", out, "files", o.FileCount, "size", o.Size)
	return o
}
