package volume

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
)

// WalkRequest describes one walk: where to read, where to write, and how to
// order, batch, name and compress the volumes.
type WalkRequest struct {
	InputDir    string
	OutputDir   string
	Order       Order
	BatchSize   int
	Naming      Naming
	Compression *Level
	Interactive bool
	Archive     bool
}

// Service is the orchestration layer of the walk workflow. It sorts, plans,
// reviews and commits batches, and records what happened.
type Service struct {
	fsmgr    FilesystemManager
	merger   Merger
	history  History
	archiver *Archiver
	logger   Logger
	clock    Clock
	idgen    IDGenerator
}

// NewService creates a Service with the provided dependencies.
// history and archiver may be nil; runs are then neither recorded nor archived.
func NewService(fsmgr FilesystemManager, merger Merger, history History, archiver *Archiver, logger Logger, clock Clock, idgen IDGenerator) *Service {
	return &Service{
		fsmgr:    fsmgr,
		merger:   merger,
		history:  history,
		archiver: archiver,
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
	}
}

// Walk batches the PDFs directly inside req.InputDir into volumes in
// req.OutputDir. Progress and prompts go through p; p is only read from when
// req.Interactive is set.
//
// Bad parameters fail before the output directory is created. A directory
// without PDFs returns a nil summary and no error. A failed volume is
// recorded in the summary and the walk continues. Quitting during review
// returns the summary of the volumes committed so far.
func (s *Service) Walk(ctx context.Context, req WalkRequest, p Prompter) (*RunSummary, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	if err := s.fsmgr.MkdirAll(req.OutputDir); err != nil {
		return nil, fmt.Errorf("creating output directory: %w: %w", ErrIO, err)
	}

	entries, err := s.fsmgr.ListPDFs(req.InputDir)
	if err != nil {
		return nil, fmt.Errorf("listing input directory: %w", err)
	}
	if len(entries) == 0 {
		writef(p, "No PDF files found in %s", req.InputDir)
		s.logger.Info("no pdf files found", "dir", req.InputDir)
		return nil, nil
	}

	SortEntries(entries, req.Order)
	batches, err := Plan(entries, req.BatchSize, req.Naming)
	if err != nil {
		return nil, err
	}

	summary := &RunSummary{
		RunID:          s.idgen.New(),
		InputDir:       req.InputDir,
		OutputDir:      req.OutputDir,
		TotalFiles:     len(entries),
		PlannedVolumes: len(batches),
		Compression:    req.Compression,
	}
	s.startRun(req, summary)
	s.logger.Info("walk started", "run", summary.RunID, "files", summary.TotalFiles, "volumes", summary.PlannedVolumes)

	writeHeader(p, req, len(entries), len(batches))

	var reviewer *Reviewer
	if req.Interactive {
		reviewer = NewReviewer(p, s.logger)
	}
	committer := NewCommitter(s.merger, s.fsmgr, s.logger, req.OutputDir, req.Compression)

	for _, b := range batches {
		if err := ctx.Err(); err != nil {
			s.finishRun(summary, RunError)
			return summary, fmt.Errorf("walk stopped before volume %d: %w", b.Volume, err)
		}

		writeBatch(p, b)

		if reviewer != nil {
			decision, err := reviewer.Review(b)
			if err != nil {
				s.finishRun(summary, RunError)
				return summary, fmt.Errorf("reviewing volume %d: %w", b.Volume, err)
			}
			if decision == Quit {
				summary.Quit = true
				writeQuitSummary(p, summary)
				s.finishRun(summary, RunQuit)
				return summary, nil
			}
		}

		o := committer.Commit(ctx, b)
		summary.add(o)

		archived := false
		switch o.Status {
		case VolumeCommitted:
			writef(p, "  ✓ Volume created: %s", FormatBytes(o.Size))
			if req.Archive {
				archived = s.archive(ctx, p, summary.RunID, o.Path)
				summary.Volumes[len(summary.Volumes)-1].Archived = archived
			}
		case VolumeFailed:
			writef(p, "  ✗ Error creating volume: %v", o.Err)
		}
		s.recordVolume(summary.RunID, o, archived)
		p.WriteLine("")
	}

	writeSummary(p, summary)
	s.finishRun(summary, summary.Status())
	s.logger.Info("walk finished", "run", summary.RunID, "created", len(summary.Volumes), "failed", len(summary.Failures))
	return summary, nil
}

// validate performs the pre-flight checks. Nothing is written before they pass.
func (s *Service) validate(req WalkRequest) error {
	info, err := s.fsmgr.Stat(req.InputDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: input directory not found: %s", ErrNotFound, req.InputDir)
		}
		return fmt.Errorf("stat input directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: path is not a directory: %s", ErrConfig, req.InputDir)
	}
	if err := req.Order.Validate(); err != nil {
		return err
	}
	if req.BatchSize < 1 {
		return fmt.Errorf("%w: batch size must be at least 1, got %d", ErrConfig, req.BatchSize)
	}
	if req.OutputDir == "" {
		return fmt.Errorf("%w: output directory is required", ErrConfig)
	}
	if req.Archive && s.archiver == nil {
		return fmt.Errorf("%w: archiving requested but no archive is configured", ErrConfig)
	}
	return nil
}

// archive copies a committed volume to the archive. Failures are reported
// and logged but never fail the volume, which already exists locally.
func (s *Service) archive(ctx context.Context, c Console, runID, path string) bool {
	if err := s.archiver.Store(ctx, runID, path); err != nil {
		s.logger.Warn("archiving volume failed", "path", path, "error", err)
		writef(c, "  ! Archive failed: %v", err)
		return false
	}
	c.WriteLine("  ✓ Volume archived")
	return true
}

// History bookkeeping never fails a walk: the volumes on disk are the
// result, the run record is a convenience.

func (s *Service) startRun(req WalkRequest, summary *RunSummary) {
	if s.history == nil {
		return
	}
	run := &Run{
		ID:             summary.RunID,
		StartedAt:      s.clock.Now(),
		InputDir:       req.InputDir,
		OutputDir:      req.OutputDir,
		Order:          req.Order,
		BatchSize:      req.BatchSize,
		Status:         RunRunning,
		TotalFiles:     summary.TotalFiles,
		PlannedVolumes: summary.PlannedVolumes,
	}
	if req.Compression != nil {
		run.Compression = req.Compression.String()
	}
	if err := s.history.CreateRun(run); err != nil {
		s.logger.Warn("recording run failed", "run", run.ID, "error", err)
	}
}

func (s *Service) recordVolume(runID string, o Outcome, archived bool) {
	if s.history == nil {
		return
	}
	rec := &VolumeRecord{
		RunID:     runID,
		Volume:    o.Volume,
		Name:      o.Name,
		Path:      o.Path,
		Size:      o.Size,
		FileCount: o.FileCount,
		Status:    o.Status,
		Archived:  archived,
		Encrypted: archived && s.archiver.Encrypted(),
	}
	if o.Err != nil {
		rec.Error = o.Err.Error()
	}
	if err := s.history.RecordVolume(rec); err != nil {
		s.logger.Warn("recording volume failed", "run", runID, "volume", o.Volume, "error", err)
	}
}

func (s *Service) finishRun(summary *RunSummary, status RunStatus) {
	if s.history == nil {
		return
	}
	if err := s.history.FinishRun(summary.RunID, status, s.clock.Now()); err != nil {
		s.logger.Warn("finishing run failed", "run", summary.RunID, "error", err)
	}
}

// GetHistory returns the most recent runs, newest first.
func (s *Service) GetHistory(limit int) ([]*Run, error) {
	if s.history == nil {
		return nil, fmt.Errorf("%w: no history database configured", ErrConfig)
	}
	runs, err := s.history.ListRuns(limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// GetRunVolumes returns the recorded volumes of a run.
func (s *Service) GetRunVolumes(runID string) ([]*VolumeRecord, error) {
	if s.history == nil {
		return nil, fmt.Errorf("%w: no history database configured", ErrConfig)
	}
	vols, err := s.history.ListVolumes(runID)
	if err != nil {
		return nil, fmt.Errorf("listing volumes: %w", err)
	}
	return vols, nil
}
