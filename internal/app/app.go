package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"pdfmgr/internal/config"
	"pdfmgr/internal/database"
	"pdfmgr/internal/encryption"
	"pdfmgr/internal/fs"
	"pdfmgr/internal/pdf"
	"pdfmgr/internal/vault"
	"pdfmgr/internal/volume"
)

// PMApp is the application layer between the CLI and volume.Service.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string paths, and releases resources on Close.
type PMApp struct {
	cfg        *config.Config
	fsmgr      volume.FilesystemManager
	backend    *pdf.Backend
	history    volume.History
	historyErr error
	archive    volume.Archive
	encryptor  volume.Encryptor
	service    *volume.Service
	logger     volume.Logger
	clock      volume.Clock
	op         *Operation
	logFile    *os.File
}

// NewPMApp creates a fully wired PMApp from the given config.
// operation names the CLI command being run (e.g. "Walk", "Merge"); verbose
// mirrors the log to stderr. The caller must call Close when done.
//
// A history database that cannot be opened does not stop the app: walks
// then run unrecorded and only the history commands fail.
func NewPMApp(ctx context.Context, cfg *config.Config, operation string, verbose bool) (*PMApp, error) {
	clock := volume.RealClock{}
	op := NewOperation(operation, clock.Now())

	l, logFile, err := newLogger(cfg.LogDir, op.ID, verbose)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: l}

	a := &PMApp{
		cfg:     cfg,
		fsmgr:   fs.NewOSFilesystemManager(cfg.Filesystem.Ignore),
		backend: pdf.NewBackend(logger),
		logger:  logger,
		clock:   clock,
		op:      op,
		logFile: logFile,
	}

	a.history, a.historyErr = openHistory(cfg.Database)
	if a.historyErr != nil {
		logger.Warn("history database unavailable", "error", a.historyErr)
	}

	a.encryptor, err = encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	a.archive, err = vault.NewArchiveFromConfig(ctx, cfg.Archive)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating archive: %w", err)
	}

	var archiver *volume.Archiver
	if a.archive != nil {
		var enc volume.Encryptor
		if cfg.Archive.Encrypt {
			enc = a.encryptor
		}
		archiver = volume.NewArchiver(a.archive, a.fsmgr, enc, logger)
	}

	a.service = volume.NewService(a.fsmgr, a.backend, a.history, archiver, logger, clock, volume.UUIDGenerator{})
	logger.Info("operation started", "operation", op.Name)
	return a, nil
}

func openHistory(cfg config.DatabaseConfig) (volume.History, error) {
	h, err := database.NewHistoryFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if c, ok := h.(interface{ CheckMigrations() error }); ok {
		if err := c.CheckMigrations(); err != nil {
			h.Close()
			return nil, fmt.Errorf("history database schema out of date: %w", err)
		}
	}
	return h, nil
}

// track marks the operation failed when err is non-nil and returns err.
func (a *PMApp) track(err error) error {
	if err != nil {
		a.op.Fail()
		a.logger.Error("operation failed", "operation", a.op.Name, "error", err)
	}
	return err
}

// WalkOverrides holds walk options given on the command line. Nil fields
// keep the value from the [walk] config section.
type WalkOverrides struct {
	Order       *string
	BatchSize   *int
	Prefix      *string
	Suffix      *string
	Compression *string // "" means no compression
}

// WalkRequest returns a walk request built from the [walk] config section
// with o applied on top. Values are parsed only after the overrides, so a
// bad config value that a flag replaces does not fail the walk.
// Directories are left empty.
func (a *PMApp) WalkRequest(o WalkOverrides) (volume.WalkRequest, error) {
	w := a.cfg.Walk
	if o.Order != nil {
		w.Order = *o.Order
	}
	if o.BatchSize != nil {
		w.BatchSize = *o.BatchSize
	}
	if o.Prefix != nil {
		w.Prefix = *o.Prefix
	}
	if o.Suffix != nil {
		w.Suffix = *o.Suffix
	}
	if o.Compression != nil {
		w.Compression = *o.Compression
	}

	order, err := volume.ParseOrder(w.Order)
	if err != nil {
		return volume.WalkRequest{}, fmt.Errorf("walk order: %w", err)
	}
	req := volume.WalkRequest{
		Order:     order,
		BatchSize: w.BatchSize,
		Naming:    volume.Naming{Prefix: w.Prefix, Suffix: w.Suffix},
	}
	if w.Compression != "" {
		level, err := volume.ParseLevel(w.Compression)
		if err != nil {
			return volume.WalkRequest{}, fmt.Errorf("%w: walk compression: %w", volume.ErrConfig, err)
		}
		req.Compression = &level
	}
	return req, nil
}

// Walk resolves the request's directories and batches the input PDFs into
// volumes. When archiving, the archive and encryption keys are checked
// before anything is written.
func (a *PMApp) Walk(ctx context.Context, req volume.WalkRequest, p volume.Prompter) (*volume.RunSummary, error) {
	var err error
	if req.InputDir, err = absPath(req.InputDir); err != nil {
		return nil, a.track(err)
	}
	if req.OutputDir, err = absPath(req.OutputDir); err != nil {
		return nil, a.track(err)
	}

	if req.Archive && a.archive != nil {
		if err := a.archive.ValidateSetup(ctx); err != nil {
			return nil, a.track(fmt.Errorf("checking archive: %w", err))
		}
		if a.cfg.Archive.Encrypt && !a.encryptor.IsConfigured() {
			return nil, a.track(fmt.Errorf("%w: archive encryption enabled but no keys found: run 'pdfmgr keys init'", volume.ErrConfig))
		}
	}

	summary, err := a.service.Walk(ctx, req, p)
	return summary, a.track(err)
}

// Merge combines inputs, in the given order, into out and returns the page
// count of the result.
func (a *PMApp) Merge(ctx context.Context, inputs []string, out string, level *volume.Level) (int, error) {
	if len(inputs) < 2 {
		return 0, a.track(fmt.Errorf("%w: at least two input files are required", volume.ErrInvalidInput))
	}
	paths := make([]string, len(inputs))
	for i, in := range inputs {
		p, err := absPath(in)
		if err != nil {
			return 0, a.track(err)
		}
		paths[i] = p
	}
	out, err := absPath(out)
	if err != nil {
		return 0, a.track(err)
	}
	if err := a.backend.Merge(ctx, paths, out, level); err != nil {
		return 0, a.track(err)
	}
	pages, err := a.backend.PageCount(out)
	return pages, a.track(err)
}

// Compress rewrites in to out at the given level.
func (a *PMApp) Compress(ctx context.Context, in, out string, level volume.Level) (*pdf.CompressResult, error) {
	in, err := absPath(in)
	if err != nil {
		return nil, a.track(err)
	}
	if out, err = absPath(out); err != nil {
		return nil, a.track(err)
	}
	res, err := a.backend.Compress(ctx, in, out, level)
	return res, a.track(err)
}

// History returns the most recent walk runs, newest first.
func (a *PMApp) History(limit int) ([]*volume.Run, error) {
	if a.historyErr != nil {
		return nil, a.track(a.historyErr)
	}
	runs, err := a.service.GetHistory(limit)
	return runs, a.track(err)
}

// RunVolumes returns the recorded volumes of a run.
func (a *PMApp) RunVolumes(runID string) ([]*volume.VolumeRecord, error) {
	if a.historyErr != nil {
		return nil, a.track(a.historyErr)
	}
	vols, err := a.service.GetRunVolumes(runID)
	return vols, a.track(err)
}

// FetchArchived downloads an archived volume of a run to output. passphrase
// is only asked for when the archived copy is encrypted. output is written
// through a temporary file, so a failed fetch leaves nothing behind.
func (a *PMApp) FetchArchived(ctx context.Context, runID, name, output string, passphrase func() (string, error)) error {
	if a.historyErr != nil {
		return a.track(a.historyErr)
	}
	output, err := absPath(output)
	if err != nil {
		return a.track(err)
	}

	unlock := func() (volume.DecryptionContext, error) {
		pw, err := passphrase()
		if err != nil {
			return nil, fmt.Errorf("reading passphrase: %w", err)
		}
		return a.encryptor.Unlock(pw)
	}

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return a.track(fmt.Errorf("%w: creating output directory: %v", volume.ErrIO, err))
	}
	tmp, err := os.CreateTemp(filepath.Dir(output), ".pdfmgr-fetch-*")
	if err != nil {
		return a.track(fmt.Errorf("%w: creating temp file: %v", volume.ErrIO, err))
	}
	tmpPath := tmp.Name()

	err = a.service.FetchVolume(ctx, runID, name, unlock, tmp)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("%w: closing temp file: %v", volume.ErrIO, cerr)
	}
	if err == nil {
		if rerr := os.Rename(tmpPath, output); rerr != nil {
			err = fmt.Errorf("%w: moving fetched volume into place: %v", volume.ErrIO, rerr)
		}
	}
	if err != nil {
		os.Remove(tmpPath)
	}
	return a.track(err)
}

// SetupKeys generates the archive encryption key pair, protecting the
// private key with passphrase.
func (a *PMApp) SetupKeys(passphrase string) error {
	return a.track(a.encryptor.Setup(passphrase))
}

// Close logs the outcome of the operation and releases the history
// database and the log file.
func (a *PMApp) Close() error {
	var firstErr error

	if a.history != nil {
		if err := a.history.Close(); err != nil {
			firstErr = fmt.Errorf("closing history database: %w", err)
		}
	}

	if a.op != nil && a.logger != nil {
		a.logger.Info("operation finished", "operation", a.op.Name, "status", a.op.Status,
			"elapsed", a.op.Elapsed(a.clock.Now()))
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}
	return firstErr
}

func absPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolving path %s: %w", p, err)
	}
	return abs, nil
}
