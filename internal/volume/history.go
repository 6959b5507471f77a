package volume

import (
	"database/sql"
	"time"
)

// RunStatus is the final state of a walk run.
type RunStatus string

const (
	RunRunning RunStatus = "running"
	RunSuccess RunStatus = "success"
	RunPartial RunStatus = "partial" // at least one volume failed
	RunQuit    RunStatus = "quit"
	RunError   RunStatus = "error"
)

// VolumeStatus is the outcome of one planned volume.
type VolumeStatus string

const (
	VolumeCommitted VolumeStatus = "committed"
	VolumeSkipped   VolumeStatus = "skipped"
	VolumeFailed    VolumeStatus = "failed"
)

// Run is the persisted record of one walk.
type Run struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     sql.NullTime
	InputDir       string
	OutputDir      string
	Order          Order
	BatchSize      int
	Compression    string // empty when uncompressed
	Status         RunStatus
	TotalFiles     int
	PlannedVolumes int
}

// VolumeRecord is the persisted outcome of one planned volume of a run.
type VolumeRecord struct {
	RunID     string
	Volume    int
	Name      string
	Path      string
	Size      int64
	FileCount int
	Status    VolumeStatus
	Error     string
	Archived  bool
	Encrypted bool
}

// History stores walk runs and their volumes.
type History interface {
	// CreateRun records the start of a run.
	CreateRun(run *Run) error

	// RecordVolume records the outcome of one planned volume.
	RecordVolume(v *VolumeRecord) error

	// FinishRun stores the final status and finish time of a run.
	FinishRun(runID string, status RunStatus, finishedAt time.Time) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(limit int) ([]*Run, error)

	// ListVolumes returns the recorded volumes of a run in volume order.
	ListVolumes(runID string) ([]*VolumeRecord, error)

	// FindVolume returns the volume of a run with the given file name, or nil.
	FindVolume(runID, name string) (*VolumeRecord, error)

	// Close closes the underlying store.
	Close() error
}
