package app

import "time"

// Operation tracks the CLI command an app instance was opened for. Its ID
// tags every log line written during the command.
type Operation struct {
	ID        string
	Name      string
	Status    string // "success" or "error"
	StartedAt time.Time
}

// NewOperation creates an operation that started at now. Its status is
// "success" until Fail is called.
func NewOperation(name string, now time.Time) *Operation {
	return &Operation{
		ID:        now.UTC().Format("20060102T150405Z"),
		Name:      name,
		Status:    "success",
		StartedAt: now,
	}
}

// Fail marks the operation as failed.
func (op *Operation) Fail() {
	op.Status = "error"
}

// Elapsed returns the time since the operation started.
func (op *Operation) Elapsed(now time.Time) time.Duration {
	return now.Sub(op.StartedAt)
}
