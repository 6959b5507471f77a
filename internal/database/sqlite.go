package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pdfmgr/internal/database/migrations"
	"pdfmgr/internal/volume"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteHistory implements volume.History using SQLite.
type SQLiteHistory struct {
	db   *sql.DB
	path string
}

var _ volume.History = (*SQLiteHistory)(nil)

// NewSQLiteHistory opens the history database at path and migrates it to
// the latest schema. path can be a file path or ":memory:".
func NewSQLiteHistory(path string) (*SQLiteHistory, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating history database: %w", err)
	}

	return &SQLiteHistory{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single process writes at a time, and an in-memory database exists
	// only on the connection that created it.
	db.SetMaxOpenConns(1)

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// CheckMigrations reports whether the schema matches this binary.
func (s *SQLiteHistory) CheckMigrations() error {
	return migrations.CheckStatus(s.db)
}

// Path returns the database location.
func (s *SQLiteHistory) Path() string {
	return s.path
}

// Run operations

func (s *SQLiteHistory) CreateRun(run *volume.Run) error {
	_, err := s.db.Exec(`
		INSERT INTO runs (id, started_at, input_dir, output_dir, sort_order, batch_size,
			compression, status, total_files, planned_volumes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC(), run.InputDir, run.OutputDir, string(run.Order), run.BatchSize,
		run.Compression, string(run.Status), run.TotalFiles, run.PlannedVolumes,
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}
	return nil
}

func (s *SQLiteHistory) FinishRun(runID string, status volume.RunStatus, finishedAt time.Time) error {
	res, err := s.db.Exec(`UPDATE runs SET status = ?, finished_at = ? WHERE id = ?`,
		string(status), finishedAt.UTC(), runID)
	if err != nil {
		return fmt.Errorf("updating run %s: %w", runID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating run %s: %w", runID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: run %s", volume.ErrNotFound, runID)
	}
	return nil
}

func (s *SQLiteHistory) ListRuns(limit int) ([]*volume.Run, error) {
	if limit <= 0 {
		limit = -1 // no limit
	}
	rows, err := s.db.Query(`
		SELECT id, started_at, finished_at, input_dir, output_dir, sort_order, batch_size,
			compression, status, total_files, planned_volumes
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []*volume.Run
	for rows.Next() {
		var (
			r      volume.Run
			order  string
			status string
		)
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.InputDir, &r.OutputDir, &order,
			&r.BatchSize, &r.Compression, &status, &r.TotalFiles, &r.PlannedVolumes); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Order = volume.Order(order)
		r.Status = volume.RunStatus(status)
		runs = append(runs, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// Volume operations

func (s *SQLiteHistory) RecordVolume(v *volume.VolumeRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO volumes (run_id, volume, name, path, size, file_count, status, error, archived, encrypted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.RunID, v.Volume, v.Name, v.Path, v.Size, v.FileCount, string(v.Status), v.Error, v.Archived, v.Encrypted,
	)
	if err != nil {
		return fmt.Errorf("inserting volume %d of run %s: %w", v.Volume, v.RunID, err)
	}
	return nil
}

const volumeColumns = `run_id, volume, name, path, size, file_count, status, error, archived, encrypted`

func (s *SQLiteHistory) ListVolumes(runID string) ([]*volume.VolumeRecord, error) {
	rows, err := s.db.Query(`SELECT `+volumeColumns+` FROM volumes WHERE run_id = ? ORDER BY volume`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying volumes: %w", err)
	}
	defer rows.Close()

	var vols []*volume.VolumeRecord
	for rows.Next() {
		v, err := scanVolume(rows)
		if err != nil {
			return nil, err
		}
		vols = append(vols, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating volumes: %w", err)
	}
	return vols, nil
}

func (s *SQLiteHistory) FindVolume(runID, name string) (*volume.VolumeRecord, error) {
	row := s.db.QueryRow(`SELECT `+volumeColumns+` FROM volumes WHERE run_id = ? AND name = ?`, runID, name)
	v, err := scanVolume(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVolume(sc scanner) (*volume.VolumeRecord, error) {
	var (
		v      volume.VolumeRecord
		status string
	)
	err := sc.Scan(&v.RunID, &v.Volume, &v.Name, &v.Path, &v.Size, &v.FileCount, &status, &v.Error, &v.Archived, &v.Encrypted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning volume: %w", err)
	}
	v.Status = volume.VolumeStatus(status)
	return &v, nil
}

// Close closes the database connection.
func (s *SQLiteHistory) Close() error {
	return s.db.Close()
}
