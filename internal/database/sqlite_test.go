package database

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"pdfmgr/internal/volume"
)

// newTestHistory creates a new in-memory history with the schema applied.
func newTestHistory(t *testing.T) *SQLiteHistory {
	t.Helper()

	h, err := NewSQLiteHistory(":memory:")
	if err != nil {
		t.Fatalf("failed to create history: %v", err)
	}
	t.Cleanup(func() {
		h.Close()
	})
	return h
}

var t0 = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

func sampleRun(id string, started time.Time) *volume.Run {
	return &volume.Run{
		ID:             id,
		StartedAt:      started,
		InputDir:       "/scans/in",
		OutputDir:      "/scans/out",
		Order:          volume.OrderAsc,
		BatchSize:      3,
		Compression:    "medium",
		Status:         volume.RunRunning,
		TotalFiles:     8,
		PlannedVolumes: 3,
	}
}

func TestSQLiteHistory_CreateAndListRuns(t *testing.T) {
	h := newTestHistory(t)

	for i, id := range []string{"run-a", "run-b", "run-c"} {
		if err := h.CreateRun(sampleRun(id, t0.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("CreateRun(%s) error = %v", id, err)
		}
	}

	runs, err := h.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}
	if runs[0].ID != "run-c" || runs[1].ID != "run-b" {
		t.Errorf("runs = [%s %s], want newest first [run-c run-b]", runs[0].ID, runs[1].ID)
	}

	r := runs[1]
	if !r.StartedAt.Equal(t0.Add(time.Hour)) {
		t.Errorf("StartedAt = %v, want %v", r.StartedAt, t0.Add(time.Hour))
	}
	if r.FinishedAt.Valid {
		t.Error("FinishedAt should be NULL for a running run")
	}
	if r.Order != volume.OrderAsc || r.BatchSize != 3 || r.Compression != "medium" {
		t.Errorf("run fields = %+v", r)
	}
	if r.TotalFiles != 8 || r.PlannedVolumes != 3 || r.Status != volume.RunRunning {
		t.Errorf("run counts = %+v", r)
	}

	all, err := h.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns(0) error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("ListRuns(0) returned %d runs, want 3", len(all))
	}
}

func TestSQLiteHistory_CreateRunDuplicate(t *testing.T) {
	h := newTestHistory(t)

	if err := h.CreateRun(sampleRun("run-a", t0)); err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	if err := h.CreateRun(sampleRun("run-a", t0)); err == nil {
		t.Error("second CreateRun() with same id succeeded")
	}
}

func TestSQLiteHistory_FinishRun(t *testing.T) {
	h := newTestHistory(t)
	if err := h.CreateRun(sampleRun("run-a", t0)); err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}

	finished := t0.Add(5 * time.Minute)
	if err := h.FinishRun("run-a", volume.RunPartial, finished); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}

	runs, err := h.ListRuns(1)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if runs[0].Status != volume.RunPartial {
		t.Errorf("Status = %q, want %q", runs[0].Status, volume.RunPartial)
	}
	if !runs[0].FinishedAt.Valid || !runs[0].FinishedAt.Time.Equal(finished) {
		t.Errorf("FinishedAt = %v, want %v", runs[0].FinishedAt, finished)
	}

	if err := h.FinishRun("missing", volume.RunSuccess, finished); !errors.Is(err, volume.ErrNotFound) {
		t.Errorf("FinishRun(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteHistory_Volumes(t *testing.T) {
	h := newTestHistory(t)
	if err := h.CreateRun(sampleRun("run-a", t0)); err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}

	records := []*volume.VolumeRecord{
		{RunID: "run-a", Volume: 2, Name: "volume_002.pdf", Status: volume.VolumeSkipped},
		{RunID: "run-a", Volume: 1, Name: "volume_001.pdf", Path: "/scans/out/volume_001.pdf", Size: 4096, FileCount: 3,
			Status: volume.VolumeCommitted, Archived: true, Encrypted: true},
		{RunID: "run-a", Volume: 3, Name: "volume_003.pdf", FileCount: 2, Status: volume.VolumeFailed, Error: "input file not found"},
	}
	for _, r := range records {
		if err := h.RecordVolume(r); err != nil {
			t.Fatalf("RecordVolume(%d) error = %v", r.Volume, err)
		}
	}

	vols, err := h.ListVolumes("run-a")
	if err != nil {
		t.Fatalf("ListVolumes() error = %v", err)
	}
	if len(vols) != 3 {
		t.Fatalf("len(vols) = %d, want 3", len(vols))
	}
	for i, v := range vols {
		if v.Volume != i+1 {
			t.Errorf("vols[%d].Volume = %d, want %d", i, v.Volume, i+1)
		}
	}
	if *vols[0] != *records[1] {
		t.Errorf("vols[0] = %+v, want %+v", vols[0], records[1])
	}
	if vols[2].Error != "input file not found" || vols[2].Status != volume.VolumeFailed {
		t.Errorf("vols[2] = %+v", vols[2])
	}

	none, err := h.ListVolumes("other")
	if err != nil || len(none) != 0 {
		t.Errorf("ListVolumes(other) = %v, %v, want empty", none, err)
	}
}

func TestSQLiteHistory_RecordVolumeUnknownRun(t *testing.T) {
	h := newTestHistory(t)

	err := h.RecordVolume(&volume.VolumeRecord{RunID: "missing", Volume: 1, Name: "volume_001.pdf", Status: volume.VolumeCommitted})
	if err == nil {
		t.Error("RecordVolume() for unknown run succeeded")
	}
}

func TestSQLiteHistory_FindVolume(t *testing.T) {
	h := newTestHistory(t)
	if err := h.CreateRun(sampleRun("run-a", t0)); err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	rec := &volume.VolumeRecord{RunID: "run-a", Volume: 1, Name: "book_volume_001.pdf", Status: volume.VolumeCommitted, Archived: true}
	if err := h.RecordVolume(rec); err != nil {
		t.Fatalf("RecordVolume() error = %v", err)
	}

	got, err := h.FindVolume("run-a", "book_volume_001.pdf")
	if err != nil {
		t.Fatalf("FindVolume() error = %v", err)
	}
	if got == nil || !got.Archived || got.Volume != 1 {
		t.Errorf("FindVolume() = %+v", got)
	}

	got, err = h.FindVolume("run-a", "volume_009.pdf")
	if err != nil || got != nil {
		t.Errorf("FindVolume(missing) = %+v, %v, want nil, nil", got, err)
	}
}

func TestSQLiteHistory_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	h, err := NewSQLiteHistory(path)
	if err != nil {
		t.Fatalf("NewSQLiteHistory() error = %v", err)
	}
	if err := h.CreateRun(sampleRun("run-a", t0)); err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	h.Close()

	h, err = NewSQLiteHistory(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer h.Close()

	if err := h.CheckMigrations(); err != nil {
		t.Errorf("CheckMigrations() = %v", err)
	}
	runs, err := h.ListRuns(10)
	if err != nil || len(runs) != 1 {
		t.Errorf("ListRuns() after reopen = %v, %v", runs, err)
	}
}
