package volume_test

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"pdfmgr/internal/testutil"
	"pdfmgr/internal/volume"
)

func planFrom(t *testing.T, fsmgr *testutil.MockFilesystemManager, dir string, size int) []*volume.Batch {
	t.Helper()
	entries, err := fsmgr.ListPDFs(dir)
	if err != nil {
		t.Fatal(err)
	}
	batches, err := volume.Plan(entries, size, volume.Naming{Prefix: "bk_"})
	if err != nil {
		t.Fatal(err)
	}
	return batches
}

func TestCommitter_Commit(t *testing.T) {
	fsmgr := testutil.NewMockFilesystemManager()
	fsmgr.AddPDFs("/in", "a.pdf", "b.pdf", "c.pdf")
	merger := testutil.NewStubMerger(fsmgr)
	level := volume.LevelAggressive
	c := volume.NewCommitter(merger, fsmgr, volume.NewNopLogger(), "/out", &level)

	batches := planFrom(t, fsmgr, "/in", 2)
	o := c.Commit(context.Background(), batches[0])

	if o.Status != volume.VolumeCommitted || o.Err != nil {
		t.Fatalf("Commit() = %+v", o)
	}
	if o.Path != filepath.Join("/out", "bk_volume_001.pdf") || o.Name != "bk_volume_001.pdf" {
		t.Errorf("output = %s (%s)", o.Path, o.Name)
	}
	if o.FileCount != 2 || o.Volume != 1 {
		t.Errorf("FileCount = %d, Volume = %d", o.FileCount, o.Volume)
	}
	content, _ := fsmgr.Content(o.Path)
	if o.Size != int64(len(content)) || o.Size == 0 {
		t.Errorf("Size = %d, want %d", o.Size, len(content))
	}

	if len(merger.Calls) != 1 {
		t.Fatalf("merge called %d times, want 1", len(merger.Calls))
	}
	call := merger.Calls[0]
	if !reflect.DeepEqual(call.Paths, []string{"/in/a.pdf", "/in/b.pdf"}) {
		t.Errorf("merged paths = %v", call.Paths)
	}
	if call.Level == nil || *call.Level != volume.LevelAggressive {
		t.Errorf("merge level = %v, want aggressive", call.Level)
	}
}

func TestCommitter_EmptyBatchIsNoop(t *testing.T) {
	fsmgr := testutil.NewMockFilesystemManager()
	fsmgr.AddPDFs("/in", "a.pdf")
	merger := testutil.NewStubMerger(fsmgr)
	c := volume.NewCommitter(merger, fsmgr, volume.NewNopLogger(), "/out", nil)

	b := planFrom(t, fsmgr, "/in", 5)[0]
	b.Clear()
	o := c.Commit(context.Background(), b)

	if o.Status != volume.VolumeSkipped {
		t.Errorf("Status = %s, want skipped", o.Status)
	}
	if len(merger.Calls) != 0 {
		t.Error("merger called for empty batch")
	}
	if fsmgr.Exists(o.Path) {
		t.Error("output written for empty batch")
	}
}

func TestCommitter_MergeFailure(t *testing.T) {
	fsmgr := testutil.NewMockFilesystemManager()
	fsmgr.AddPDFs("/in", "a.pdf", "b.pdf")
	merger := testutil.NewStubMerger(fsmgr)
	mergeErr := errors.New("disk full")
	merger.FailOn("bk_volume_001.pdf", mergeErr)
	c := volume.NewCommitter(merger, fsmgr, volume.NewNopLogger(), "/out", nil)

	o := c.Commit(context.Background(), planFrom(t, fsmgr, "/in", 2)[0])

	if o.Status != volume.VolumeFailed {
		t.Fatalf("Status = %s, want failed", o.Status)
	}
	if !errors.Is(o.Err, mergeErr) {
		t.Errorf("Err = %v, want wrapped %v", o.Err, mergeErr)
	}
	if o.Size != 0 {
		t.Errorf("Size = %d for failed volume", o.Size)
	}
}
