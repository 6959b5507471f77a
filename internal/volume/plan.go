package volume

import "fmt"

// Naming holds the parts of a volume filename around "volume_NNN".
type Naming struct {
	Prefix string
	Suffix string
}

// VolumeName returns "{prefix}volume_{NNN}{suffix}.pdf" for volume n.
func (n Naming) VolumeName(volume int) string {
	return fmt.Sprintf("%svolume_%03d%s.pdf", n.Prefix, volume, n.Suffix)
}

// Batch is a contiguous group of sorted input files destined for one volume.
// Files may shrink during review; Start and Planned keep describing the
// original slice so operator-facing numbering stays stable.
type Batch struct {
	Volume  int
	Name    string
	Start   int // index of the first planned file in the sorted list
	Planned int // number of files originally planned
	Files   []*FileEntry

	planned []*FileEntry
}

// End returns the index one past the last planned file in the sorted list.
func (b *Batch) End() int {
	return b.Start + b.Planned
}

// Number returns the 1-based position of e in the sorted list, or 0 if e
// was not planned into this batch.
func (b *Batch) Number(e *FileEntry) int {
	for i, p := range b.planned {
		if p == e {
			return b.Start + i + 1
		}
	}
	return 0
}

// Exclude removes the files whose sorted-list numbers are in nums. Numbers
// outside the planned range are ignored. It returns how many numbers fell
// inside the range.
func (b *Batch) Exclude(nums []int) int {
	drop := make(map[*FileEntry]bool)
	for _, n := range nums {
		if n > b.Start && n <= b.End() {
			drop[b.planned[n-1-b.Start]] = true
		}
	}
	if len(drop) == 0 {
		return 0
	}

	kept := b.Files[:0:0]
	for _, f := range b.Files {
		if !drop[f] {
			kept = append(kept, f)
		}
	}
	b.Files = kept
	return len(drop)
}

// Clear drops every file from the batch.
func (b *Batch) Clear() {
	b.Files = nil
}

// Empty reports whether the batch has nothing left to commit.
func (b *Batch) Empty() bool {
	return len(b.Files) == 0
}

// Plan partitions sorted entries into ceil(len/batchSize) batches numbered
// from 1 in list order. The last batch may be shorter.
func Plan(entries []*FileEntry, batchSize int, naming Naming) ([]*Batch, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("%w: batch size must be at least 1, got %d", ErrConfig, batchSize)
	}

	total := len(entries)
	count := (total + batchSize - 1) / batchSize
	batches := make([]*Batch, 0, count)

	for i := 0; i < count; i++ {
		start := i * batchSize
		end := min(start+batchSize, total)

		planned := entries[start:end:end]
		files := make([]*FileEntry, len(planned))
		copy(files, planned)

		batches = append(batches, &Batch{
			Volume:  i + 1,
			Name:    naming.VolumeName(i + 1),
			Start:   start,
			Planned: end - start,
			Files:   files,
			planned: planned,
		})
	}

	return batches, nil
}
