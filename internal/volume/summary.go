package volume

// CommittedVolume is a volume file written during a run.
type CommittedVolume struct {
	Volume    int
	Name      string
	Path      string
	Size      int64
	FileCount int
	Archived  bool
}

// VolumeFailure is a planned volume whose merge failed.
type VolumeFailure struct {
	Volume int
	Name   string
	Err    error
}

// RunSummary accumulates the result of a walk. Volumes are in commit order.
type RunSummary struct {
	RunID          string
	InputDir       string
	OutputDir      string
	TotalFiles     int
	PlannedVolumes int
	Compression    *Level
	Volumes        []CommittedVolume
	Failures       []VolumeFailure
	Skipped        []int
	Quit           bool
}

// Paths returns the output paths of committed volumes in commit order.
func (s *RunSummary) Paths() []string {
	paths := make([]string, len(s.Volumes))
	for i, v := range s.Volumes {
		paths[i] = v.Path
	}
	return paths
}

// Status derives the run status from the summary.
func (s *RunSummary) Status() RunStatus {
	switch {
	case s.Quit:
		return RunQuit
	case len(s.Failures) > 0:
		return RunPartial
	default:
		return RunSuccess
	}
}

// add folds one commit outcome into the summary.
func (s *RunSummary) add(o Outcome) {
	switch o.Status {
	case VolumeCommitted:
		s.Volumes = append(s.Volumes, CommittedVolume{
			Volume:    o.Volume,
			Name:      o.Name,
			Path:      o.Path,
			Size:      o.Size,
			FileCount: o.FileCount,
		})
	case VolumeFailed:
		s.Failures = append(s.Failures, VolumeFailure{Volume: o.Volume, Name: o.Name, Err: o.Err})
	case VolumeSkipped:
		s.Skipped = append(s.Skipped, o.Volume)
	}
}
