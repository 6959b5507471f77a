package volume

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Decision is the terminal state of reviewing one batch.
type Decision int

const (
	Proceed Decision = iota
	Skip
	Quit
)

func (d Decision) String() string {
	switch d {
	case Proceed:
		return "proceed"
	case Skip:
		return "skip"
	case Quit:
		return "quit"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// Reviewer lets an operator proceed with, edit, skip or quit at each batch
// before it is committed.
type Reviewer struct {
	prompter Prompter
	logger   Logger
}

// NewReviewer creates a Reviewer that talks to the operator through p.
func NewReviewer(p Prompter, logger Logger) *Reviewer {
	return &Reviewer{prompter: p, logger: logger}
}

// Review runs the prompt loop for b until the operator proceeds, skips or
// quits. Edits mutate b.Files in place; Skip empties b. A closed input is
// treated as quit. Only read errors other than io.EOF are returned.
func (r *Reviewer) Review(b *Batch) (Decision, error) {
	r.prompter.WriteLine("")
	for {
		r.prompter.WriteLine("  Action: [p]roceed, [e]dit (exclude files), [s]kip volume, or [q]uit?")
		choice, err := r.read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.logger.Info("input closed during review", "volume", b.Volume)
				return Quit, nil
			}
			return Quit, fmt.Errorf("reading action: %w", err)
		}

		switch strings.ToLower(choice) {
		case "p":
			r.logger.Debug("volume approved", "volume", b.Volume, "files", len(b.Files))
			return Proceed, nil
		case "e":
			if err := r.edit(b); err != nil {
				if errors.Is(err, io.EOF) {
					return Quit, nil
				}
				return Quit, err
			}
		case "s":
			r.prompter.WriteLine("  Skipping this volume.")
			r.prompter.WriteLine("")
			b.Clear()
			r.logger.Info("volume skipped", "volume", b.Volume)
			return Skip, nil
		case "q":
			r.logger.Info("review quit", "volume", b.Volume)
			return Quit, nil
		default:
			r.prompter.WriteLine("  Invalid choice. Please enter 'p', 'e', 's', or 'q'.")
		}
	}
}

// edit asks for sorted-list numbers to exclude and applies them to b.
func (r *Reviewer) edit(b *Batch) error {
	r.prompter.WriteLine("")
	r.prompter.WriteLine("  Enter file numbers to EXCLUDE (comma-separated, e.g., 1,3,5):")
	r.prompter.WriteLine("  Or press Enter to cancel editing")
	r.prompter.WriteLine("  Files to exclude:")
	line, err := r.read()
	if err != nil {
		return err
	}

	if line != "" {
		nums, err := parseNumbers(line)
		if err != nil {
			r.prompter.WriteLine("  Invalid input. Please enter comma-separated numbers.")
		} else if b.Exclude(nums) == 0 {
			r.prompter.WriteLine("  No valid files to exclude.")
		} else {
			r.logger.Info("files excluded", "volume", b.Volume, "remaining", len(b.Files))
			r.prompter.WriteLine("")
			writef(r.prompter, "  Updated volume will contain %d files:", len(b.Files))
			writeFiles(r.prompter, b)
		}
	}
	r.prompter.WriteLine("")
	return nil
}

func (r *Reviewer) read() (string, error) {
	line, err := r.prompter.ReadLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// parseNumbers parses "1, 3,5" into its integers. Any element that is not
// an integer fails the whole list.
func parseNumbers(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	nums := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", p, err)
		}
		nums = append(nums, n)
	}
	return nums, nil
}
