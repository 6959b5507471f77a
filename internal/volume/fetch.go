package volume

import (
	"context"
	"fmt"
	"io"
)

// FetchVolume writes an archived volume of a past run to w. The history
// record decides whether the copy is encrypted; unlock is only called then.
func (s *Service) FetchVolume(ctx context.Context, runID, name string, unlock func() (DecryptionContext, error), w io.Writer) error {
	if s.archiver == nil {
		return fmt.Errorf("%w: no archive configured", ErrConfig)
	}
	if s.history == nil {
		return fmt.Errorf("%w: no history database configured", ErrConfig)
	}

	rec, err := s.history.FindVolume(runID, name)
	if err != nil {
		return fmt.Errorf("finding volume: %w", err)
	}
	if rec == nil || !rec.Archived {
		return fmt.Errorf("%w: volume %s of run %s was not archived", ErrNotFound, name, runID)
	}

	var dec DecryptionContext
	if rec.Encrypted {
		dec, err = unlock()
		if err != nil {
			return fmt.Errorf("unlocking archive key: %w", err)
		}
	}

	if err := s.archiver.Fetch(ctx, runID, name, dec, w); err != nil {
		return err
	}
	s.logger.Info("volume fetched", "run", runID, "name", name)
	return nil
}
