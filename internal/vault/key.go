package vault

import (
	"fmt"
	"path"
	"strings"

	"pdfmgr/internal/volume"
)

// validateKey rejects keys that could escape an archive root.
func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return fmt.Errorf("%w: invalid archive key %q", volume.ErrInvalidInput, key)
	}
	if path.Clean(key) != key {
		return fmt.Errorf("%w: archive key is not clean: %q", volume.ErrInvalidInput, key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." {
			return fmt.Errorf("%w: invalid archive key %q", volume.ErrInvalidInput, key)
		}
	}
	return nil
}

func notFound(name, key string) error {
	return fmt.Errorf("%w: %s has no object %s", volume.ErrNotFound, name, key)
}
