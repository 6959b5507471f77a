package testutil

import (
	"pdfmgr/internal/vault"
)

// NewTestArchive creates a new in-memory archive for testing.
func NewTestArchive() *vault.MemoryVault {
	return vault.NewMemoryVault("test-archive")
}
