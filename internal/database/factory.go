package database

import (
	"fmt"
	"path/filepath"

	"pdfmgr/internal/config"
	"pdfmgr/internal/volume"
)

// HistoryFileName is the database file created inside data_dir.
const HistoryFileName = "history.db"

// NewHistoryFromConfig creates the run history store named by cfg.Type.
func NewHistoryFromConfig(cfg config.DatabaseConfig) (volume.History, error) {
	var path string
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("%w: data_dir required for sqlite database", volume.ErrConfig)
		}
		path = filepath.Join(cfg.DataDir, HistoryFileName)
	case "memory":
		path = ":memory:"
	default:
		return nil, fmt.Errorf("%w: unknown database type: %s", volume.ErrConfig, cfg.Type)
	}

	h, err := NewSQLiteHistory(path)
	if err != nil {
		return nil, err
	}
	return h, nil
}
