package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"pdfmgr/internal/volume"
)

// Config represents the main configuration for pdfmgr.
type Config struct {
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Walk       WalkConfig       `toml:"walk"`
	Database   DatabaseConfig   `toml:"database"`
	Archive    ArchiveConfig    `toml:"archive"`
	Encryption EncryptionConfig `toml:"encryption"`
	Filesystem FilesystemConfig `toml:"filesystem"`
}

// WalkConfig holds the defaults for `pdfmgr walk`; flags override them.
type WalkConfig struct {
	Order       string `toml:"order"`                 // "asc" or "desc"
	BatchSize   int    `toml:"batch_size"`            // files per volume
	Prefix      string `toml:"prefix,omitempty"`      // prepended to volume_NNN
	Suffix      string `toml:"suffix,omitempty"`      // appended to volume_NNN
	Compression string `toml:"compression,omitempty"` // "", "basic", "medium" or "aggressive"
}

// DatabaseConfig represents configuration for the run history database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// ArchiveConfig selects where committed volumes are copied when archiving.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type ArchiveConfig struct {
	Type    string `toml:"type"` // "none", "memory", "filesystem" or "s3"
	Name    string `toml:"name,omitempty"`
	Encrypt bool   `toml:"encrypt"`

	// Filesystem-specific fields (only used when Type == "filesystem")
	FSRoot string `toml:"fs_root,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"` // S3-compatible services
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`
}

// EncryptionConfig holds paths to the age key pair used for archive encryption.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default) or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// FilesystemConfig holds filesystem-related settings.
type FilesystemConfig struct {
	Ignore []string `toml:"ignore"` // basename globs never batched
}

// NewConfig creates a Config rooted at baseDir with the default walk
// settings, a sqlite history and no archive.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Walk: WalkConfig{
			Order:     string(volume.OrderAsc),
			BatchSize: 10,
		},
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Archive: ArchiveConfig{Type: "none"},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "archive.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "archive.key"),
		},
	}
}

// Validate checks the walk defaults.
func (c *Config) Validate() error {
	if _, err := volume.ParseOrder(c.Walk.Order); err != nil {
		return fmt.Errorf("walk.order: %w", err)
	}
	if c.Walk.BatchSize < 1 {
		return fmt.Errorf("%w: walk.batch_size must be at least 1, got %d", volume.ErrConfig, c.Walk.BatchSize)
	}
	if c.Walk.Compression != "" {
		if _, err := volume.ParseLevel(c.Walk.Compression); err != nil {
			return fmt.Errorf("%w: walk.compression: %w", volume.ErrConfig, err)
		}
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads the config at path. When no file exists yet it returns the
// defaults for baseDir, so the tool works before `pdfmgr config init`.
// Settings missing from the file keep their defaults. Walk defaults are not
// validated here: command-line flags may replace them, so the walk checks
// the values it ends up using.
func Load(path, baseDir string) (*Config, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewConfig(baseDir), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg := NewConfig(baseDir)
	if _, err := toml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes cfg to path. An existing file is never overwritten.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
