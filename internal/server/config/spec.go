// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for kvdis-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	HTTP     HTTPSection     `koanf:"http"`
	Storage  StorageSection  `koanf:"storage"`
	Security SecuritySection `koanf:"security"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures the line protocol listener.
type ServerSection struct {
	Addr         string        `koanf:"addr"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
	MaxLineBytes int           `koanf:"max_line_bytes"`

	// RateLimit is the number of command lines per second accepted from one
	// client IP. Zero disables limiting.
	RateLimit int `koanf:"rate_limit"`
}

// HTTPSection configures the HTTP side-car (health, metrics, dump).
type HTTPSection struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// Storage backends.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
)

// StorageSection configures snapshot persistence.
type StorageSection struct {
	SnapshotPath   string `koanf:"snapshot_path"`
	Backend        string `koanf:"backend"`
	BadgerDir      string `koanf:"badger_dir"`
	LoadOnStart    bool   `koanf:"load_on_start"`
	SaveOnShutdown bool   `koanf:"save_on_shutdown"`
}

// SecuritySection configures security settings.
type SecuritySection struct {
	// EncryptionKey is a passphrase. When set, snapshots are sealed at rest.
	EncryptionKey string `koanf:"encryption_key"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
