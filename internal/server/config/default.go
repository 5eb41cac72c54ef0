package config

import "time"

// Default configuration values.
const (
	DefaultPort         = 7777
	DefaultAddr         = "127.0.0.1:7777"
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	DefaultIdleTimeout  = 5 * time.Minute
	DefaultMaxLineBytes = 64 * 1024

	DefaultHTTPAddr = "127.0.0.1:7780"

	DefaultSnapshotPath = "kvdis.csv"
	DefaultBackend      = BackendFile
	DefaultBadgerDir    = "kvdis-badger"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Addr:         DefaultAddr,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
			IdleTimeout:  DefaultIdleTimeout,
			MaxLineBytes: DefaultMaxLineBytes,
		},
		HTTP: HTTPSection{
			Enabled: false,
			Addr:    DefaultHTTPAddr,
		},
		Storage: StorageSection{
			SnapshotPath: DefaultSnapshotPath,
			Backend:      DefaultBackend,
			BadgerDir:    DefaultBadgerDir,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
