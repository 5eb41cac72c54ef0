package config

import (
	"errors"
	"fmt"
	"net"

	"github.com/yndnr/kvdis-go/internal/storage/snapshot"
	"github.com/yndnr/kvdis-go/internal/telemetry/logger"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyHTTP(&cfg.HTTP); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := verifySecurity(&cfg.Security); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	if err := verifyAddr("server.addr", cfg.Addr); err != nil {
		return err
	}
	if cfg.MaxLineBytes <= 0 {
		return errors.New("server.max_line_bytes must be positive")
	}
	if cfg.RateLimit < 0 {
		return errors.New("server.rate_limit must not be negative")
	}
	if cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0 || cfg.IdleTimeout < 0 {
		return errors.New("server timeouts must not be negative")
	}
	return nil
}

func verifyHTTP(cfg *HTTPSection) error {
	if !cfg.Enabled {
		return nil
	}
	return verifyAddr("http.addr", cfg.Addr)
}

func verifyStorage(cfg *StorageSection) error {
	switch cfg.Backend {
	case BackendFile:
		if cfg.SnapshotPath == "" {
			return errors.New("storage.snapshot_path is required")
		}
	case BackendBadger:
		if cfg.BadgerDir == "" {
			return errors.New("storage.badger_dir is required")
		}
	default:
		return fmt.Errorf("storage.backend: unknown backend %q (want %q or %q)", cfg.Backend, BackendFile, BackendBadger)
	}
	return nil
}

func verifySecurity(cfg *SecuritySection) error {
	if cfg.EncryptionKey != "" && len(cfg.EncryptionKey) < snapshot.MinPassphraseLength {
		return fmt.Errorf("security.encryption_key must be at least %d characters", snapshot.MinPassphraseLength)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if !logger.ValidLevel(cfg.Level) {
		return fmt.Errorf("log.level: unknown level %q", cfg.Level)
	}
	switch cfg.Format {
	case "json", "text", "console":
		return nil
	default:
		return fmt.Errorf("log.format: unknown format %q", cfg.Format)
	}
}

func verifyAddr(name, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s is required", name)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
