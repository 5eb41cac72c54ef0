package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/yndnr/kvdis-go/internal/core/service"
	"github.com/yndnr/kvdis-go/internal/server/config"
	"github.com/yndnr/kvdis-go/internal/storage/memory"
	"github.com/yndnr/kvdis-go/internal/storage/snapshot"
	"github.com/yndnr/kvdis-go/internal/telemetry/metric"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kvdis.yaml")
	content := "server:\n  addr: 0.0.0.0:9000\nlog:\n  level: warn\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		opts     options
		wantAddr string
		wantLvl  string
	}{
		{"file", options{configFile: path}, "0.0.0.0:9000", "warn"},
		{"port keeps host", options{configFile: path, port: 7000}, "0.0.0.0:7000", "warn"},
		{"flag override", options{configFile: path, overrides: map[string]any{"log.level": "debug"}}, "0.0.0.0:9000", "debug"},
		{"defaults", options{}, config.DefaultAddr, config.DefaultLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadConfig(newLoader(tt.opts), tt.opts.port)
			if err != nil {
				t.Fatalf("loadConfig() error = %v", err)
			}
			if cfg.Server.Addr != tt.wantAddr {
				t.Errorf("addr = %q, want %q", cfg.Server.Addr, tt.wantAddr)
			}
			if cfg.Log.Level != tt.wantLvl {
				t.Errorf("level = %q, want %q", cfg.Log.Level, tt.wantLvl)
			}
		})
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	opts := options{overrides: map[string]any{"storage.backend": "s3"}}
	if _, err := loadConfig(newLoader(opts), 0); err == nil {
		t.Error("unknown backend should be rejected")
	}
}

func TestLoadOnStart_MissingSnapshot(t *testing.T) {
	store := memory.New()
	sink, err := snapshot.NewFileSink(filepath.Join(t.TempDir(), "kvdis.csv"))
	if err != nil {
		t.Fatal(err)
	}
	mgr, err := snapshot.NewManager(snapshot.Config{Sink: sink})
	if err != nil {
		t.Fatal(err)
	}
	engine := service.NewEngine(store, snapshot.NewPersister(store, mgr, nil))
	defer engine.Close(context.Background(), false)

	if err := loadOnStart(context.Background(), engine, slog.Default()); err != nil {
		t.Errorf("loadOnStart() with no snapshot error = %v", err)
	}
}

func TestNewSink(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.SnapshotPath = filepath.Join(t.TempDir(), "kvdis.csv")

	sink, err := newSink(cfg, metric.NewRegistry(), nil)
	if err != nil {
		t.Fatalf("newSink(file) error = %v", err)
	}
	if sink.Location() != cfg.Storage.SnapshotPath {
		t.Errorf("Location() = %q", sink.Location())
	}
	sink.Close()

	cfg.Storage.Backend = config.BackendBadger
	cfg.Storage.BadgerDir = filepath.Join(t.TempDir(), "badger")
	sink, err = newSink(cfg, metric.NewRegistry(), nil)
	if err != nil {
		t.Fatalf("newSink(badger) error = %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
