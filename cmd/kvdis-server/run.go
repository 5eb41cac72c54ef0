package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/yndnr/kvdis-go/internal/core/service"
	"github.com/yndnr/kvdis-go/internal/infra/buildinfo"
	"github.com/yndnr/kvdis-go/internal/infra/confloader"
	"github.com/yndnr/kvdis-go/internal/infra/shutdown"
	"github.com/yndnr/kvdis-go/internal/server/config"
	"github.com/yndnr/kvdis-go/internal/server/httpserver"
	"github.com/yndnr/kvdis-go/internal/server/lineserver"
	"github.com/yndnr/kvdis-go/internal/storage/memory"
	"github.com/yndnr/kvdis-go/internal/storage/snapshot"
	"github.com/yndnr/kvdis-go/internal/telemetry/logger"
	"github.com/yndnr/kvdis-go/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

type options struct {
	configFile string
	overrides  map[string]any
	port       int
}

func run(ctx context.Context, opts options) error {
	loader := newLoader(opts)
	cfg, err := loadConfig(loader, opts.port)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)
	slogger := log.Slog()

	log.Info("starting kvdis-server",
		"version", buildinfo.Get().Version,
		"commit", buildinfo.Get().Commit,
		"config_file", opts.configFile,
		"config", config.Sanitize(cfg))

	registry := metric.NewRegistry()
	store := memory.New()
	registry.MustRegister(metric.NewCollector(func() (int, int) {
		st := store.Stats()
		return st.Entries, st.Expired
	}))

	sink, err := newSink(cfg, registry, slogger)
	if err != nil {
		return fmt.Errorf("init snapshot sink: %w", err)
	}

	manager, err := snapshot.NewManager(snapshot.Config{
		Sink:       sink,
		Passphrase: cfg.Security.EncryptionKey,
		Logger:     slogger,
	})
	if err != nil {
		sink.Close()
		return fmt.Errorf("init snapshot manager: %w", err)
	}
	log.Info("snapshot storage ready", "location", manager.Location(), "sealed", manager.Sealed())

	engine := service.NewEngine(store, snapshot.NewPersister(store, manager, slogger),
		service.WithMetrics(registry),
		service.WithLogger(slogger))

	if cfg.Storage.LoadOnStart {
		if err := loadOnStart(ctx, engine, slogger); err != nil {
			engine.Close(ctx, false)
			return err
		}
	}

	sd := shutdown.NewHandler(shutdownTimeout, slogger)

	// Hooks run in reverse order: watcher, http, line server, engine.
	sd.OnShutdown("engine", func(ctx context.Context) error {
		return engine.Close(ctx, cfg.Storage.SaveOnShutdown)
	})

	lines := lineserver.New(lineserver.Config{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		MaxLineBytes: cfg.Server.MaxLineBytes,
		RateLimit:    cfg.Server.RateLimit,
	}, engine, lineserver.WithLogger(slogger), lineserver.WithMetrics(registry))
	if err := lines.Start(ctx); err != nil {
		engine.Close(ctx, false)
		return err
	}
	sd.OnShutdown("lineserver", lines.Shutdown)

	if cfg.HTTP.Enabled {
		router := httpserver.NewRouter(&httpserver.RouterConfig{
			Source:  store,
			Metrics: registry.Handler(),
			Logger:  slogger,
		})
		side := httpserver.New(cfg.HTTP.Addr, router, slogger)
		if err := side.Start(); err != nil {
			sd.Trigger()
			return errors.Join(err, sd.Wait())
		}
		sd.OnShutdown("http", side.Shutdown)
	}

	if loader.FilePath() != "" {
		stop, err := watchConfig(loader, opts.port, slogger)
		if err != nil {
			log.Warn("config hot reload disabled", "error", err)
		} else {
			sd.OnShutdown("watcher", func(context.Context) error { return stop() })
		}
	}

	log.Info("server started, press Ctrl+C to stop", "address", lines.Addr().String())
	if err := sd.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

func newLoader(opts options) *confloader.Loader {
	lopts := []confloader.Option{confloader.WithOverrides(opts.overrides)}
	if opts.configFile != "" {
		lopts = append(lopts, confloader.WithConfigFile(opts.configFile))
	}
	return confloader.NewLoader(lopts...)
}

// loadConfig loads defaults, file, environment and flags, in that order,
// then applies --port to the resulting address.
func loadConfig(loader *confloader.Loader, port int) (*config.ServerConfig, error) {
	cfg := config.Default()
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	return finishConfig(cfg, port)
}

func reloadConfig(loader *confloader.Loader, port int) (*config.ServerConfig, error) {
	cfg := config.Default()
	if err := loader.Reload(cfg); err != nil {
		return nil, err
	}
	return finishConfig(cfg, port)
}

func finishConfig(cfg *config.ServerConfig, port int) (*config.ServerConfig, error) {
	if port > 0 {
		host, _, err := net.SplitHostPort(cfg.Server.Addr)
		if err != nil {
			host = "127.0.0.1"
		}
		cfg.Server.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newSink(cfg *config.ServerConfig, registry *metric.Registry, log *slog.Logger) (snapshot.Sink, error) {
	switch cfg.Storage.Backend {
	case config.BackendBadger:
		bs, err := snapshot.NewBadgerSink(snapshot.DefaultBadgerConfig(cfg.Storage.BadgerDir), log)
		if err != nil {
			return nil, err
		}
		return bs.RegisterMetrics(registry.Registerer()), nil
	default:
		return snapshot.NewFileSink(cfg.Storage.SnapshotPath)
	}
}

// loadOnStart restores the snapshot at boot. A missing snapshot is not an error.
func loadOnStart(ctx context.Context, engine *service.Engine, log *slog.Logger) error {
	info, err := engine.Load(ctx)
	switch {
	case err == nil:
		log.Info("restored snapshot at startup", "location", info.Location, "entries", info.Entries)
		return nil
	case errors.Is(err, snapshot.ErrNoSnapshot):
		log.Info("no snapshot to restore")
		return nil
	default:
		return fmt.Errorf("load snapshot: %w", err)
	}
}

// watchConfig reloads the configuration file on change and applies the new
// log level. Other settings need a restart.
func watchConfig(loader *confloader.Loader, port int, log *slog.Logger) (func() error, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(loader.FilePath()); err != nil {
		w.Stop()
		return nil, err
	}

	w.OnChange(func(path string) {
		cfg, err := reloadConfig(loader, port)
		if err != nil {
			log.Warn("config reload rejected", "path", path, "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	w.StartAsync()

	return w.Stop, nil
}
