package snapshot

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spaolacci/murmur3"
)

var (
	badgerDataKey     = []byte("kvdis/snapshot/data")
	badgerChecksumKey = []byte("kvdis/snapshot/checksum")
)

// ErrChecksumMismatch indicates the stored snapshot does not match its checksum.
var ErrChecksumMismatch = errors.New("snapshot: checksum mismatch")

// BadgerConfig configures a BadgerSink.
type BadgerConfig struct {
	Dir         string
	SyncWrites  bool
	GCInterval  time.Duration
	GCThreshold float64
}

// DefaultBadgerConfig returns the default Badger settings.
func DefaultBadgerConfig(dir string) BadgerConfig {
	return BadgerConfig{
		Dir:         dir,
		SyncWrites:  true,
		GCInterval:  10 * time.Minute,
		GCThreshold: 0.5,
	}
}

// BadgerSink keeps the snapshot under a fixed key in a Badger database.
//
// The blob and its murmur3 checksum are written in one transaction; Read
// verifies the checksum before returning the blob.
type BadgerSink struct {
	db     *badger.DB
	cfg    BadgerConfig
	logger *slog.Logger

	lastGCTime atomic.Int64

	metricsLSMSize      prometheus.GaugeFunc
	metricsValueLogSize prometheus.GaugeFunc
	metricsGCRuns       prometheus.Counter

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewBadgerSink opens (or creates) the Badger database in cfg.Dir.
func NewBadgerSink(cfg BadgerConfig, logger *slog.Logger) (*BadgerSink, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("badger: dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.GCInterval <= 0 {
		cfg.GCInterval = 10 * time.Minute
	}
	if cfg.GCThreshold <= 0 || cfg.GCThreshold >= 1 {
		cfg.GCThreshold = 0.5
	}

	opts := badger.DefaultOptions(cfg.Dir)
	opts.Logger = &badgerLogger{logger: logger}
	opts.SyncWrites = cfg.SyncWrites

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	s := &BadgerSink{
		db:     db,
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	go s.gcLoop()

	logger.Info("badger snapshot sink opened",
		"dir", cfg.Dir,
		"gc_interval", cfg.GCInterval)

	return s, nil
}

// Location returns the database directory.
func (s *BadgerSink) Location() string {
	return s.cfg.Dir
}

// Write stores data and its checksum, replacing the previous snapshot.
func (s *BadgerSink) Write(_ context.Context, data []byte) error {
	sum := make([]byte, 8)
	binary.BigEndian.PutUint64(sum, murmur3.Sum64(data))

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(badgerDataKey, data); err != nil {
			return fmt.Errorf("set data: %w", err)
		}
		if err := txn.Set(badgerChecksumKey, sum); err != nil {
			return fmt.Errorf("set checksum: %w", err)
		}
		return nil
	})
}

// Read returns the stored snapshot after verifying its checksum.
func (s *BadgerSink) Read(_ context.Context) ([]byte, error) {
	var data, sum []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerDataKey)
		if err != nil {
			return err
		}
		if data, err = item.ValueCopy(nil); err != nil {
			return err
		}

		item, err = txn.Get(badgerChecksumKey)
		if err != nil {
			return err
		}
		sum, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, s.cfg.Dir)
		}
		return nil, fmt.Errorf("badger: read: %w", err)
	}

	if len(sum) != 8 || binary.BigEndian.Uint64(sum) != murmur3.Sum64(data) {
		return nil, ErrChecksumMismatch
	}
	return data, nil
}

// GC runs value log garbage collection until nothing more can be rewritten.
// It returns the number of rewritten value log files.
func (s *BadgerSink) GC() (int, error) {
	start := time.Now()

	runs := 0
	for {
		err := s.db.RunValueLogGC(s.cfg.GCThreshold)
		if err != nil {
			if errors.Is(err, badger.ErrNoRewrite) {
				break
			}
			return runs, fmt.Errorf("gc: %w", err)
		}
		runs++
	}

	s.lastGCTime.Store(time.Now().UnixMilli())
	if s.metricsGCRuns != nil {
		s.metricsGCRuns.Add(float64(runs))
	}

	s.logger.Debug("badger gc completed",
		"rewrites", runs,
		"elapsed", time.Since(start))

	return runs, nil
}

// Close stops the GC loop and closes the database.
func (s *BadgerSink) Close() error {
	close(s.stopCh)
	<-s.doneCh

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("badger: close db: %w", err)
	}

	s.logger.Info("badger snapshot sink closed")
	return nil
}

// RegisterMetrics registers Badger size and GC metrics with registry.
// Returns the sink for method chaining.
func (s *BadgerSink) RegisterMetrics(registry prometheus.Registerer) *BadgerSink {
	s.metricsLSMSize = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "kvdis",
		Subsystem: "badger",
		Name:      "lsm_size_bytes",
		Help:      "Badger LSM tree size in bytes",
	}, func() float64 {
		lsm, _ := s.db.Size()
		return float64(lsm)
	})

	s.metricsValueLogSize = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "kvdis",
		Subsystem: "badger",
		Name:      "value_log_size_bytes",
		Help:      "Badger value log size in bytes",
	}, func() float64 {
		_, vlog := s.db.Size()
		return float64(vlog)
	})

	s.metricsGCRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kvdis",
		Subsystem: "badger",
		Name:      "gc_rewrites_total",
		Help:      "Total value log files rewritten by Badger garbage collection",
	})

	registry.MustRegister(s.metricsLSMSize, s.metricsValueLogSize, s.metricsGCRuns)
	return s
}

// gcLoop runs periodic garbage collection.
func (s *BadgerSink) gcLoop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.GC(); err != nil {
				s.logger.Error("badger auto gc failed", "error", err)
			}
		case <-s.stopCh:
			return
		}
	}
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
