// Package snapshot provides snapshot persistence for kvdis.
package snapshot

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spaolacci/murmur3"
)

// Info describes a snapshot that was written or read.
type Info struct {
	Location  string
	Entries   int
	Bytes     int
	Checksum  string // murmur3 64-bit, hex, over the stored bytes
	Sealed    bool
	CreatedAt time.Time
}

// Config configures a Manager.
type Config struct {
	// Sink stores the snapshot blob. Required.
	Sink Sink

	// Passphrase enables sealing when non-empty.
	Passphrase string

	Logger *slog.Logger
}

// Manager moves snapshot text in and out of a Sink, sealing it on the way
// out when a passphrase is configured.
type Manager struct {
	sink   Sink
	sealer *sealer
	logger *slog.Logger
}

// NewManager creates a new snapshot manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Sink == nil {
		return nil, errors.New("snapshot: sink is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	m := &Manager{
		sink:   cfg.Sink,
		logger: cfg.Logger,
	}

	if cfg.Passphrase != "" {
		s, err := newSealer(cfg.Passphrase)
		if err != nil {
			return nil, err
		}
		m.sealer = s
	}

	return m, nil
}

// Location returns where the sink keeps the snapshot.
func (m *Manager) Location() string {
	return m.sink.Location()
}

// Sealed reports whether snapshots are encrypted.
func (m *Manager) Sealed() bool {
	return m.sealer != nil
}

// Write stores text as the current snapshot. entries is recorded in Info.
func (m *Manager) Write(ctx context.Context, text []byte, entries int) (*Info, error) {
	data := text
	if m.sealer != nil {
		sealed, err := m.sealer.seal(text)
		if err != nil {
			return nil, err
		}
		data = sealed
	}

	if err := m.sink.Write(ctx, data); err != nil {
		return nil, fmt.Errorf("snapshot: write %s: %w", m.sink.Location(), err)
	}

	info := m.info(data, entries)
	m.logger.Debug("snapshot written",
		"location", info.Location,
		"entries", info.Entries,
		"bytes", info.Bytes,
		"checksum", info.Checksum,
		"sealed", info.Sealed)

	return info, nil
}

// Read returns the current snapshot text, opening it when sealed.
// Info.Entries is left at zero; the caller counts entries while decoding.
func (m *Manager) Read(ctx context.Context) ([]byte, *Info, error) {
	data, err := m.sink.Read(ctx)
	if err != nil {
		return nil, nil, err
	}

	info := m.info(data, 0)

	switch {
	case m.sealer != nil:
		text, err := m.sealer.open(data)
		if err != nil {
			return nil, nil, err
		}
		return text, info, nil
	case isSealed(data):
		return nil, nil, ErrSealed
	default:
		return data, info, nil
	}
}

// Close closes the underlying sink.
func (m *Manager) Close() error {
	return m.sink.Close()
}

func (m *Manager) info(data []byte, entries int) *Info {
	sum := murmur3.New64()
	sum.Write(data)
	return &Info{
		Location:  m.sink.Location(),
		Entries:   entries,
		Bytes:     len(data),
		Checksum:  hex.EncodeToString(sum.Sum(nil)),
		Sealed:    isSealed(data),
		CreatedAt: time.Now(),
	}
}
