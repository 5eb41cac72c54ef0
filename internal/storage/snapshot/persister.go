package snapshot

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/yndnr/kvdis-go/internal/core/domain"
	"github.com/yndnr/kvdis-go/internal/storage/memory"
)

// Persister converts the whole store to and from snapshot text and moves
// that text through a Manager.
type Persister struct {
	store   *memory.Store
	manager *Manager
	logger  *slog.Logger
}

// NewPersister binds a store to a snapshot manager.
func NewPersister(store *memory.Store, manager *Manager, logger *slog.Logger) *Persister {
	if logger == nil {
		logger = slog.Default()
	}
	return &Persister{
		store:   store,
		manager: manager,
		logger:  logger,
	}
}

// Snapshot renders every entry, expired ones included, as snapshot text.
// The store is locked for the duration of the rendering.
func (p *Persister) Snapshot() ([]byte, int) {
	var buf bytes.Buffer
	var n int
	_ = p.store.View(func(entries map[string]domain.Entry) error {
		n = len(entries)
		return Encode(&buf, entries)
	})
	return buf.Bytes(), n
}

// Restore clears the store and inserts the entries decoded from text.
//
// On a malformed line the entries inserted before it stay in the store and
// the serialization error is returned. The store is locked for the whole
// restore.
func (p *Persister) Restore(text []byte) (int, error) {
	var n int
	err := p.store.Update(func(entries map[string]domain.Entry) error {
		clear(entries)
		return DecodeBytes(text, func(key string, e domain.Entry) error {
			entries[key] = e
			n++
			return nil
		})
	})
	return n, err
}

// Save writes the current store content to the snapshot sink.
// Failures are reported as domain.ErrIO.
func (p *Persister) Save(ctx context.Context) (*Info, error) {
	start := time.Now()

	text, n := p.Snapshot()
	info, err := p.manager.Write(ctx, text, n)
	if err != nil {
		return nil, domain.IOError(err, domain.ErrIOWrite)
	}

	p.logger.InfoContext(ctx, "snapshot saved",
		"location", info.Location,
		"entries", info.Entries,
		"bytes", info.Bytes,
		"elapsed", time.Since(start))

	return info, nil
}

// Load replaces the store content with the snapshot from the sink.
//
// When the snapshot cannot be read the store is left untouched. Failures are
// reported as domain.ErrIO.
func (p *Persister) Load(ctx context.Context) (*Info, error) {
	start := time.Now()

	text, info, err := p.manager.Read(ctx)
	if err != nil {
		return nil, domain.IOError(err, domain.ErrIORead)
	}

	n, err := p.Restore(text)
	if err != nil {
		p.logger.WarnContext(ctx, "snapshot restore stopped at malformed line",
			"location", info.Location,
			"restored", n,
			"error", err)
		return nil, domain.IOError(err, domain.ErrIORead)
	}

	info.Entries = n
	p.logger.InfoContext(ctx, "snapshot loaded",
		"location", info.Location,
		"entries", info.Entries,
		"bytes", info.Bytes,
		"elapsed", time.Since(start))

	return info, nil
}

// Close closes the snapshot sink.
func (p *Persister) Close() error {
	return p.manager.Close()
}
