// Package memory provides the in-memory dictionary for kvdis.
package memory

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/yndnr/kvdis-go/internal/core/domain"
)

// Store maps keys to entries behind one mutex.
//
// Every operation, reads included, holds the lock for its full duration.
// There are no concurrent readers. Sharding the map is the first upgrade
// point and does not change this API.
type Store struct {
	mu      sync.Mutex
	entries map[string]domain.Entry
	now     func() time.Time
}

// Option configures the Store.
type Option func(*Store)

// WithClock sets the clock used for expiration checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]domain.Entry),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Now returns the store's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// Set inserts or overwrites the entry under key.
func (s *Store) Set(_ context.Context, key string, entry domain.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry
}

// Get returns the value under key.
//
// An expired entry yields ErrIsExpired and is left in place.
func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.live(key)
	if err != nil {
		return "", err
	}
	return entry.Value, nil
}

// Del removes key whether or not it has expired.
func (s *Store) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return domain.ErrDoesNotExist
	}
	delete(s.entries, key)
	return nil
}

// Exists reports whether key holds an entry that has not expired.
func (s *Store) Exists(_ context.Context, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.live(key)
	return err == nil
}

// Expire sets the expiration of key to now + ttl, replacing any previous one.
// It never creates an entry.
func (s *Store) Expire(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return domain.ErrDoesNotExist
	}
	s.entries[key] = entry.ExpireAfter(s.now(), ttl)
	return nil
}

// Incr adds one to the integer under key.
func (s *Store) Incr(_ context.Context, key string) error {
	return s.add(key, 1)
}

// Decr subtracts one from the integer under key.
func (s *Store) Decr(_ context.Context, key string) error {
	return s.add(key, -1)
}

// add performs the read-modify-write of INCR/DECR in a single critical
// section. The new entry has no expiration.
func (s *Store) add(key string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.live(key)
	if err != nil {
		return err
	}

	n, err := strconv.ParseInt(entry.Value, 10, 64)
	if err != nil {
		return domain.ErrInvalidOperationType.WithDetails("key %q", key)
	}
	if (delta > 0 && n == math.MaxInt64) || (delta < 0 && n == math.MinInt64) {
		return domain.ErrInvalidOperationType.WithDetails("key %q: integer overflow", key)
	}

	s.entries[key] = domain.NewEntry(strconv.FormatInt(n+delta, 10))
	return nil
}

// Clear removes every entry.
func (s *Store) Clear(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.entries)
}

// Len returns the number of stored entries, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// Stats describes the physical content of the store.
type Stats struct {
	Entries int
	Expired int
}

// Stats counts entries and the subset that is logically expired.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	st := Stats{Entries: len(s.entries)}
	for _, e := range s.entries {
		if e.ExpiredAt(now) {
			st.Expired++
		}
	}
	return st
}

// View runs fn with the live map under the store lock. fn must not retain
// or modify the map.
func (s *Store) View(fn func(entries map[string]domain.Entry) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(s.entries)
}

// Update runs fn with the live map under the store lock. Changes made by fn
// before it fails are kept.
func (s *Store) Update(fn func(entries map[string]domain.Entry) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(s.entries)
}

// live returns the entry under key if it exists and has not expired.
// Callers must hold s.mu.
func (s *Store) live(key string) (domain.Entry, error) {
	entry, ok := s.entries[key]
	if !ok {
		return domain.Entry{}, domain.ErrDoesNotExist
	}
	if entry.ExpiredAt(s.now()) {
		return domain.Entry{}, domain.ErrIsExpired
	}
	return entry, nil
}
