package domain

import "time"

// timeNow is the clock used by helpers in this package; tests may replace it.
var timeNow = time.Now

// Entry is one stored value and its optional absolute expiration.
//
// A zero ExpiresAt means the entry never expires. Once stored, ExpiresAt is
// always an absolute instant, never a relative duration.
type Entry struct {
	Value     string
	ExpiresAt time.Time
}

// NewEntry returns an entry without expiration.
func NewEntry(value string) Entry {
	return Entry{Value: value}
}

// HasExpiration reports whether an expiration instant is set.
func (e Entry) HasExpiration() bool {
	return !e.ExpiresAt.IsZero()
}

// ExpiredAt reports whether the entry is logically expired at now.
// An entry is expired once now >= ExpiresAt.
func (e Entry) ExpiredAt(now time.Time) bool {
	return e.HasExpiration() && !now.Before(e.ExpiresAt)
}

// IsExpired reports whether the entry is logically expired right now.
func (e Entry) IsExpired() bool {
	return e.ExpiredAt(timeNow())
}

// ExpireAfter returns a copy of e expiring d after now.
func (e Entry) ExpireAfter(now time.Time, d time.Duration) Entry {
	e.ExpiresAt = now.Add(d)
	return e
}
