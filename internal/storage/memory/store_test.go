package memory

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/kvdis-go/internal/core/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestStore_SetGetExists(t *testing.T) {
	store := New()
	ctx := context.Background()

	store.Set(ctx, "metanoia", domain.NewEntry("19"))

	got, err := store.Get(ctx, "metanoia")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "19" {
		t.Fatalf("Get = %q, want %q", got, "19")
	}
	if !store.Exists(ctx, "metanoia") {
		t.Fatal("Exists = false, want true")
	}
}

func TestStore_SetOverwritesExpiration(t *testing.T) {
	clock := newFakeClock()
	store := New(WithClock(clock.Now))
	ctx := context.Background()

	store.Set(ctx, "k", domain.NewEntry("v1"))
	if err := store.Expire(ctx, "k", time.Second); err != nil {
		t.Fatalf("Expire: %v", err)
	}
	store.Set(ctx, "k", domain.NewEntry("v2"))
	clock.Advance(time.Hour)

	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "v2" {
		t.Fatalf("Get = %q, want %q", got, "v2")
	}
}

func TestStore_GetMissing(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.Get(ctx, "nope"); !errors.Is(err, domain.ErrDoesNotExist) {
		t.Fatalf("Get err = %v, want %v", err, domain.ErrDoesNotExist)
	}
	if store.Exists(ctx, "nope") {
		t.Fatal("Exists = true for missing key")
	}
}

func TestStore_Del(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.Del(ctx, "k"); !errors.Is(err, domain.ErrDoesNotExist) {
		t.Fatalf("Del missing err = %v, want %v", err, domain.ErrDoesNotExist)
	}

	store.Set(ctx, "k", domain.NewEntry("v"))
	if err := store.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, domain.ErrDoesNotExist) {
		t.Fatalf("Get after Del err = %v, want %v", err, domain.ErrDoesNotExist)
	}
}

func TestStore_ExpireMissingCreatesNothing(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.Expire(ctx, "alex", 3*time.Second); !errors.Is(err, domain.ErrDoesNotExist) {
		t.Fatalf("Expire err = %v, want %v", err, domain.ErrDoesNotExist)
	}
	if store.Len() != 0 {
		t.Fatalf("Len = %d, want 0", store.Len())
	}
}

func TestStore_LazyExpiration(t *testing.T) {
	clock := newFakeClock()
	store := New(WithClock(clock.Now))
	ctx := context.Background()

	store.Set(ctx, "metanoia", domain.NewEntry("19"))
	if err := store.Expire(ctx, "metanoia", time.Second); err != nil {
		t.Fatalf("Expire: %v", err)
	}

	if _, err := store.Get(ctx, "metanoia"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	clock.Advance(2 * time.Second)

	if _, err := store.Get(ctx, "metanoia"); !errors.Is(err, domain.ErrIsExpired) {
		t.Fatalf("Get err = %v, want %v", err, domain.ErrIsExpired)
	}
	if store.Exists(ctx, "metanoia") {
		t.Fatal("Exists = true for expired key")
	}

	// Still physically present.
	if store.Len() != 1 {
		t.Fatalf("Len = %d, want 1", store.Len())
	}
	if st := store.Stats(); st.Expired != 1 || st.Entries != 1 {
		t.Fatalf("Stats = %+v, want 1 entry / 1 expired", st)
	}
	if err := store.Del(ctx, "metanoia"); err != nil {
		t.Fatalf("Del expired: %v", err)
	}
}

func TestStore_ExpireBoundary(t *testing.T) {
	clock := newFakeClock()
	store := New(WithClock(clock.Now))
	ctx := context.Background()

	store.Set(ctx, "k", domain.NewEntry("v"))
	if err := store.Expire(ctx, "k", time.Second); err != nil {
		t.Fatalf("Expire: %v", err)
	}

	clock.Advance(time.Second - time.Nanosecond)
	if !store.Exists(ctx, "k") {
		t.Fatal("entry expired early")
	}
	clock.Advance(time.Nanosecond)
	if store.Exists(ctx, "k") {
		t.Fatal("entry should be expired when now == expiration")
	}
}

func TestStore_ExpireSetsAbsoluteInstant(t *testing.T) {
	clock := newFakeClock()
	store := New(WithClock(clock.Now))
	ctx := context.Background()

	store.Set(ctx, "metanoia", domain.NewEntry("19"))
	start := clock.Now()
	if err := store.Expire(ctx, "metanoia", 5233*time.Second); err != nil {
		t.Fatalf("Expire: %v", err)
	}

	var got time.Time
	_ = store.View(func(entries map[string]domain.Entry) error {
		got = entries["metanoia"].ExpiresAt
		return nil
	})
	if want := start.Add(5233 * time.Second); !got.Equal(want) {
		t.Fatalf("ExpiresAt = %v, want %v", got, want)
	}

	// A second EXPIRE replaces the first.
	clock.Advance(time.Minute)
	if err := store.Expire(ctx, "metanoia", time.Second); err != nil {
		t.Fatalf("Expire: %v", err)
	}
	_ = store.View(func(entries map[string]domain.Entry) error {
		got = entries["metanoia"].ExpiresAt
		return nil
	})
	if want := start.Add(time.Minute + time.Second); !got.Equal(want) {
		t.Fatalf("ExpiresAt = %v, want %v", got, want)
	}
}

func TestStore_ExpireOnExpiredEntryRevives(t *testing.T) {
	clock := newFakeClock()
	store := New(WithClock(clock.Now))
	ctx := context.Background()

	store.Set(ctx, "k", domain.NewEntry("v"))
	_ = store.Expire(ctx, "k", time.Second)
	clock.Advance(time.Minute)

	if err := store.Expire(ctx, "k", time.Hour); err != nil {
		t.Fatalf("Expire on expired entry: %v", err)
	}
	if got, err := store.Get(ctx, "k"); err != nil || got != "v" {
		t.Fatalf("Get = %q, %v; want %q, nil", got, err, "v")
	}
}

func TestStore_IncrDecr(t *testing.T) {
	store := New()
	ctx := context.Background()

	store.Set(ctx, "something", domain.NewEntry("5"))
	for i := 0; i < 3; i++ {
		if err := store.Incr(ctx, "something"); err != nil {
			t.Fatalf("Incr: %v", err)
		}
	}
	if got, _ := store.Get(ctx, "something"); got != "8" {
		t.Fatalf("Get = %q, want %q", got, "8")
	}

	store.Set(ctx, "neg", domain.NewEntry("0"))
	if err := store.Decr(ctx, "neg"); err != nil {
		t.Fatalf("Decr: %v", err)
	}
	if got, _ := store.Get(ctx, "neg"); got != "-1" {
		t.Fatalf("Get = %q, want %q", got, "-1")
	}
}

func TestStore_IncrErrors(t *testing.T) {
	clock := newFakeClock()
	store := New(WithClock(clock.Now))
	ctx := context.Background()

	if err := store.Incr(ctx, "missing"); !errors.Is(err, domain.ErrDoesNotExist) {
		t.Fatalf("Incr missing err = %v, want %v", err, domain.ErrDoesNotExist)
	}

	store.Set(ctx, "expired", domain.NewEntry("1"))
	_ = store.Expire(ctx, "expired", time.Second)
	clock.Advance(time.Minute)
	if err := store.Decr(ctx, "expired"); !errors.Is(err, domain.ErrIsExpired) {
		t.Fatalf("Decr expired err = %v, want %v", err, domain.ErrIsExpired)
	}

	tests := []string{"abc", "1.5", "", "9223372036854775808"}
	for _, v := range tests {
		store.Set(ctx, "bad", domain.NewEntry(v))
		if err := store.Incr(ctx, "bad"); !errors.Is(err, domain.ErrInvalidOperationType) {
			t.Fatalf("Incr(%q) err = %v, want %v", v, err, domain.ErrInvalidOperationType)
		}
		var after domain.Entry
		_ = store.View(func(entries map[string]domain.Entry) error {
			after = entries["bad"]
			return nil
		})
		if after != domain.NewEntry(v) {
			t.Fatalf("entry changed after failed Incr: %+v", after)
		}
	}
}

func TestStore_IncrOverflow(t *testing.T) {
	store := New()
	ctx := context.Background()

	store.Set(ctx, "max", domain.NewEntry("9223372036854775807"))
	if err := store.Incr(ctx, "max"); !errors.Is(err, domain.ErrInvalidOperationType) {
		t.Fatalf("Incr overflow err = %v, want %v", err, domain.ErrInvalidOperationType)
	}
	store.Set(ctx, "min", domain.NewEntry("-9223372036854775808"))
	if err := store.Decr(ctx, "min"); !errors.Is(err, domain.ErrInvalidOperationType) {
		t.Fatalf("Decr overflow err = %v, want %v", err, domain.ErrInvalidOperationType)
	}
}

func TestStore_IncrDropsExpiration(t *testing.T) {
	clock := newFakeClock()
	store := New(WithClock(clock.Now))
	ctx := context.Background()

	store.Set(ctx, "k", domain.NewEntry("1"))
	_ = store.Expire(ctx, "k", time.Second)
	if err := store.Incr(ctx, "k"); err != nil {
		t.Fatalf("Incr: %v", err)
	}

	clock.Advance(time.Hour)
	if got, err := store.Get(ctx, "k"); err != nil || got != "2" {
		t.Fatalf("Get = %q, %v; want %q, nil", got, err, "2")
	}
}

func TestStore_ConcurrentIncr(t *testing.T) {
	store := New()
	ctx := context.Background()
	store.Set(ctx, "counter", domain.NewEntry("0"))

	const workers, perWorker = 16, 250
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if err := store.Incr(ctx, "counter"); err != nil {
					t.Errorf("Incr: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, "counter")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if want := strconv.Itoa(workers * perWorker); got != want {
		t.Fatalf("counter = %s, want %s", got, want)
	}
}

func TestStore_Clear(t *testing.T) {
	store := New()
	ctx := context.Background()

	store.Set(ctx, "a", domain.NewEntry("1"))
	store.Set(ctx, "b", domain.NewEntry("2"))
	store.Clear(ctx)

	if store.Len() != 0 {
		t.Fatalf("Len = %d, want 0", store.Len())
	}
	store.Clear(ctx)
}

func TestStore_UpdateKeepsPartialChanges(t *testing.T) {
	store := New()
	ctx := context.Background()
	store.Set(ctx, "old", domain.NewEntry("x"))

	boom := errors.New("boom")
	err := store.Update(func(entries map[string]domain.Entry) error {
		clear(entries)
		entries["new"] = domain.NewEntry("y")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update err = %v, want %v", err, boom)
	}
	if store.Exists(ctx, "old") {
		t.Fatal("old entry should have been cleared")
	}
	if !store.Exists(ctx, "new") {
		t.Fatal("partial insert should be kept")
	}
}

func BenchmarkStore_SetGet(b *testing.B) {
	store := New()
	ctx := context.Background()
	entry := domain.NewEntry("value")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := strconv.Itoa(i % 1024)
		store.Set(ctx, key, entry)
		_, _ = store.Get(ctx, key)
	}
}

func BenchmarkStore_IncrParallel(b *testing.B) {
	store := New()
	ctx := context.Background()
	store.Set(ctx, "counter", domain.NewEntry("0"))

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = store.Incr(ctx, "counter")
		}
	})
}
