package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/kvdis-go/internal/core/domain"
	"github.com/yndnr/kvdis-go/internal/storage/memory"
)

var testEpoch = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func newTestPersister(t *testing.T, path, passphrase string, now *time.Time) (*memory.Store, *Persister) {
	t.Helper()

	sink, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	mgr, err := NewManager(Config{Sink: sink, Passphrase: passphrase})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	store := memory.New(memory.WithClock(func() time.Time { return *now }))
	return store, NewPersister(store, mgr, nil)
}

func TestPersister_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	now := testEpoch
	path := filepath.Join(t.TempDir(), "kvdis.csv")
	store, p := newTestPersister(t, path, "", &now)

	store.Set(ctx, "plain", domain.NewEntry("1"))
	store.Set(ctx, "ttl", domain.Entry{Value: "v", ExpiresAt: testEpoch.Add(time.Hour)})
	store.Set(ctx, "dead", domain.Entry{Value: "x", ExpiresAt: testEpoch.Add(-time.Minute)})

	info, err := p.Save(ctx)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if info.Entries != 3 {
		t.Errorf("Info.Entries = %d, want 3", info.Entries)
	}
	if info.Sealed {
		t.Error("Info.Sealed = true, want false")
	}
	if len(info.Checksum) != 16 {
		t.Errorf("Info.Checksum = %q, want 16 hex chars", info.Checksum)
	}

	store.Clear(ctx)
	store.Set(ctx, "stray", domain.NewEntry("gone after load"))

	loaded, err := p.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Entries != 3 {
		t.Errorf("loaded Entries = %d, want 3", loaded.Entries)
	}
	if loaded.Checksum != info.Checksum {
		t.Errorf("checksum changed: %s != %s", loaded.Checksum, info.Checksum)
	}

	if store.Exists(ctx, "stray") {
		t.Error("stray key survived LOAD")
	}
	if v, err := store.Get(ctx, "plain"); err != nil || v != "1" {
		t.Errorf("Get(plain) = %q, %v", v, err)
	}
	if v, err := store.Get(ctx, "ttl"); err != nil || v != "v" {
		t.Errorf("Get(ttl) = %q, %v", v, err)
	}
	if _, err := store.Get(ctx, "dead"); !errors.Is(err, domain.ErrIsExpired) {
		t.Errorf("Get(dead) error = %v, want ErrIsExpired", err)
	}

	now = testEpoch.Add(time.Hour)
	if _, err := store.Get(ctx, "ttl"); !errors.Is(err, domain.ErrIsExpired) {
		t.Errorf("Get(ttl) after expiry error = %v, want ErrIsExpired", err)
	}
}

func TestPersister_FileFormat(t *testing.T) {
	ctx := context.Background()
	now := testEpoch
	path := filepath.Join(t.TempDir(), "kvdis.csv")
	store, p := newTestPersister(t, path, "", &now)

	store.Set(ctx, "speed", domain.NewEntry("12"))
	if err := store.Expire(ctx, "speed", 90*time.Second); err != nil {
		t.Fatal(err)
	}

	if _, err := p.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), "speed,12,2026-10-17T12:01:30Z\n"; got != want {
		t.Errorf("file = %q, want %q", got, want)
	}
}

func TestPersister_EmptyStore(t *testing.T) {
	ctx := context.Background()
	now := testEpoch
	path := filepath.Join(t.TempDir(), "kvdis.csv")
	store, p := newTestPersister(t, path, "", &now)

	if _, err := p.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}
	store.Set(ctx, "k", domain.NewEntry("v"))

	info, err := p.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if info.Entries != 0 || store.Len() != 0 {
		t.Errorf("after loading empty snapshot: entries=%d len=%d", info.Entries, store.Len())
	}
}

func TestPersister_LoadMissingLeavesStore(t *testing.T) {
	ctx := context.Background()
	now := testEpoch
	path := filepath.Join(t.TempDir(), "absent.csv")
	store, p := newTestPersister(t, path, "", &now)

	store.Set(ctx, "k", domain.NewEntry("v"))

	_, err := p.Load(ctx)
	if !errors.Is(err, domain.ErrIO) {
		t.Fatalf("Load error = %v, want ErrIO", err)
	}
	if !errors.Is(err, domain.ErrIORead) {
		t.Errorf("Load error = %v, want ErrIORead cause", err)
	}
	if !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Load error = %v, want ErrNoSnapshot cause", err)
	}
	if v, _ := store.Get(ctx, "k"); v != "v" {
		t.Error("store changed after failed read")
	}
}

func TestPersister_RestorePartialOnMalformedLine(t *testing.T) {
	ctx := context.Background()
	now := testEpoch
	path := filepath.Join(t.TempDir(), "kvdis.csv")
	store, p := newTestPersister(t, path, "", &now)

	if err := os.WriteFile(path, []byte("a,1\nb,2\nc,3,not-a-time\nd,4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	store.Set(ctx, "old", domain.NewEntry("x"))

	_, err := p.Load(ctx)
	if !errors.Is(err, domain.ErrIO) || !errors.Is(err, domain.ErrTimestampRead) {
		t.Fatalf("Load error = %v, want ErrIO wrapping ErrTimestampRead", err)
	}

	var de *domain.Error
	if !errors.As(err, &de) {
		t.Fatalf("Load error %T is not a domain error", err)
	}
	if got := de.Display(); got != "persistence failure: could not read timestamp" {
		t.Errorf("Display() = %q", got)
	}

	if store.Exists(ctx, "old") {
		t.Error("old key survived restore")
	}
	for _, k := range []string{"a", "b"} {
		if !store.Exists(ctx, k) {
			t.Errorf("key %q restored before the bad line is missing", k)
		}
	}
	if store.Exists(ctx, "d") {
		t.Error("key after the bad line was restored")
	}
}

func TestPersister_Sealed(t *testing.T) {
	ctx := context.Background()
	now := testEpoch
	path := filepath.Join(t.TempDir(), "kvdis.csv")
	store, p := newTestPersister(t, path, "correct horse", &now)

	store.Set(ctx, "secret", domain.NewEntry("42"))

	info, err := p.Save(ctx)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !info.Sealed {
		t.Error("Info.Sealed = false, want true")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "KVDSEAL1") {
		t.Errorf("sealed file lacks magic prefix")
	}
	if strings.Contains(string(data), "secret") {
		t.Errorf("sealed file contains plaintext key")
	}

	store.Clear(ctx)
	if _, err := p.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v, err := store.Get(ctx, "secret"); err != nil || v != "42" {
		t.Errorf("Get(secret) = %q, %v", v, err)
	}

	t.Run("wrong passphrase", func(t *testing.T) {
		_, other := newTestPersister(t, path, "battery staple", &now)
		if _, err := other.Load(ctx); !errors.Is(err, ErrDecrypt) {
			t.Errorf("Load error = %v, want ErrDecrypt", err)
		}
	})

	t.Run("no passphrase", func(t *testing.T) {
		_, plain := newTestPersister(t, path, "", &now)
		if _, err := plain.Load(ctx); !errors.Is(err, ErrSealed) {
			t.Errorf("Load error = %v, want ErrSealed", err)
		}
	})
}

func TestNewManager_Validation(t *testing.T) {
	if _, err := NewManager(Config{}); err == nil {
		t.Error("NewManager without sink should fail")
	}

	sink, _ := NewFileSink(filepath.Join(t.TempDir(), "x"))
	if _, err := NewManager(Config{Sink: sink, Passphrase: "short"}); !errors.Is(err, ErrPassphraseTooShort) {
		t.Errorf("NewManager short passphrase error = %v", err)
	}
}

func TestFileSink_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(filepath.Join(dir, "kvdis.csv"))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if err := sink.Write(context.Background(), []byte("k,v\n")); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("dir holds %d files, want 1", len(entries))
	}
}
