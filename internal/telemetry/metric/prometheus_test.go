package metric

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.registry == nil {
		t.Fatal("registry field is nil")
	}
	if r.CommandsTotal == nil || r.CommandDuration == nil {
		t.Error("command metrics are nil")
	}
	if r.SnapshotsTotal == nil || r.SnapshotBytes == nil {
		t.Error("snapshot metrics are nil")
	}
}

func TestHandler(t *testing.T) {
	body := scrape(t, NewRegistry().Handler())

	if !strings.Contains(body, "go_goroutines") {
		t.Error("expected go_goroutines metric")
	}
	if !strings.Contains(body, "process_") {
		t.Error("expected process metrics")
	}
}

func TestCommandMetrics(t *testing.T) {
	r := NewRegistry()

	r.RecordCommand("SET", nil, time.Millisecond)
	r.RecordCommand("SET", nil, time.Millisecond)
	r.RecordCommand("GET", errors.New("missing"), time.Microsecond)

	body := scrape(t, r.Handler())

	if !strings.Contains(body, `kvdis_commands_total{command="SET",outcome="ok"} 2`) {
		t.Error(`expected kvdis_commands_total{command="SET",outcome="ok"} 2`)
	}
	if !strings.Contains(body, `kvdis_commands_total{command="GET",outcome="error"} 1`) {
		t.Error(`expected kvdis_commands_total{command="GET",outcome="error"} 1`)
	}
	if !strings.Contains(body, `kvdis_command_duration_seconds_count{command="SET"} 2`) {
		t.Error(`expected kvdis_command_duration_seconds_count{command="SET"} 2`)
	}
}

func TestSnapshotAndConnectionMetrics(t *testing.T) {
	r := NewRegistry()

	r.RecordSnapshot("save", nil, 2048)
	r.RecordSnapshot("load", errors.New("boom"), 99)
	r.ConnOpened()
	r.ConnOpened()
	r.ConnClosed()
	r.IncRateLimited()

	body := scrape(t, r.Handler())

	for _, want := range []string{
		`kvdis_snapshot_operations_total{operation="save",outcome="ok"} 1`,
		`kvdis_snapshot_operations_total{operation="load",outcome="error"} 1`,
		"kvdis_snapshot_size_bytes 2048",
		"kvdis_server_connections_total 2",
		"kvdis_server_connections_active 1",
		"kvdis_server_rate_limited_total 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s", want)
		}
	}
}

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry

	r.RecordCommand("GET", nil, time.Millisecond)
	r.RecordSnapshot("save", nil, 1)
	r.ConnOpened()
	r.ConnClosed()
	r.IncRateLimited()
}

func TestCollector(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(NewCollector(func() (int, int) { return 7, 2 }))

	body := scrape(t, r.Handler())

	if !strings.Contains(body, "kvdis_store_keys 7") {
		t.Error("expected kvdis_store_keys 7")
	}
	if !strings.Contains(body, "kvdis_store_keys_expired 2") {
		t.Error("expected kvdis_store_keys_expired 2")
	}
}
