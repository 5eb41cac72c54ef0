package repl

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHistory_Add(t *testing.T) {
	h := NewHistory("")
	h.Add("GET a")
	h.Add("GET a")
	h.Add("SET a 1")
	h.Add("GET a")

	if got := len(h.Entries()); got != 3 {
		t.Errorf("len = %d, want 3 (immediate repeats collapse)", got)
	}
}

func TestHistory_Add_MaxSize(t *testing.T) {
	h := NewHistory("")
	h.maxSize = 3

	for _, cmd := range []string{"cmd1", "cmd2", "cmd3", "cmd4"} {
		h.Add(cmd)
	}

	entries := h.Entries()
	if len(entries) != 3 || entries[0] != "cmd2" {
		t.Errorf("entries = %v, want oldest evicted", entries)
	}
}

func TestHistory_Get(t *testing.T) {
	h := NewHistory("")
	h.Add("first")
	h.Add("second")
	h.Add("third")

	tests := []struct {
		index int
		want  string
	}{
		{0, "third"},
		{1, "second"},
		{2, "first"},
		{3, ""},
		{-1, ""},
	}

	for _, tt := range tests {
		if got := h.Get(tt.index); got != tt.want {
			t.Errorf("Get(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestHistory_SaveLoad(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", ".kvdis", "history")

	h := NewHistory(file)
	h.Add("SET a 1")
	h.Add("GET a")
	if err := h.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(file)
	if err != nil {
		t.Fatalf("history file not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("history file mode = %o, want 600", perm)
	}

	h2 := NewHistory(file)
	if err := h2.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := h2.Entries(); len(got) != 2 || got[0] != "SET a 1" || got[1] != "GET a" {
		t.Errorf("loaded %v", got)
	}
}

func TestHistory_NoFile(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "missing"))
	if err := h.Load(); err != nil {
		t.Errorf("Load() of a missing file error = %v", err)
	}

	mem := NewHistory("")
	mem.Add("GET a")
	if err := mem.Save(); err != nil {
		t.Errorf("Save() without file error = %v", err)
	}
}
