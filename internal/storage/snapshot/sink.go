package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNoSnapshot indicates the sink holds no snapshot yet.
var ErrNoSnapshot = errors.New("snapshot: no snapshot")

// Sink stores exactly one snapshot blob at a fixed location.
//
// Write replaces the previous blob. Read returns an error wrapping
// ErrNoSnapshot when nothing has been written yet.
type Sink interface {
	Write(ctx context.Context, data []byte) error
	Read(ctx context.Context) ([]byte, error)
	Location() string
	Close() error
}

// FileSink keeps the snapshot in a single file.
//
// Writes go to a temporary file in the same directory which is synced and
// then renamed over the target, so a reader sees either the old or the new
// snapshot, never a torn one.
type FileSink struct {
	path string
}

// NewFileSink creates a sink writing to path.
func NewFileSink(path string) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("snapshot: path is required")
	}
	return &FileSink{path: path}, nil
}

// Location returns the snapshot path.
func (s *FileSink) Location() string {
	return s.path
}

// Write atomically replaces the snapshot file.
func (s *FileSink) Write(_ context.Context, data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	success = true
	return nil
}

// Read returns the snapshot file content.
func (s *FileSink) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, s.path)
		}
		return nil, err
	}
	return data, nil
}

// Close is a no-op.
func (s *FileSink) Close() error {
	return nil
}
