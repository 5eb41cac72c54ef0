package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/yndnr/kvdis-go/internal/core/command"
	"github.com/yndnr/kvdis-go/internal/core/domain"
	"github.com/yndnr/kvdis-go/internal/storage/snapshot"
	"github.com/yndnr/kvdis-go/internal/telemetry/metric"
)

// Store defines the dictionary operations the engine executes.
type Store interface {
	Set(ctx context.Context, key string, entry domain.Entry)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) bool
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Incr(ctx context.Context, key string) error
	Decr(ctx context.Context, key string) error
	Clear(ctx context.Context)
}

// Persistence defines the snapshot operations behind SAVE and LOAD.
// Both return domain.ErrIO on failure.
type Persistence interface {
	Save(ctx context.Context) (*snapshot.Info, error)
	Load(ctx context.Context) (*snapshot.Info, error)
	Close() error
}

// ErrEngineClosed is returned by Execute after Close.
var ErrEngineClosed = errors.New("service: engine closed")

// Engine executes commands against the store and the snapshot persister.
//
// Engine is safe for concurrent use; the store serializes access to the map.
type Engine struct {
	store   Store
	persist Persistence
	metrics *metric.Registry
	logger  *slog.Logger

	saveMu  sync.Mutex // serializes snapshot writes
	pending sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithMetrics records command and snapshot metrics in r.
func WithMetrics(r *metric.Registry) EngineOption {
	return func(e *Engine) {
		e.metrics = r
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine over store and persist.
func NewEngine(store Store, persist Persistence, opts ...EngineOption) *Engine {
	e := &Engine{
		store:   store,
		persist: persist,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExecuteLine parses and executes one request line and renders the reply.
func (e *Engine) ExecuteLine(ctx context.Context, line string) string {
	cmd, err := command.Parse(line)
	if err != nil {
		e.metrics.RecordCommand("PARSE", err, 0)
		return command.RenderError(err)
	}
	return command.Render(e.Execute(ctx, cmd))
}

// Execute runs one command.
//
// SAVE returns as soon as the snapshot has been scheduled; use SaveAsync to
// observe its completion.
func (e *Engine) Execute(ctx context.Context, cmd command.Command) (command.Result, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return command.Result{}, ErrEngineClosed
	}

	start := time.Now()
	res, err := e.execute(ctx, cmd)
	e.metrics.RecordCommand(cmd.Kind().String(), err, time.Since(start))

	switch {
	case err == nil:
	case domain.ClassOf(err) == "":
		e.logger.ErrorContext(ctx, "command failed", "command", cmd.Kind().String(), "error", err)
	default:
		e.logger.DebugContext(ctx, "command rejected", "command", cmd.Kind().String(), "code", domain.CodeOf(err))
	}
	return res, err
}

func (e *Engine) execute(ctx context.Context, cmd command.Command) (command.Result, error) {
	switch c := cmd.(type) {
	case command.Set:
		e.store.Set(ctx, c.Key, domain.NewEntry(c.Value))
		return command.Void(command.KindSet), nil

	case command.Get:
		v, err := e.store.Get(ctx, c.Key)
		if err != nil {
			return command.Result{}, err
		}
		return command.ValueResult(v), nil

	case command.Del:
		if err := e.store.Del(ctx, c.Key); err != nil {
			return command.Result{}, err
		}
		return command.Void(command.KindDel), nil

	case command.Exists:
		return command.ExistsResult(e.store.Exists(ctx, c.Key)), nil

	case command.Expire:
		if err := e.store.Expire(ctx, c.Key, c.TTL); err != nil {
			return command.Result{}, err
		}
		return command.Void(command.KindExpire), nil

	case command.Incr:
		if err := e.store.Incr(ctx, c.Key); err != nil {
			return command.Result{}, err
		}
		return command.Void(command.KindIncr), nil

	case command.Decr:
		if err := e.store.Decr(ctx, c.Key); err != nil {
			return command.Result{}, err
		}
		return command.Void(command.KindDecr), nil

	case command.Clear:
		e.store.Clear(ctx)
		return command.Void(command.KindClear), nil

	case command.Save:
		e.saveAsync(ctx)
		return command.Void(command.KindSave), nil

	case command.Load:
		if _, err := e.load(ctx); err != nil {
			return command.Result{}, err
		}
		return command.Void(command.KindLoad), nil

	default:
		return command.Result{}, fmt.Errorf("service: unhandled command %T", cmd)
	}
}

// SaveTask tracks one background snapshot.
type SaveTask struct {
	done chan struct{}
	info *snapshot.Info
	err  error
}

// Done is closed when the snapshot has been written or has failed.
func (t *SaveTask) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the snapshot completes or ctx is done.
func (t *SaveTask) Wait(ctx context.Context) (*snapshot.Info, error) {
	select {
	case <-t.done:
		return t.info, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// SaveAsync schedules a snapshot on a background goroutine and returns
// immediately. The snapshot outlives ctx cancellation.
func (e *Engine) SaveAsync(ctx context.Context) (*SaveTask, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, ErrEngineClosed
	}
	return e.saveAsync(ctx), nil
}

// saveAsync must be called with e.mu held for reading.
func (e *Engine) saveAsync(ctx context.Context) *SaveTask {
	task := &SaveTask{done: make(chan struct{})}
	bg := context.WithoutCancel(ctx)

	e.pending.Add(1)
	go func() {
		defer e.pending.Done()
		defer close(task.done)

		task.info, task.err = e.save(bg)
		if task.err != nil {
			e.logger.ErrorContext(bg, "background save failed", "error", task.err)
		}
	}()

	return task
}

// Save writes a snapshot synchronously.
func (e *Engine) Save(ctx context.Context) (*snapshot.Info, error) {
	return e.save(ctx)
}

func (e *Engine) save(ctx context.Context) (*snapshot.Info, error) {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	info, err := e.persist.Save(ctx)
	size := 0
	if info != nil {
		size = info.Bytes
	}
	e.metrics.RecordSnapshot("save", err, size)
	return info, err
}

// Load replaces the store content with the snapshot synchronously.
func (e *Engine) Load(ctx context.Context) (*snapshot.Info, error) {
	return e.load(ctx)
}

func (e *Engine) load(ctx context.Context) (*snapshot.Info, error) {
	info, err := e.persist.Load(ctx)
	size := 0
	if info != nil {
		size = info.Bytes
	}
	e.metrics.RecordSnapshot("load", err, size)
	return info, err
}

// Drain waits for every scheduled snapshot to finish or for ctx to be done.
func (e *Engine) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain snapshots: %w", ctx.Err())
	}
}

// Close rejects further commands, drains pending snapshots, optionally
// writes a final one and closes the snapshot sink.
func (e *Engine) Close(ctx context.Context, finalSave bool) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	var errs []error
	if err := e.Drain(ctx); err != nil {
		errs = append(errs, err)
	}

	if finalSave {
		if info, err := e.save(ctx); err != nil {
			errs = append(errs, fmt.Errorf("final save: %w", err))
		} else {
			e.logger.Info("final snapshot written", "location", info.Location, "entries", info.Entries)
		}
	}

	if err := e.persist.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close snapshot sink: %w", err))
	}

	return errors.Join(errs...)
}
