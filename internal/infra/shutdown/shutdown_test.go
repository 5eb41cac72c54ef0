package shutdown

import (
	"context"
	"errors"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"
)

func waitAsync(h *Handler) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- h.Wait()
	}()
	return errCh
}

func await(t *testing.T, errCh <-chan error) error {
	t.Helper()

	select {
	case err := <-errCh:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not complete in time")
		return nil
	}
}

func TestHandler_ReverseOrder(t *testing.T) {
	h := NewHandler(5*time.Second, nil)

	var mu sync.Mutex
	var order []string
	for _, name := range []string{"engine", "lineserver", "http"} {
		h.OnShutdown(name, func(context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		})
	}

	errCh := waitAsync(h)
	h.Trigger()
	if err := await(t, errCh); err != nil {
		t.Errorf("Wait() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if got := strings.Join(order, ","); got != "http,lineserver,engine" {
		t.Errorf("hooks ran as %s, want http,lineserver,engine", got)
	}

	select {
	case <-h.Done():
	default:
		t.Error("Done channel should be closed after Wait completes")
	}
}

func TestHandler_Signal(t *testing.T) {
	h := NewHandler(5*time.Second, nil)

	called := make(chan struct{}, 1)
	h.OnShutdown("probe", func(context.Context) error {
		called <- struct{}{}
		return nil
	})

	errCh := waitAsync(h)
	time.Sleep(50 * time.Millisecond)
	syscall.Kill(syscall.Getpid(), syscall.SIGTERM)

	if err := await(t, errCh); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
	select {
	case <-called:
	default:
		t.Error("hook was not called on SIGTERM")
	}
}

func TestHandler_HookErrorsJoined(t *testing.T) {
	h := NewHandler(5*time.Second, nil)

	errA := errors.New("a failed")
	errB := errors.New("b failed")
	var ranC bool

	h.OnShutdown("c", func(context.Context) error { ranC = true; return nil })
	h.OnShutdown("b", func(context.Context) error { return errB })
	h.OnShutdown("a", func(context.Context) error { return errA })

	errCh := waitAsync(h)
	h.Trigger()
	h.Trigger()
	err := await(t, errCh)

	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("Wait() error = %v, want both hook errors", err)
	}
	if !ranC {
		t.Error("hook after failures did not run")
	}
}

func TestHandler_SharedDeadline(t *testing.T) {
	h := NewHandler(50*time.Millisecond, nil)

	h.OnShutdown("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	errCh := waitAsync(h)
	h.Trigger()
	if err := await(t, errCh); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want deadline exceeded", err)
	}
}
