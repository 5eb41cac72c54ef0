package lineserver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/kvdis-go/internal/telemetry/logger"
	"github.com/yndnr/kvdis-go/internal/telemetry/metric"
)

const (
	replyLineTooLong = "[Error]: line too long"
	replyRateLimited = "[Error]: rate limit exceeded"
)

// Executor runs one command line and returns the reply line.
type Executor interface {
	ExecuteLine(ctx context.Context, line string) string
}

// Config holds the line server configuration.
type Config struct {
	// Addr is the TCP listen address.
	Addr string
	// ReadTimeout bounds reading the rest of a line once its first byte arrived.
	ReadTimeout time.Duration
	// WriteTimeout bounds writing a reply.
	WriteTimeout time.Duration
	// IdleTimeout bounds the wait for the next line.
	IdleTimeout time.Duration
	// MaxLineBytes is the longest accepted command line.
	MaxLineBytes int
	// RateLimit is the number of lines per second per client IP. 0 disables it.
	RateLimit int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Addr:         "127.0.0.1:7777",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  5 * time.Minute,
		MaxLineBytes: 64 * 1024,
	}
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records connection and rate limit metrics into r.
func WithMetrics(r *metric.Registry) Option {
	return func(s *Server) {
		s.metrics = r
	}
}

// Server accepts TCP connections and answers one reply line per command line.
type Server struct {
	cfg      Config
	exec     Executor
	logger   *slog.Logger
	metrics  *metric.Registry
	limiters *limiterRegistry

	mu      sync.Mutex
	ln      net.Listener
	conns   map[net.Conn]struct{}
	running atomic.Bool
	wg      sync.WaitGroup
}

// New creates a line server. Zero timeouts and line limits fall back to DefaultConfig.
func New(cfg Config, exec Executor, opts ...Option) *Server {
	def := DefaultConfig()
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}
	if cfg.MaxLineBytes <= 0 {
		cfg.MaxLineBytes = def.MaxLineBytes
	}

	s := &Server{
		cfg:    cfg,
		exec:   exec,
		logger: slog.Default(),
		conns:  make(map[net.Conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.RateLimit > 0 {
		s.limiters = newLimiterRegistry(cfg.RateLimit)
	}
	return s
}

// Start listens on the configured address and serves connections in the background.
// ctx is handed to every executed command.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	s.Serve(ctx, ln)
	return nil
}

// Serve accepts connections from ln in the background.
func (s *Server) Serve(ctx context.Context, ln net.Listener) {
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.running.Store(true)

	s.logger.Info("line server listening", "address", ln.Addr().String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ctx, ln); err != nil {
			s.logger.Error("accept loop stopped", "error", err)
		}
	}()
}

// Addr returns the listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Shutdown stops accepting, lets in-flight commands finish and waits for
// every connection goroutine to exit or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	s.mu.Lock()
	var err error
	if s.ln != nil {
		if cerr := s.ln.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = cerr
		}
	}
	// Wake connections blocked waiting for their next line.
	for c := range s.conns {
		_ = c.SetReadDeadline(time.Now())
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.mu.Lock()
		for c := range s.conns {
			_ = c.Close()
		}
		s.mu.Unlock()
		return ctx.Err()
	}

	s.logger.Info("line server stopped")
	return err
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		c, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			return err
		}

		if !s.track(c) {
			_ = c.Close()
			return nil
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(c)
			s.serveConn(ctx, c)
		}()
	}
}

func (s *Server) track(c net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running.Load() {
		return false
	}
	s.conns[c] = struct{}{}
	return true
}

func (s *Server) untrack(c net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, c)
}

func (s *Server) serveConn(ctx context.Context, c net.Conn) {
	defer c.Close()

	connID := ulid.Make().String()
	remote := c.RemoteAddr()
	ctx = logger.WithConnID(ctx, connID)
	log := s.logger.With("remote", remote.String())

	s.metrics.ConnOpened()
	defer s.metrics.ConnClosed()
	log.DebugContext(ctx, "connection opened")
	defer log.DebugContext(ctx, "connection closed")

	var limit *rate.Limiter
	if s.limiters != nil {
		ip := hostOf(remote)
		limit = s.limiters.acquire(ip)
		defer s.limiters.release(ip)
	}

	br := bufio.NewReader(c)
	bw := bufio.NewWriter(c)

	for {
		// The connection may stay idle between lines.
		if !s.armRead(c, s.cfg.IdleTimeout) {
			return
		}
		if _, err := br.Peek(1); err != nil {
			s.logReadError(ctx, log, err)
			return
		}
		if !s.armRead(c, s.cfg.ReadTimeout) {
			return
		}
		line, err := readLine(br, s.cfg.MaxLineBytes)
		if err != nil {
			if errors.Is(err, ErrLineTooLong) {
				log.WarnContext(ctx, "line limit exceeded", "max_line_bytes", s.cfg.MaxLineBytes)
				_ = s.reply(c, bw, replyLineTooLong)
				return
			}
			s.logReadError(ctx, log, err)
			return
		}

		reply := replyRateLimited
		if limit == nil || limit.Allow() {
			reply = s.exec.ExecuteLine(ctx, line)
		} else {
			s.metrics.IncRateLimited()
			log.DebugContext(ctx, "line dropped by rate limit")
		}

		if err := s.reply(c, bw, reply); err != nil {
			log.DebugContext(ctx, "write failed", "error", err)
			return
		}
	}
}

// armRead sets the read deadline unless the server is shutting down.
// It holds mu so it cannot overwrite the deadline Shutdown sets.
func (s *Server) armRead(c net.Conn, d time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running.Load() {
		return false
	}
	return c.SetReadDeadline(time.Now().Add(d)) == nil
}

func (s *Server) reply(c net.Conn, bw *bufio.Writer, line string) error {
	if err := c.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
		return err
	}
	if _, err := bw.WriteString(line); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	return bw.Flush()
}

func (s *Server) logReadError(ctx context.Context, log *slog.Logger, err error) {
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		if s.running.Load() {
			log.DebugContext(ctx, "connection timed out")
		}
		return
	}
	log.DebugContext(ctx, "connection read error", "error", err)
}
