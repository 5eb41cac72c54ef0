package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/yndnr/kvdis-go/internal/server/httpserver/handler"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Source is read by /debug/dump.
	Source handler.EntrySource

	// Metrics serves /metrics. Nil answers 404.
	Metrics http.Handler

	// Logger for request logging.
	Logger *slog.Logger
}

// NewRouter creates the side-car router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	h := handler.New(cfg.Source, log)

	// Order: Recover -> RequestID -> AccessLog -> Handler
	wrap := func(next http.Handler) http.Handler {
		return Chain(next, Recover(log), RequestID(), AccessLog(log))
	}

	mux := http.NewServeMux()
	mux.Handle("GET /health", wrap(h))
	mux.Handle("GET /debug/dump", wrap(h))
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", wrap(cfg.Metrics))
	}

	return mux
}
