package httpserver

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/kvdis-go/internal/server/httpserver/handler"
	"github.com/yndnr/kvdis-go/internal/telemetry/logger"
)

const (
	headerRequestID = "X-Request-ID"
	headerErrorCode = "X-Error-Code"

	codeInternal = "KV-HTTP-5000"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares to h. The first one runs outermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// RequestID tags each request with an ID, keeping an incoming X-Request-ID.
// The ID is echoed in the response and attached to the request context so
// that context-aware log records carry it.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(headerRequestID)
			if id == "" {
				id = "req-" + ulid.Make().String()
				r.Header.Set(headerRequestID, id)
			}
			w.Header().Set(headerRequestID, id)

			next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
		})
	}
}

// AccessLog logs every completed request. Successful requests log at debug
// level so that scrapes of /metrics stay quiet.
func AccessLog(log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			level := slog.LevelDebug
			switch {
			case rec.status >= 500:
				level = slog.LevelError
			case rec.status >= 400:
				level = slog.LevelWarn
			}
			log.Log(r.Context(), level, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"client_ip", remoteIP(r))
		})
	}
}

// Recover turns a handler panic into a 500 response in the JSON envelope.
// http.ErrAbortHandler is re-raised.
func Recover(log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}
				log.ErrorContext(r.Context(), "panic recovered", "panic", v, "path", r.URL.Path)

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set(headerErrorCode, codeInternal)
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(handler.NewErrorResponse(
					r.Header.Get(headerRequestID), codeInternal, "internal server error"))
			}()

			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// remoteIP returns the peer address of r without its port. Proxy headers
// are ignored; the side-car is meant to be reached directly.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
