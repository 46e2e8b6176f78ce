package logging

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/evcraddock/comment-panel/internal/auth"
)

// QuietPaths are the path prefixes the servers pass to RequestLogger.
var QuietPaths = []string{"/static/", "/health"}

type annotationsKey struct{}

// annotations collects handler-supplied attributes for the request log line.
type annotations struct {
	mu   sync.Mutex
	args []any
}

// Annotate adds key/value pairs to the log line RequestLogger writes for the
// request carrying ctx. Outside RequestLogger it does nothing.
func Annotate(ctx context.Context, args ...any) {
	a, ok := ctx.Value(annotationsKey{}).(*annotations)
	if !ok {
		return
	}
	a.mu.Lock()
	a.args = append(a.args, args...)
	a.mu.Unlock()
}

// recorder captures the status code and body size of a response.
type recorder struct {
	http.ResponseWriter
	status  int
	written int64
}

func (rec *recorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *recorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	rec.written += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rec *recorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

// RequestLogger returns middleware writing one line per request to logger:
// the visitor address, status, size, duration and anything handlers added
// with Annotate. Paths starting with one of quiet are not logged.
func RequestLogger(logger *slog.Logger, quiet ...string) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range quiet {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			start := time.Now()
			ann := &annotations{}
			ctx := context.WithValue(r.Context(), annotationsKey{}, ann)
			rec := &recorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r.WithContext(ctx))

			level := slog.LevelInfo
			switch {
			case rec.status >= 500:
				level = slog.LevelError
			case rec.status >= 400:
				level = slog.LevelWarn
			}

			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"status", rec.status,
				"bytes", rec.written,
				"duration", time.Since(start).String(),
				"client", auth.ClientIP(r),
			}
			ann.mu.Lock()
			args = append(args, ann.args...)
			ann.mu.Unlock()

			logger.Log(ctx, level, "request", args...)
		})
	}
}
