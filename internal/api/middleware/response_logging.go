package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/authors-api/internal/platform/logger"
	"github.com/phrazzld/authors-api/internal/redact"
)

// ResponseLoggingConfig controls what NewResponseLogger records.
type ResponseLoggingConfig struct {
	// LogBodies enables capturing the response body.
	LogBodies bool
	// MaxBodyLength caps the logged body; longer bodies are truncated.
	MaxBodyLength int
}

// NewResponseLogger returns middleware that logs every completed response
// with its status, size and duration, and optionally its redacted body.
func NewResponseLogger(base *slog.Logger, cfg ResponseLoggingConfig) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			var body bytes.Buffer
			if cfg.LogBodies {
				ww.Tee(&limitedWriter{buf: &body, limit: captureLimit(cfg.MaxBodyLength)})
			}

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			}
			if cfg.LogBodies && body.Len() > 0 {
				attrs = append(attrs, slog.String("body", redact.Body(body.Bytes(), cfg.MaxBodyLength)))
			}

			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.FromContextOrDefault(r.Context(), base).
				LogAttrs(r.Context(), level, "request completed", attrs...)
		})
	}
}

// captureLimit keeps one byte past the log limit so redact.Body can tell a
// body that fits from one that was cut.
func captureLimit(maxBodyLength int) int {
	if maxBodyLength <= 0 {
		return 0
	}
	return maxBodyLength + 1
}

// limitedWriter stores at most limit bytes and silently drops the rest.
// A limit of zero stores everything.
type limitedWriter struct {
	buf   *bytes.Buffer
	limit int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	if lw.limit > 0 {
		remaining := lw.limit - lw.buf.Len()
		if remaining <= 0 {
			return n, nil
		}
		if len(p) > remaining {
			p = p[:remaining]
		}
	}
	lw.buf.Write(p)
	return n, nil
}
