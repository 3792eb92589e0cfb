package web

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/marga/uploader-devserver/internal/logging"
)

const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestIDFromContext returns the ID assigned by the access log, or "-".
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return "-"
}

// fieldLogger is implemented by loggers that can emit structured fields.
type fieldLogger interface {
	Infow(component string, msg string, fields map[string]interface{})
}

// WithAccessLog assigns a request ID, echoes it in X-Request-ID and logs one
// line per request once the response is complete.
func WithAccessLog(logger logging.Logger, next http.Handler) http.Handler {
	if logger == nil {
		logger = logging.NoopLogger{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		if fl, ok := logger.(fieldLogger); ok {
			fl.Infow("access", "request", map[string]interface{}{
				"request_id":  id,
				"method":      r.Method,
				"path":        r.URL.Path,
				"status_code": rw.statusCode,
				"bytes":       rw.written,
				"duration":    duration.String(),
				"remote_addr": r.RemoteAddr,
				"user_agent":  r.UserAgent(),
			})
			return
		}
		logger.Infof("access", "%s %s %s %d %d %v %s", id, r.Method, r.URL.Path, rw.statusCode, rw.written, duration, r.RemoteAddr)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code and size.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	written     int64
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(p []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(p)
	rw.written += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
