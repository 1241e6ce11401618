// ABOUTME: Request logging middleware for the gateway
// ABOUTME: Assigns a request id, forwards it to the backend and logs status and timing

package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/richochetclementine1315/Quill/core/dispatch"
	"github.com/richochetclementine1315/Quill/core/interfaces"
	httpInfra "github.com/richochetclementine1315/Quill/infrastructure/http/standard"
)

// slowRequest is the duration above which a request is logged as a warning.
// A cold backend makes the first calls slow, so this sits above one wake-up.
const slowRequest = 90 * time.Second

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.ResponseWriter.WriteHeader(code)
		rw.written = true
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// RequestLoggingMiddleware logs every request. An incoming X-Request-ID is kept,
// otherwise a new one is generated; either way it is echoed to the browser and
// sent along with every backend call made for the request.
func RequestLoggingMiddleware(logger interfaces.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(httpInfra.RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}
			w.Header().Set(httpInfra.RequestIDHeader, requestID)
			r = r.WithContext(dispatch.WithRequestID(r.Context(), requestID))

			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			fields := map[string]interface{}{
				"request_id":  requestID,
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      wrapped.statusCode,
				"remote_ip":   extractIP(r),
				"duration_ms": duration.Milliseconds(),
			}

			switch {
			case wrapped.statusCode >= 500:
				logger.Error("Request failed with server error", fields)
			case duration > slowRequest:
				logger.Warn("Slow request detected", fields)
			default:
				logger.Info("Request completed", fields)
			}
		})
	}
}

// GetRequestID returns the request id assigned by RequestLoggingMiddleware
func GetRequestID(r *http.Request) string {
	return dispatch.RequestID(r.Context())
}
