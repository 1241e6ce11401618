package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richochetclementine1315/Quill/core/dispatch"
)

func TestRequestLoggingMiddleware_AssignsRequestID(t *testing.T) {
	logger := &recordingLogger{}
	var seen string
	handler := RequestLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = dispatch.RequestID(r.Context())
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/allpost", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	entry := logger.last()
	assert.Equal(t, "info", entry.level)
	assert.Equal(t, http.StatusCreated, entry.fields["status"])
	assert.Equal(t, seen, entry.fields["request_id"])
	assert.Equal(t, "/api/allpost", entry.fields["path"])
}

func TestRequestLoggingMiddleware_KeepsIncomingRequestID(t *testing.T) {
	logger := &recordingLogger{}
	var seen string
	handler := RequestLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestRequestLoggingMiddleware_ServerErrorsLoggedAsErrors(t *testing.T) {
	logger := &recordingLogger{}
	handler := RequestLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	entry := logger.last()
	assert.Equal(t, "error", entry.level)
	assert.Equal(t, http.StatusServiceUnavailable, entry.fields["status"])
}

func TestRequestLoggingMiddleware_ImplicitOK(t *testing.T) {
	logger := &recordingLogger{}
	handler := RequestLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, http.StatusOK, logger.last().fields["status"])
}
