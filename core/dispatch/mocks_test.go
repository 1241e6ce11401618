package dispatch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/richochetclementine1315/Quill/core/interfaces"
)

// mockHTTPClient implements interfaces.HTTPClient and records every request
type mockHTTPClient struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
	DoFunc   func(req *http.Request, n int) (*mockResponse, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (interfaces.Response, error) {
	var body string
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		body = string(b)
	}

	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.bodies = append(m.bodies, body)
	n := len(m.requests)
	m.mu.Unlock()

	if m.DoFunc == nil {
		return &mockResponse{statusCode: http.StatusOK, body: "{}"}, nil
	}
	resp, err := m.DoFunc(req, n)
	if resp == nil {
		return nil, err
	}
	return resp, err
}

func (m *mockHTTPClient) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// statuses answers the nth request with statuses[n-1], repeating the last one
func statuses(codes ...int) func(*http.Request, int) (*mockResponse, error) {
	return func(req *http.Request, n int) (*mockResponse, error) {
		if n > len(codes) {
			n = len(codes)
		}
		code := codes[n-1]
		if code < 400 {
			return &mockResponse{statusCode: code, body: `{"data":[],"meta":{"page":1,"total":0,"last_page":1}}`}, nil
		}
		return &mockResponse{
			statusCode: code,
			body:       `{"message":"` + http.StatusText(code) + `"}`,
			headers:    map[string]string{"Content-Type": "application/json"},
		}, nil
	}
}

// blockUntilDeadline simulates a backend that never answers
func blockUntilDeadline(req *http.Request, n int) (*mockResponse, error) {
	<-req.Context().Done()
	return nil, req.Context().Err()
}

// mockResponse implements interfaces.Response for testing
type mockResponse struct {
	statusCode int
	body       string
	headers    map[string]string
	cookies    []*http.Cookie
}

func (m *mockResponse) StatusCode() int         { return m.statusCode }
func (m *mockResponse) Body() io.ReadCloser     { return io.NopCloser(strings.NewReader(m.body)) }
func (m *mockResponse) Cookies() []*http.Cookie { return m.cookies }
func (m *mockResponse) Header(key string) string {
	if m.headers == nil {
		return ""
	}
	return m.headers[key]
}

// mockCredentials implements interfaces.Credentials for testing
type mockCredentials struct {
	mu        sync.Mutex
	attached  int
	observed  int
	AttachErr error
}

func (m *mockCredentials) Attach(ctx context.Context, req *http.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AttachErr != nil {
		return m.AttachErr
	}
	m.attached++
	req.AddCookie(&http.Cookie{Name: "jwt", Value: "session"})
	return nil
}

func (m *mockCredentials) Observe(ctx context.Context, req *http.Request, resp interfaces.Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observed++
}

// mockCache implements interfaces.Cache for testing
type mockCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{items: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// mockMetrics records retry delays and attempt outcomes
type mockMetrics struct {
	mu       sync.Mutex
	outcomes []string
	delays   []time.Duration
}

func (m *mockMetrics) ObserveAttempt(endpoint, outcome string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *mockMetrics) ObserveRetry(endpoint string, attempt int, delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays = append(m.delays, delay)
}

func (m *mockMetrics) ObserveProbe(awake bool, d time.Duration) {}
func (m *mockMetrics) SetAwake(awake bool)                      {}

// mockProber implements WakeProber for testing
type mockProber struct {
	mu       sync.Mutex
	probes   int
	marked   int
	resolved bool
}

func (m *mockProber) Probe(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probes++
	m.resolved = true
	return true
}

func (m *mockProber) Awake() (bool, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolved, m.resolved
}

func (m *mockProber) MarkAwake() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.marked++
}

// mockLogger implements interfaces.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(msg string, fields map[string]interface{}) {}
func (m *mockLogger) Info(msg string, fields map[string]interface{})  {}
func (m *mockLogger) Warn(msg string, fields map[string]interface{})  {}
func (m *mockLogger) Error(msg string, fields map[string]interface{}) {}
