package probe

import (
	"io"
	"net/http"
	"strings"

	"github.com/richochetclementine1315/Quill/core/interfaces"
)

// mockHTTPClient implements interfaces.HTTPClient for testing
type mockHTTPClient struct {
	DoFunc func(req *http.Request) (*mockResponse, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (interfaces.Response, error) {
	if m.DoFunc != nil {
		resp, err := m.DoFunc(req)
		if resp == nil {
			return nil, err
		}
		return resp, err
	}
	return &mockResponse{statusCode: http.StatusOK}, nil
}

// mockResponse implements interfaces.Response for testing
type mockResponse struct {
	statusCode int
	body       string
	headers    map[string]string
}

func (m *mockResponse) StatusCode() int {
	return m.statusCode
}

func (m *mockResponse) Body() io.ReadCloser {
	return io.NopCloser(strings.NewReader(m.body))
}

func (m *mockResponse) Header(key string) string {
	if m.headers == nil {
		return ""
	}
	return m.headers[key]
}

func (m *mockResponse) Cookies() []*http.Cookie {
	return nil
}

// mockLogger implements interfaces.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(msg string, fields map[string]interface{}) {}
func (m *mockLogger) Info(msg string, fields map[string]interface{})  {}
func (m *mockLogger) Warn(msg string, fields map[string]interface{})  {}
func (m *mockLogger) Error(msg string, fields map[string]interface{}) {}
