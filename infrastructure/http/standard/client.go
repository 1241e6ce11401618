// ABOUTME: Standard HTTP transport implementing the single-exchange HTTPClient interface
// ABOUTME: Retries live in the dispatcher; this layer only sends, logs and wraps responses

package standard

import (
	"io"
	"net/http"
	"time"

	"github.com/richochetclementine1315/Quill/core/interfaces"
)

const defaultUserAgent = "QuillClient/1.0"

// StandardHTTPClient implements the HTTPClient interface using net/http
type StandardHTTPClient struct {
	client    *http.Client
	userAgent string
}

// NewStandardHTTPClient creates a transport whose outer timeout is a safety net;
// the dispatcher bounds each attempt through the request context.
func NewStandardHTTPClient(timeout time.Duration) *StandardHTTPClient {
	return &StandardHTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent: defaultUserAgent,
	}
}

// WithUserAgent overrides the User-Agent sent when the request has none
func (c *StandardHTTPClient) WithUserAgent(userAgent string) *StandardHTTPClient {
	if userAgent != "" {
		c.userAgent = userAgent
	}
	return c
}

// WithLogging routes every exchange through a logging round tripper
func (c *StandardHTTPClient) WithLogging(logger interfaces.Logger) *StandardHTTPClient {
	base := c.client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.client.Transport = &LoggingRoundTripper{Transport: base, Logger: logger}
	return c
}

// Do performs exactly one HTTP exchange
func (c *StandardHTTPClient) Do(req *http.Request) (interfaces.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	return &httpResponse{
		statusCode: resp.StatusCode,
		body:       resp.Body,
		headers:    resp.Header,
		cookies:    resp.Cookies(),
	}, nil
}

// httpResponse implements the Response interface
type httpResponse struct {
	statusCode int
	body       io.ReadCloser
	headers    http.Header
	cookies    []*http.Cookie
}

// StatusCode returns the HTTP status code
func (r *httpResponse) StatusCode() int {
	return r.statusCode
}

// Body returns the response body
func (r *httpResponse) Body() io.ReadCloser {
	return r.body
}

// Header returns the value of the specified header
func (r *httpResponse) Header(key string) string {
	return r.headers.Get(key)
}

// Cookies returns the cookies set by the response
func (r *httpResponse) Cookies() []*http.Cookie {
	return r.cookies
}
