package interfaces

import (
	"io"
	"net/http"
)

// HTTPClient defines the interface for issuing a single HTTP exchange.
// Implementations must not retry; retry decisions belong to the dispatcher.
// This abstraction allows for easy mocking in tests.
type HTTPClient interface {
	// Do sends the request and returns the response or a transport error.
	// The request carries its own context, which bounds the exchange.
	Do(req *http.Request) (Response, error)
}

// Response defines the interface for HTTP responses.
// This abstraction allows different HTTP client implementations to provide
// their own response types while maintaining a consistent interface.
type Response interface {
	// StatusCode returns the HTTP status code of the response.
	StatusCode() int

	// Body returns the response body as an io.ReadCloser.
	// The caller is responsible for closing the body when done.
	Body() io.ReadCloser

	// Header returns the value of the specified header.
	// Returns an empty string if the header is not present.
	// Header names are case-insensitive.
	Header(key string) string

	// Cookies returns the cookies set by the response.
	Cookies() []*http.Cookie
}
