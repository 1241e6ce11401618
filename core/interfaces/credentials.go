package interfaces

import (
	"context"
	"net/http"
)

// Credentials attaches the caller's session to outgoing requests.
// The dispatcher never inspects what is attached; it only asks the provider to
// decorate each attempt and to observe each response so that session cookies
// issued by the backend (login) can be captured.
type Credentials interface {
	// Attach decorates the request with the session for ctx.
	Attach(ctx context.Context, req *http.Request) error

	// Observe lets the provider capture cookies issued by the backend.
	Observe(ctx context.Context, req *http.Request, resp Response)
}
