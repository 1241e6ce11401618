package credentials

import (
	"context"
	"net/http"
	"sync"

	"github.com/richochetclementine1315/Quill/core/interfaces"
)

// Static sends a fixed session token and picks up a new one after login
type Static struct {
	mu    sync.RWMutex
	token string
}

// NewStatic creates a provider for token, which may be empty
func NewStatic(token string) *Static {
	return &Static{token: token}
}

// Token returns the current token
func (s *Static) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Attach adds the session cookie when a token is known
func (s *Static) Attach(ctx context.Context, req *http.Request) error {
	if token := s.Token(); token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	}
	return nil
}

// Observe keeps the session cookie issued by the backend
func (s *Static) Observe(ctx context.Context, req *http.Request, resp interfaces.Response) {
	for _, c := range resp.Cookies() {
		if c.Name != SessionCookie {
			continue
		}
		s.mu.Lock()
		s.token = c.Value
		s.mu.Unlock()
	}
}
