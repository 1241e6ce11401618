package credentials

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/richochetclementine1315/Quill/core/interfaces"
)

// ErrNoSession is returned when a forwarding call has no session in its context
var ErrNoSession = errors.New("no session in request context")

// Session is one browser's session for the duration of a gateway request
type Session struct {
	mu     sync.Mutex
	token  string
	issued []*http.Cookie
}

// NewSession creates a session from the browser's session cookie value, which may be empty
func NewSession(token string) *Session {
	return &Session{token: token}
}

// Token returns the current session token
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Issued returns the cookies the backend set during the request
func (s *Session) Issued() []*http.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*http.Cookie(nil), s.issued...)
}

func (s *Session) observe(cookies []*http.Cookie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cookies {
		s.issued = append(s.issued, c)
		if c.Name == SessionCookie {
			s.token = c.Value
		}
	}
}

type sessionKey struct{}

// WithSession stores s in ctx for the Forwarding provider
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session stored by WithSession
func SessionFrom(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}

// Forwarding attaches the session carried by each call's context, so one
// client can serve many browsers without sharing their cookies.
type Forwarding struct{}

// NewForwarding creates a forwarding provider
func NewForwarding() *Forwarding {
	return &Forwarding{}
}

// Attach adds the session cookie of the context's session, if any
func (f *Forwarding) Attach(ctx context.Context, req *http.Request) error {
	s, ok := SessionFrom(ctx)
	if !ok {
		return ErrNoSession
	}
	if token := s.Token(); token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	}
	return nil
}

// Observe records cookies issued by the backend on the context's session
func (f *Forwarding) Observe(ctx context.Context, req *http.Request, resp interfaces.Response) {
	if s, ok := SessionFrom(ctx); ok {
		s.observe(resp.Cookies())
	}
}
