// ABOUTME: Credential providers that carry the backend session cookie on every attempt
// ABOUTME: Jar keeps cookies per host, Forwarding relays a browser session, Static holds a fixed token

package credentials

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"sync"

	"golang.org/x/net/publicsuffix"

	"github.com/richochetclementine1315/Quill/core/interfaces"
)

// SessionCookie is the cookie the backend issues on login
const SessionCookie = "jwt"

// Jar stores cookies issued by the backend, like a browser would
type Jar struct {
	mu  sync.RWMutex
	jar *cookiejar.Jar
}

// NewJar creates an empty cookie jar scoped by public suffix
func NewJar() (*Jar, error) {
	jar, err := newCookieJar()
	if err != nil {
		return nil, err
	}
	return &Jar{jar: jar}, nil
}

func newCookieJar() (*cookiejar.Jar, error) {
	return cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
}

// Attach adds the stored cookies for the request URL
func (j *Jar) Attach(ctx context.Context, req *http.Request) error {
	j.mu.RLock()
	defer j.mu.RUnlock()

	for _, c := range j.jar.Cookies(req.URL) {
		req.AddCookie(c)
	}
	return nil
}

// Observe stores cookies set by the response
func (j *Jar) Observe(ctx context.Context, req *http.Request, resp interfaces.Response) {
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		return
	}
	j.mu.RLock()
	defer j.mu.RUnlock()
	j.jar.SetCookies(req.URL, cookies)
}

// Clear forgets every stored cookie, e.g. on logout
func (j *Jar) Clear() error {
	jar, err := newCookieJar()
	if err != nil {
		return err
	}
	j.mu.Lock()
	j.jar = jar
	j.mu.Unlock()
	return nil
}
