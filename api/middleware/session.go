// ABOUTME: Session middleware forwards each browser's session cookie to the backend
// ABOUTME: Cookies the backend issues during the request are relayed to the browser

package middleware

import (
	"net/http"

	"github.com/richochetclementine1315/Quill/infrastructure/credentials"
)

// sessionWriter adds the cookies issued by the backend just before the header is sent
type sessionWriter struct {
	http.ResponseWriter
	session *credentials.Session
	written bool
}

func (sw *sessionWriter) WriteHeader(code int) {
	if !sw.written {
		sw.written = true
		for _, c := range sw.session.Issued() {
			// the cookie now belongs to the gateway's host
			relayed := *c
			relayed.Domain = ""
			http.SetCookie(sw.ResponseWriter, &relayed)
		}
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *sessionWriter) Write(b []byte) (int, error) {
	if !sw.written {
		sw.WriteHeader(http.StatusOK)
	}
	return sw.ResponseWriter.Write(b)
}

// SessionMiddleware stores the browser's session in the request context
// for the forwarding credentials provider.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if c, err := r.Cookie(credentials.SessionCookie); err == nil {
			token = c.Value
		}
		session := credentials.NewSession(token)
		r = r.WithContext(credentials.WithSession(r.Context(), session))

		next.ServeHTTP(&sessionWriter{ResponseWriter: w, session: session}, r)
	})
}
