package middleware

import (
	"crypto/subtle"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/tomasen/realip"
)

// Credentials checks a basic auth username/password pair.
type Credentials func(username, password string) bool

// StaticCredentials accepts exactly one username/password pair.
func StaticCredentials(username, password string) Credentials {
	return func(u, p string) bool {
		userOK := subtle.ConstantTimeCompare([]byte(u), []byte(username)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(p), []byte(password)) == 1
		return userOK && passOK
	}
}

func BasicAuth(realm string, check Credentials) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || !check(user, pass) {
				if ok {
					log.WithFields(log.Fields{
						"context": "basic_auth",
						"ip":      realip.FromRequest(r),
					}).Warn("rejected admin credentials")
				}
				w.Header().Set("WWW-Authenticate", `Basic realm="`+realm+`"`)
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte("401 Unauthorized\n"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
