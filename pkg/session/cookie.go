package session

import (
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/olusolaa/offen-accounts/pkg"
	"github.com/pkg/errors"
)

// CookieName is the name of the cookie carrying the signed session id.
const CookieName = "auth"

// Codec signs session ids into cookies using the session secret.
type Codec struct {
	sc     *securecookie.SecureCookie
	ttl    time.Duration
	secure bool
}

func NewCodec(secret string, ttl time.Duration, secure bool) *Codec {
	sc := securecookie.New([]byte(secret), nil)
	sc.MaxAge(int(ttl.Seconds()))
	return &Codec{sc: sc, ttl: ttl, secure: secure}
}

// Cookie returns the cookie carrying id.
func (c *Codec) Cookie(id string) (*http.Cookie, error) {
	value, err := c.sc.Encode(CookieName, id)
	if err != nil {
		return nil, errors.Wrap(err, "session: error signing cookie")
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(c.ttl),
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Expired returns a cookie that makes clients drop the session cookie.
func (c *Codec) Expired() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ID extracts and verifies the session id from r. A missing or tampered
// cookie yields pkg.ErrUnauthorized.
func (c *Codec) ID(r *http.Request) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", pkg.ErrUnauthorized
	}
	var id string
	if err := c.sc.Decode(CookieName, cookie.Value, &id); err != nil {
		return "", pkg.ErrUnauthorized
	}
	return id, nil
}
