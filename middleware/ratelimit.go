package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/olusolaa/offen-accounts/pkg"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/tomasen/realip"
)

// KeyByRealIP keys requests by the client address, honoring proxy headers.
func KeyByRealIP(r *http.Request) (string, error) {
	return realip.FromRequest(r), nil
}

// LimitByRealIP allows requestLimit requests per client and window.
func LimitByRealIP(requestLimit int, windowLength time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		requestLimit,
		windowLength,
		httprate.WithKeyFuncs(KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			ip := realip.FromRequest(r)
			log.WithFields(log.Fields{
				"context": "rate_limit",
				"ip":      ip,
				"path":    r.URL.Path,
			}).Warn("request limit reached")
			pkg.Render(w, r, errors.Wrapf(pkg.ErrTooManyRequests, "limit reached for %s", ip))
		}),
	)
}
