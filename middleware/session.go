package middleware

import (
	"context"
	"net/http"

	"github.com/olusolaa/offen-accounts/pkg"
	"github.com/olusolaa/offen-accounts/pkg/session"
	"github.com/pkg/errors"
)

type contextKey string

const contextKeySession contextKey = "session"

// RequireSession resolves the session cookie into a session and stores it in
// the request context. Requests without a valid session get a 401.
func RequireSession(store session.Store, codec *session.Codec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := codec.ID(r)
			if err != nil {
				pkg.Render(w, r, err)
				return
			}
			sess, err := store.Get(r.Context(), id)
			if err != nil {
				if errors.Is(err, pkg.ErrNotFound) {
					err = pkg.ErrUnauthorized
				}
				pkg.Render(w, r, err)
				return
			}
			ctx := WithSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, contextKeySession, sess)
}

// SessionFromContext returns the session stored by RequireSession.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(contextKeySession).(*session.Session)
	return sess, ok
}
