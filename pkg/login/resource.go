package login

import (
	"time"

	"github.com/go-chi/chi"
	"github.com/olusolaa/offen-accounts/middleware"
	"github.com/olusolaa/offen-accounts/pkg/account"
	"github.com/olusolaa/offen-accounts/pkg/session"
	"github.com/olusolaa/offen-accounts/pkg/user"
)

const (
	loginRequestLimit = 10
	loginWindow       = time.Minute
)

type Resource struct {
	users    user.Repository
	accounts account.Repository
	sessions session.Store
	codec    *session.Codec
}

// NewResource creates and returns a resource.
func NewResource(users user.Repository, accounts account.Repository, sessions session.Store, codec *session.Codec) *Resource {
	return &Resource{
		users:    users,
		accounts: accounts,
		sessions: sessions,
		codec:    codec,
	}
}

// Router serves /login and /logout.
func (rs *Resource) Router() *chi.Mux {
	r := chi.NewRouter()

	svc := NewService(rs.users, rs.accounts, rs.sessions)
	hndlr := NewHandler(svc, rs.codec)

	r.With(middleware.LimitByRealIP(loginRequestLimit, loginWindow)).Post("/login", hndlr.postLogin)
	r.With(middleware.RequireSession(rs.sessions, rs.codec)).Get("/login", hndlr.getLogin)
	r.Post("/logout", hndlr.postLogout)

	return r
}
