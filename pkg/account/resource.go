package account

import (
	"github.com/go-chi/chi"
	"github.com/olusolaa/offen-accounts/pkg/keys"
)

type Resource struct {
	repo        Repository
	encrypter   keys.Encrypter
	memberships Memberships
}

// NewResource creates and returns a resource.
func NewResource(repo Repository, encrypter keys.Encrypter, memberships Memberships) *Resource {
	return &Resource{
		repo:        repo,
		encrypter:   encrypter,
		memberships: memberships,
	}
}

// Router serves the accounts API. It expects a session in the request
// context, see middleware.RequireSession.
func (rs *Resource) Router() *chi.Mux {
	r := chi.NewRouter()

	svc := NewService(rs.repo, rs.encrypter, rs.memberships)
	hndlr := NewHandler(svc)

	r.Get("/{accountID}", hndlr.get)
	r.Get("/{accountID}/key", hndlr.key)

	return r
}
