package login

import (
	"context"

	"github.com/olusolaa/offen-accounts/pkg"
	"github.com/olusolaa/offen-accounts/pkg/account"
	"github.com/olusolaa/offen-accounts/pkg/session"
	"github.com/olusolaa/offen-accounts/pkg/user"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// ErrBadCredentials is returned for unknown users and wrong passwords alike.
var ErrBadCredentials = pkg.NewError(pkg.ErrUnauthorized, "bad username or password")

var _ Service = service{} // Verify that service implements Service.

type Service interface {
	login(ctx context.Context, req pkg.LoginReq) (string, *session.Session, error)
	logout(ctx context.Context, sessionID string) error
}

type service struct {
	users    user.Repository
	accounts account.Repository
	sessions session.Store
}

func NewService(users user.Repository, accounts account.Repository, sessions session.Store) Service {
	return service{users: users, accounts: accounts, sessions: sessions}
}

func (s service) login(ctx context.Context, req pkg.LoginReq) (string, *session.Session, error) {
	u, err := s.users.FindByEmail(ctx, req.Username)
	if errors.Is(err, pkg.ErrNotFound) {
		return "", nil, ErrBadCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(req.Password)); err != nil {
		return "", nil, ErrBadCredentials
	}

	accounts, err := s.accounts.FindByIDs(ctx, u.AccountIDs)
	if err != nil {
		return "", nil, err
	}
	sess := &session.Session{UserID: u.UserID, Email: u.Email, Accounts: []session.AccountRef{}}
	for _, a := range accounts {
		sess.Accounts = append(sess.Accounts, session.AccountRef{AccountID: a.AccountID, AccountName: a.Name})
	}

	id, err := s.sessions.Create(ctx, *sess)
	if err != nil {
		return "", nil, err
	}
	return id, sess, nil
}

func (s service) logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}
