package account

import (
	"context"

	"github.com/olusolaa/offen-accounts/pkg"
	"github.com/olusolaa/offen-accounts/pkg/keys"
	"github.com/olusolaa/offen-accounts/pkg/session"
	"github.com/pkg/errors"
)

var _ Service = service{} // Verify that service implements Service.

type Service interface {
	get(ctx context.Context, sess *session.Session, accountID string) (*Account, error)
	privateKey(ctx context.Context, sess *session.Session, accountID string) ([]byte, error)
}

// Memberships returns the ids of the accounts userID currently belongs to.
// Unknown users yield pkg.ErrNotFound.
type Memberships func(ctx context.Context, userID string) ([]string, error)

// ErrUserGone is returned when the session outlived its user.
var ErrUserGone = pkg.NewError(pkg.ErrUnauthorized, "user does not exist anymore")

type service struct {
	repo        Repository
	encrypter   keys.Encrypter
	memberships Memberships
}

func NewService(repo Repository, encrypter keys.Encrypter, memberships Memberships) Service {
	return service{repo: repo, encrypter: encrypter, memberships: memberships}
}

// authorize checks membership against the database, not the session, so
// that revoking access takes effect immediately.
func (s service) authorize(ctx context.Context, sess *session.Session, accountID string) error {
	ids, err := s.memberships(ctx, sess.UserID)
	if errors.Is(err, pkg.ErrNotFound) {
		return ErrUserGone
	}
	if err != nil {
		return errors.Wrapf(err, "account: error looking up memberships of %s", sess.UserID)
	}
	for _, id := range ids {
		if id == accountID {
			return nil
		}
	}
	return errors.Wrapf(pkg.ErrForbidden, "user is not allowed to access account %s", accountID)
}

func (s service) get(ctx context.Context, sess *session.Session, accountID string) (*Account, error) {
	if err := s.authorize(ctx, sess, accountID); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, accountID)
}

func (s service) privateKey(ctx context.Context, sess *session.Session, accountID string) ([]byte, error) {
	a, err := s.get(ctx, sess, accountID)
	if err != nil {
		return nil, err
	}
	key, err := s.encrypter.Decrypt(ctx, a.EncryptedPrivateKey)
	if err != nil {
		return nil, errors.Wrapf(err, "account: error decrypting private key of %s", accountID)
	}
	return key, nil
}
