// Package session keeps login sessions in redis and hands them to clients as
// signed cookies.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/olusolaa/offen-accounts/pkg"
	"github.com/pkg/errors"
)

const keyPrefix = "session:"

// AccountRef is an account a session user has access to.
type AccountRef struct {
	AccountID   string `json:"accountId"`
	AccountName string `json:"accountName"`
}

// Session is what is known about a logged in user at login time. Accounts
// is informational, access checks consult the database.
type Session struct {
	UserID   string       `json:"userId"`
	Email    string       `json:"email"`
	Accounts []AccountRef `json:"accounts"`
}

type Store interface {
	Create(ctx context.Context, s Session) (string, error)
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

var _ Store = &RedisStore{} // Verify that RedisStore implements Store.

// RedisStore persists sessions as JSON values expiring after ttl.
type RedisStore struct {
	rd  *redis.Client
	ttl time.Duration
}

func NewRedisStore(rd *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rd: rd, ttl: ttl}
}

func (s *RedisStore) Create(ctx context.Context, sess Session) (string, error) {
	id, err := newID()
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return "", errors.Wrap(err, "session: error encoding session")
	}
	if err := s.rd.Set(ctx, keyPrefix+id, b, s.ttl).Err(); err != nil {
		return "", errors.Wrap(err, "session: error storing session")
	}
	return id, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	b, err := s.rd.Get(ctx, keyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "session: error reading session")
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, errors.Wrap(err, "session: error decoding session")
	}
	return &sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.rd.Del(ctx, keyPrefix+id).Err()
}

func newID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "session: error generating id")
	}
	return hex.EncodeToString(b), nil
}
