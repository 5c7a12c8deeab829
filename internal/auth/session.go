package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/bargir/dispatch-gateway/pkg/redis"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

const sessionKeyPrefix = "session:"

// SessionStore keeps one redis record per live token jti. A token whose
// session record is gone no longer resolves, which is what logout and
// forced revocation rely on.
type SessionStore struct {
	adapter redis.RedisAdapter
	ttl     time.Duration
}

func NewSessionStore(adapter redis.RedisAdapter, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{
		adapter: adapter,
		ttl:     ttl,
	}
}

func (s *SessionStore) Put(jti string, userID int64) error {
	return s.adapter.Set(sessionKeyPrefix+jti, []byte(strconv.FormatInt(userID, 10)), s.ttl)
}

// Get returns the user id bound to the session, or ErrSessionNotFound when
// the record has been revoked or has expired.
func (s *SessionStore) Get(jti string) (int64, error) {
	b, err := s.adapter.Get(sessionKeyPrefix + jti)
	if err != nil {
		if errors.Is(err, redis.NilError) {
			return 0, ErrSessionNotFound
		}
		return 0, err
	}
	id, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, ErrSessionNotFound
	}
	return id, nil
}

func (s *SessionStore) Delete(jti string) error {
	return s.adapter.Del(sessionKeyPrefix + jti)
}
