package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultResetTTL = 15 * time.Minute

// ErrResetTokenInvalid is returned when a reset token is unknown or expired.
var ErrResetTokenInvalid = errors.New("identity: invalid or expired reset token")

// ResetTokenStore keeps single-use password-reset tokens in Redis with a TTL.
type ResetTokenStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewResetTokenStore connects to Redis. A zero ttl selects the default.
func NewResetTokenStore(addr, password string, ttl time.Duration) (*ResetTokenStore, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("reset token store requires redis addr")
	}
	if ttl <= 0 {
		ttl = defaultResetTTL
	}
	return &ResetTokenStore{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password}),
		prefix: "reelbase:reset:",
		ttl:    ttl,
	}, nil
}

// Issue creates a reset token for uid.
func (s *ResetTokenStore) Issue(ctx context.Context, uid string) (string, error) {
	token := randomHexID(24)
	if err := s.client.Set(ctx, s.prefix+token, uid, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Consume resolves and deletes a reset token, returning the uid it was
// issued for.
func (s *ResetTokenStore) Consume(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrResetTokenInvalid
	}
	uid, err := s.client.GetDel(ctx, s.prefix+token).Result()
	if err == redis.Nil {
		return "", ErrResetTokenInvalid
	}
	if err != nil {
		return "", err
	}
	return uid, nil
}
