package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const noncePrefix = "wcc:nonce:"

// NonceStore remembers the nonces the sandbox has accepted, one key per
// (token, nonce) pair that expires after the freshness window.
type NonceStore struct {
	client goredis.UniversalClient
}

func NewNonceStore(client goredis.UniversalClient) *NonceStore {
	return &NonceStore{client: client}
}

// CheckAndSet reports whether nonce is unseen for tokenKey and marks it seen.
func (s *NonceStore) CheckAndSet(ctx context.Context, tokenKey string, nonce string, ttl time.Duration) (bool, error) {
	fresh, err := s.client.SetNX(ctx, nonceKey(tokenKey, nonce), time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("recording nonce: %w", err)
	}
	return fresh, nil
}

func nonceKey(tokenKey, nonce string) string {
	return noncePrefix + tokenKey + ":" + nonce
}
