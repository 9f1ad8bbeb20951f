package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// OptionStore implements ports.OptionStore with one Redis string per option.
// Options never expire.
type OptionStore struct {
	client goredis.UniversalClient
	prefix string
}

// NewOptionStore creates a Redis-backed option store.
func NewOptionStore(client goredis.UniversalClient) *OptionStore {
	return &OptionStore{
		client: client,
		prefix: "wcc:option:",
	}
}

func (s *OptionStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis option get: %w", err)
	}
	return val, true, nil
}

func (s *OptionStore) Set(ctx context.Context, key string, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis option set: %w", err)
	}
	return nil
}

// SetIfAbsent uses SET NX; on a lost race the winner's value is read back.
func (s *OptionStore) SetIfAbsent(ctx context.Context, key string, value string) (string, error) {
	ok, err := s.client.SetNX(ctx, s.prefix+key, value, 0).Result()
	if err != nil {
		return "", fmt.Errorf("redis option setnx: %w", err)
	}
	if ok {
		return value, nil
	}

	existing, found, err := s.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("redis option %q vanished after setnx", key)
	}
	return existing, nil
}
