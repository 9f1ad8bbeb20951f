package redis

import (
	"context"
	"fmt"
	"time"

	"connect-client/config"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Options and nonces are single small keys; short timeouts keep a dead server
// from stalling a signed request.
const (
	dialTimeout = 3 * time.Second
	ioTimeout   = time.Second
)

// NewClient connects to the server holding the option and nonce keys.
func NewClient(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", cfg.Addr(), err)
	}

	log.Info().
		Str("addr", cfg.Addr()).
		Int("db", cfg.DB).
		Msg("redis ready")

	return client, nil
}
