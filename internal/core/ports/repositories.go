package ports

import (
	"context"
	"time"

	"connect-client/internal/core/domain"
)

// OptionStore is the host's persistent key-value option storage.
// Implementations must be safe for concurrent use.
type OptionStore interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	// SetIfAbsent stores value only when key is unset and returns the value
	// that is stored after the call, whichever writer won.
	SetIfAbsent(ctx context.Context, key string, value string) (string, error)
}

// RequestLogRepository persists completed-call records.
type RequestLogRepository interface {
	Create(ctx context.Context, log *domain.RequestLog) error
}

// NonceStore manages nonce uniqueness for replay attack prevention.
type NonceStore interface {
	// CheckAndSet atomically checks if nonce exists, sets it if not.
	// Returns true if nonce is new (valid), false if already used.
	CheckAndSet(ctx context.Context, tokenKey string, nonce string, ttl time.Duration) (bool, error)
}

// SecretLookup resolves the HMAC secret for a token key on the verifying side.
type SecretLookup interface {
	LookupSecret(ctx context.Context, tokenKey string) (string, bool, error)
}
