package ports

import (
	"context"
	"net/http"
	"time"

	"connect-client/internal/core/domain"
)

// CredentialProvider supplies the access token and the clock-skew offset.
type CredentialProvider interface {
	// AccessToken returns the store's token, or nil if none has been issued.
	AccessToken(ctx context.Context) (*domain.Token, error)
	// TimeDiff returns the offset in seconds between server and local clocks.
	TimeDiff(ctx context.Context) (int64, error)
}

// HostEnvironment describes the store a request is sent on behalf of.
type HostEnvironment interface {
	StoreProfile(ctx context.Context) (domain.StoreProfile, error)
}

// SignatureService computes and checks request signatures.
type SignatureService interface {
	Sign(tokenKey string, timestamp int64, nonce string, secret string) string
	Verify(tokenKey string, timestamp int64, nonce string, secret string, signature string) bool
	BuildCanonicalString(tokenKey string, timestamp int64, nonce string) string
}

// EncryptionService handles AES-256-GCM encryption/decryption.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// HTTPClient is the subset of *http.Client the transport relies on.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Transport performs one network exchange.
type Transport interface {
	Send(ctx context.Context, req *domain.OutboundRequest) (*domain.RawResponse, error)
}

// RequestMetrics observes completed calls.
type RequestMetrics interface {
	ObserveRequest(method string, outcome string, statusCode int, duration time.Duration)
}

// RequestLogService records completed calls.
type RequestLogService interface {
	Record(ctx context.Context, entry *domain.RequestLog)
}
