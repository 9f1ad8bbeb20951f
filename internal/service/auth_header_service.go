package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"connect-client/internal/core/domain"
	"connect-client/internal/core/ports"
	"connect-client/pkg/apperror"
)

const (
	// Accepted distance of the signing time from the local clock.
	maxSignatureAge  = 600 // seconds in the past
	maxSignatureLead = 300 // seconds in the future

	nonceLength   = 10
	nonceAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// TokenFilter may replace the token returned by the credential provider.
type TokenFilter func(token *domain.Token) *domain.Token

// AuthHeaderService builds the per-request Authorization header.
type AuthHeaderService struct {
	creds       ports.CredentialProvider
	sigSvc      ports.SignatureService
	apiVersion  int
	now         func() time.Time
	nonce       func() string
	tokenFilter TokenFilter
}

// AuthHeaderOption customizes an AuthHeaderService.
type AuthHeaderOption func(*AuthHeaderService)

// WithClock overrides the local clock.
func WithClock(now func() time.Time) AuthHeaderOption {
	return func(s *AuthHeaderService) { s.now = now }
}

// WithNonceGenerator overrides nonce generation.
func WithNonceGenerator(gen func() string) AuthHeaderOption {
	return func(s *AuthHeaderService) { s.nonce = gen }
}

// WithTokenFilter installs a hook that sees the token before it is validated.
func WithTokenFilter(f TokenFilter) AuthHeaderOption {
	return func(s *AuthHeaderService) { s.tokenFilter = f }
}

// NewAuthHeaderService creates a header builder. A nil credential provider is
// rejected here rather than on every request.
func NewAuthHeaderService(creds ports.CredentialProvider, sigSvc ports.SignatureService, apiVersion int, opts ...AuthHeaderOption) (*AuthHeaderService, error) {
	if creds == nil {
		return nil, apperror.ErrProviderMissing()
	}
	s := &AuthHeaderService{
		creds:      creds,
		sigSvc:     sigSvc,
		apiVersion: apiVersion,
		now:        time.Now,
		nonce:      GenerateNonce,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Build derives a fresh Authorization header. It must be called once per request.
func (s *AuthHeaderService) Build(ctx context.Context) (*domain.AuthorizationHeader, error) {
	sc, secret, err := s.signingContext(ctx)
	if err != nil {
		return nil, err
	}

	if err := CheckFreshness(sc.LocalTime(), s.now().Unix()); err != nil {
		return nil, err
	}

	return &domain.AuthorizationHeader{
		Token:     sc.TokenKey,
		Timestamp: sc.Timestamp,
		Nonce:     sc.Nonce,
		Signature: s.sigSvc.Sign(sc.TokenKey, sc.Timestamp, sc.Nonce, secret),
	}, nil
}

// signingContext loads the token and returns the values to sign plus the HMAC secret.
func (s *AuthHeaderService) signingContext(ctx context.Context) (*domain.SigningContext, string, error) {
	token, err := s.creds.AccessToken(ctx)
	if err != nil {
		return nil, "", apperror.Wrap(apperror.KindMissingCredential, apperror.ErrMissingCredential().Message, err)
	}
	if s.tokenFilter != nil {
		token = s.tokenFilter(token)
	}
	if token == nil || token.Secret == "" {
		return nil, "", apperror.ErrMissingCredential()
	}

	keyPart, secret, err := SplitTokenSecret(token.Secret)
	if err != nil {
		return nil, "", err
	}

	timeDiff, err := s.creds.TimeDiff(ctx)
	if err != nil {
		return nil, "", apperror.ErrOptionStore(err)
	}

	return &domain.SigningContext{
		TokenKey:  fmt.Sprintf("%s:%d:%d", keyPart, s.apiVersion, token.ExternalUserID),
		Timestamp: s.now().Unix() + timeDiff,
		Nonce:     s.nonce(),
		TimeDiff:  timeDiff,
	}, secret, nil
}

// SplitTokenSecret splits "<key>.<secret>" into its two non-empty halves.
func SplitTokenSecret(raw string) (string, string, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", apperror.ErrMalformedCredential()
	}
	return parts[0], parts[1], nil
}

// CheckFreshness rejects signing times more than 600s behind or 300s ahead of now.
func CheckFreshness(localTime, now int64) error {
	if localTime < now-maxSignatureAge || localTime > now+maxSignatureLead {
		return apperror.ErrStaleSignature()
	}
	return nil
}

// GenerateNonce returns a 10-character alphanumeric nonce.
// It is drawn from a non-cryptographic PRNG; replay protection comes from the
// freshness window, not from nonce unpredictability.
func GenerateNonce() string {
	b := make([]byte, nonceLength)
	for i := range b {
		b[i] = nonceAlphabet[rand.IntN(len(nonceAlphabet))]
	}
	return string(b)
}
