package credentials

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"connect-client/config"
	"connect-client/internal/core/domain"
	"connect-client/internal/core/ports"
)

// StaticProvider implements ports.CredentialProvider from configuration.
// The clock offset is read from the option store on every call so a sync
// written by another process is picked up.
type StaticProvider struct {
	token   *domain.Token
	options ports.OptionStore
}

// NewStaticProvider builds a provider. A sealed secret is opened once here
// with the given cipher; cipher may be nil when the secret is stored in clear.
func NewStaticProvider(cfg config.CredentialsConfig, options ports.OptionStore, cipher ports.EncryptionService) (*StaticProvider, error) {
	secret := cfg.Secret
	if cfg.SecretEnc != "" {
		if cipher == nil {
			return nil, fmt.Errorf("sealed token secret configured without a cipher")
		}
		opened, err := cipher.Decrypt(cfg.SecretEnc)
		if err != nil {
			return nil, fmt.Errorf("opening token secret: %w", err)
		}
		secret = opened
	}

	var token *domain.Token
	if secret != "" {
		token = &domain.Token{Key: cfg.Key, Secret: secret, ExternalUserID: cfg.ExternalUserID}
	}
	return &StaticProvider{token: token, options: options}, nil
}

// AccessToken returns a copy of the configured token, or nil when none is set.
func (p *StaticProvider) AccessToken(_ context.Context) (*domain.Token, error) {
	if p.token == nil {
		return nil, nil
	}
	tok := *p.token
	return &tok, nil
}

// TimeDiff returns the stored server clock offset in seconds.
// A missing or non-numeric value counts as 0.
func (p *StaticProvider) TimeDiff(ctx context.Context) (int64, error) {
	if p.options == nil {
		return 0, nil
	}
	raw, ok, err := p.options.Get(ctx, domain.OptionTimeDiff)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", domain.OptionTimeDiff, err)
	}
	if !ok {
		return 0, nil
	}
	diff, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, nil
	}
	return diff, nil
}

// StaticSecrets implements ports.SecretLookup over a fixed key-to-secret map.
type StaticSecrets map[string]string

func (s StaticSecrets) LookupSecret(_ context.Context, tokenKey string) (string, bool, error) {
	secret, ok := s[tokenKey]
	return secret, ok, nil
}
