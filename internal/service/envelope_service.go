package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"connect-client/internal/core/domain"
	"connect-client/internal/core/ports"
	"connect-client/pkg/apperror"
)

// EnvelopeHook inspects or rewrites a request before its body is serialized.
type EnvelopeHook func(ctx context.Context, env *domain.RequestEnvelope) error

// EnvelopeService merges host metadata into request bodies and serializes them.
type EnvelopeService struct {
	host         ports.HostEnvironment
	options      ports.OptionStore
	guid         *GUIDService
	preSerialize []EnvelopeHook
}

// NewEnvelopeService creates an envelope builder. Hooks run in order after
// settings are merged and before JSON encoding.
func NewEnvelopeService(host ports.HostEnvironment, options ports.OptionStore, guid *GUIDService, preSerialize ...EnvelopeHook) *EnvelopeService {
	return &EnvelopeService{
		host:         host,
		options:      options,
		guid:         guid,
		preSerialize: preSerialize,
	}
}

// NormalizeBody turns a caller payload into a JSON object mapping.
// nil becomes an empty body; anything that does not encode to an object is rejected.
func NormalizeBody(body any) (map[string]any, error) {
	switch b := body.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return b, nil
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, apperror.ErrEncodingFailure(err)
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, apperror.ErrEncodingFailure(err)
	}
	m, ok := decoded.(map[string]any)
	if !ok {
		return nil, apperror.ErrNonArrayBody()
	}
	return m, nil
}

// DefaultSettings gathers the metadata sent with every request body.
func (s *EnvelopeService) DefaultSettings(ctx context.Context) (domain.Settings, error) {
	profile, err := s.host.StoreProfile(ctx)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("loading store profile: %w", err)
	}

	guid, err := s.guid.StoreGUID(ctx)
	if err != nil {
		return domain.Settings{}, err
	}

	settings := domain.Settings{
		StoreGUID:      guid,
		BaseCity:       profile.BaseCity,
		BaseCountry:    profile.BaseCountry,
		BaseState:      profile.BaseState,
		Currency:       profile.Currency,
		DimensionUnit:  strings.ToLower(profile.DimensionUnit),
		JetpackVersion: profile.JetpackVersion,
		WCVersion:      profile.WCVersion,
		WeightUnit:     strings.ToLower(profile.WeightUnit),
		WPVersion:      profile.WPVersion,
		ActiveServices: profile.ActiveServices,
		DisableStats:   profile.Staging,
	}

	for key, dst := range map[string]*int64{
		domain.OptionLastServicesUpdate: &settings.LastServicesUpdate,
		domain.OptionLastHeartbeat:      &settings.LastHeartbeat,
		domain.OptionLastRateRequest:    &settings.LastRateRequest,
	} {
		if *dst, err = s.intOption(ctx, key); err != nil {
			return domain.Settings{}, err
		}
	}

	return settings, nil
}

// Merge returns a copy of body whose settings mapping is filled with defaults.
// Keys the caller already set are kept as-is.
func (s *EnvelopeService) Merge(ctx context.Context, body map[string]any) (map[string]any, error) {
	merged := make(map[string]any, len(body)+1)
	for k, v := range body {
		merged[k] = v
	}

	settings := map[string]any{}
	if raw, ok := merged[domain.SettingsKey]; ok && raw != nil {
		callerSettings, ok := raw.(map[string]any)
		if !ok {
			return nil, apperror.ErrNonArrayBody()
		}
		for k, v := range callerSettings {
			settings[k] = v
		}
	}

	defaults, err := s.DefaultSettings(ctx)
	if err != nil {
		return nil, err
	}
	for k, v := range defaults.Map() {
		if _, set := settings[k]; !set {
			settings[k] = v
		}
	}

	merged[domain.SettingsKey] = settings
	return merged, nil
}

// BuildBody merges, runs pre-serialize hooks and encodes the envelope's body.
// Methods without a body yield nil.
func (s *EnvelopeService) BuildBody(ctx context.Context, env *domain.RequestEnvelope) ([]byte, error) {
	if !env.HasBody() {
		return nil, nil
	}

	merged, err := s.Merge(ctx, env.Body)
	if err != nil {
		return nil, err
	}
	env.Body = merged

	for _, hook := range s.preSerialize {
		if err := hook(ctx, env); err != nil {
			return nil, err
		}
	}

	encoded, err := json.Marshal(env.Body)
	if err != nil {
		return nil, apperror.ErrEncodingFailure(err)
	}
	return encoded, nil
}

// intOption reads a numeric option, treating absent or non-numeric values as 0.
func (s *EnvelopeService) intOption(ctx context.Context, key string) (int64, error) {
	raw, ok, err := s.options.Get(ctx, key)
	if err != nil {
		return 0, apperror.ErrOptionStore(err)
	}
	if !ok {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, nil
	}
	return n, nil
}
