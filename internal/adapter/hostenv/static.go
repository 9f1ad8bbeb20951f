package hostenv

import (
	"context"
	"slices"

	"connect-client/config"
	"connect-client/internal/core/domain"
)

// Static implements ports.HostEnvironment with a profile fixed at startup.
type Static struct {
	profile domain.StoreProfile
}

// NewStatic builds the store profile from configuration. version is the
// client build version reported as the host plugin version.
func NewStatic(cfg config.StoreConfig, version string) *Static {
	return &Static{profile: domain.StoreProfile{
		Locale:         cfg.Locale,
		BaseCity:       cfg.BaseCity,
		BaseCountry:    cfg.BaseCountry,
		BaseState:      cfg.BaseState,
		Currency:       cfg.Currency,
		DimensionUnit:  cfg.DimensionUnit,
		WeightUnit:     cfg.WeightUnit,
		JetpackVersion: firstNonEmpty(cfg.JetpackVersion, version),
		WCVersion:      cfg.WCVersion,
		WPVersion:      cfg.WPVersion,
		ActiveServices: slices.Clone(cfg.ActiveServices),
		Staging:        cfg.Staging,
	}}
}

// StoreProfile returns a copy of the profile.
func (s *Static) StoreProfile(_ context.Context) (domain.StoreProfile, error) {
	p := s.profile
	p.ActiveServices = slices.Clone(s.profile.ActiveServices)
	return p, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
