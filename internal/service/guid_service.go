package service

import (
	"context"

	"connect-client/internal/core/domain"
	"connect-client/internal/core/ports"
	"connect-client/pkg/apperror"

	"github.com/google/uuid"
)

// GUIDService hands out the store's persistent GUID.
type GUIDService struct {
	options  ports.OptionStore
	generate func() string
}

// NewGUIDService creates a GUID service over the given option store.
func NewGUIDService(options ports.OptionStore) *GUIDService {
	return &GUIDService{options: options, generate: uuid.NewString}
}

// StoreGUID returns the persisted GUID, creating it on first use. A stored
// blank value counts as unset. Concurrent first calls agree on a single value
// through SetIfAbsent.
func (s *GUIDService) StoreGUID(ctx context.Context) (string, error) {
	guid, ok, err := s.options.Get(ctx, domain.OptionStoreGUID)
	if err != nil {
		return "", apperror.ErrOptionStore(err)
	}
	if ok && guid != "" {
		return guid, nil
	}
	if ok {
		return s.replaceBlank(ctx)
	}

	stored, err := s.options.SetIfAbsent(ctx, domain.OptionStoreGUID, s.generate())
	if err != nil {
		return "", apperror.ErrOptionStore(err)
	}
	return stored, nil
}

// replaceBlank overwrites a blank GUID and returns whatever is stored afterwards,
// so racing callers converge on the last write.
func (s *GUIDService) replaceBlank(ctx context.Context) (string, error) {
	if err := s.options.Set(ctx, domain.OptionStoreGUID, s.generate()); err != nil {
		return "", apperror.ErrOptionStore(err)
	}
	guid, _, err := s.options.Get(ctx, domain.OptionStoreGUID)
	if err != nil {
		return "", apperror.ErrOptionStore(err)
	}
	return guid, nil
}
