package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
)

// RotatedKey carries the plain key, which is never stored and is returned
// only from Rotate.
type RotatedKey struct {
	Key      *domain.APIKey
	PlainKey string
}

type SettingsService struct {
	keys APIKeyRepositoryInterface
}

func NewSettingsService(keys APIKeyRepositoryInterface) *SettingsService {
	return &SettingsService{keys: keys}
}

// CurrentKey returns the newest API key, creating the first one on demand.
func (s *SettingsService) CurrentKey(ctx context.Context) (*domain.APIKey, error) {
	key, err := s.keys.GetLatest(ctx)
	if errors.Is(err, domain.ErrAPIKeyNotFound) {
		rotated, err := s.Rotate(ctx)
		if err != nil {
			return nil, err
		}
		return rotated.Key, nil
	}
	if err != nil {
		return nil, err
	}
	return key, nil
}

// Rotate issues a new key. Previous keys stay in storage; only the newest is
// current.
func (s *SettingsService) Rotate(ctx context.Context) (*RotatedKey, error) {
	plain, hash, prefix, err := domain.GenerateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("generate api key: %w", err)
	}

	key := &domain.APIKey{
		KeyHash: hash,
		Prefix:  prefix,
	}
	if err := s.keys.Create(ctx, key); err != nil {
		return nil, err
	}

	return &RotatedKey{Key: key, PlainKey: plain}, nil
}
