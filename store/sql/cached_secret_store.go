package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-receivers/core"
)

const secretKeyCacheKeyPrefix = "go-receivers::secret_keys::v1"

// CachedSecretStore fronts the database secret store with a read-through
// cache so the verification hot path does not hit the database on every
// delivery. Rotations invalidate the cached entry before returning.
type CachedSecretStore struct {
	base  *SecretStore
	cache repositorycache.CacheService
}

func NewCachedSecretStore(base *SecretStore, cacheService repositorycache.CacheService) (*CachedSecretStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base secret store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: cache service is required")
	}
	return &CachedSecretStore{base: base, cache: cacheService}, nil
}

type cachedKeySet struct {
	Keys  []string
	Found bool
}

// SecretKeyCacheKey returns the deterministic cache key contract for
// secret key reads: go-receivers::secret_keys::v1::<receiver>::<id> with
// each segment URL-path escaped after key normalization.
func SecretKeyCacheKey(receiverName, configurationID string) (string, error) {
	key := core.ReceiverConfigKey{
		ReceiverName:    receiverName,
		ConfigurationID: configurationID,
	}.Normalize()
	if key.ReceiverName == "" {
		return "", fmt.Errorf("sqlstore: receiver name is required")
	}
	segments := []string{
		url.PathEscape(key.ReceiverName),
		url.PathEscape(key.ConfigurationID),
	}
	return strings.Join(append([]string{secretKeyCacheKeyPrefix}, segments...), "::"), nil
}

func (s *CachedSecretStore) SecretKeys(ctx context.Context, receiverName, configurationID string) (core.SecretKeySet, bool, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return nil, false, fmt.Errorf("sqlstore: cached secret store is not configured")
	}
	cacheKey, err := SecretKeyCacheKey(receiverName, configurationID)
	if err != nil {
		return nil, false, err
	}

	entry, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (cachedKeySet, error) {
		keys, found, fetchErr := s.base.SecretKeys(ctx, receiverName, configurationID)
		if fetchErr != nil {
			return cachedKeySet{}, fetchErr
		}
		return cachedKeySet{Keys: append([]string(nil), keys...), Found: found}, nil
	})
	if err != nil {
		return nil, false, err
	}
	if !entry.Found {
		return nil, false, nil
	}
	return append(core.SecretKeySet(nil), entry.Keys...), true, nil
}

// HasSecretKeys is an admin-surface read and goes straight to the base
// store; caching it would only delay configuration visibility.
func (s *CachedSecretStore) HasSecretKeys(ctx context.Context, receiverName string) (bool, error) {
	if s == nil || s.base == nil {
		return false, fmt.Errorf("sqlstore: cached secret store is not configured")
	}
	return s.base.HasSecretKeys(ctx, receiverName)
}

func (s *CachedSecretStore) RotateSecretKeys(ctx context.Context, receiverName, configurationID string, keys core.SecretKeySet) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached secret store is not configured")
	}
	if err := s.base.RotateSecretKeys(ctx, receiverName, configurationID, keys); err != nil {
		return err
	}
	cacheKey, err := SecretKeyCacheKey(receiverName, configurationID)
	if err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		return err
	}
	return nil
}
