package store

import (
	"context"
	"time"

	"fjacquet/eod-recon/internal/models"

	"github.com/patrickmn/go-cache"
)

const profilesCacheKey = "profiles"

// CachedDirectory caches a ProfileDirectory for a fixed TTL. A zero TTL
// disables caching.
type CachedDirectory struct {
	next  ProfileDirectory
	ttl   time.Duration
	cache *cache.Cache
}

// NewCachedDirectory wraps next with a TTL cache.
func NewCachedDirectory(next ProfileDirectory, ttl time.Duration) *CachedDirectory {
	return &CachedDirectory{
		next:  next,
		ttl:   ttl,
		cache: cache.New(ttl, 2*ttl),
	}
}

// ListProfiles implements ProfileDirectory.
func (d *CachedDirectory) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	if d.ttl > 0 {
		if cached, found := d.cache.Get(profilesCacheKey); found {
			return append([]models.Profile(nil), cached.([]models.Profile)...), nil
		}
	}

	profiles, err := d.next.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}

	if d.ttl > 0 {
		d.cache.Set(profilesCacheKey, append([]models.Profile(nil), profiles...), d.ttl)
	}
	return profiles, nil
}

// Invalidate drops the cached directory.
func (d *CachedDirectory) Invalidate() {
	d.cache.Delete(profilesCacheKey)
}
