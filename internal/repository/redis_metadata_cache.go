package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"ChartPull/internal/domain/models"
	domrepo "ChartPull/internal/domain/repository"
	pkgcache "ChartPull/pkg/cache"
)

// CachingMetadataStore decorates a MetadataStore with Redis. The in-process
// cache index stays authoritative for request routing; this layer only keeps
// resolutions warm across restarts and replicas. A nil client bypasses it.
type CachingMetadataStore struct {
	inner domrepo.MetadataStore
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachingMetadataStore(rdb *redis.Client, ttl time.Duration, inner domrepo.MetadataStore) *CachingMetadataStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &CachingMetadataStore{inner: inner, rdb: rdb, ttl: ttl}
}

func (c *CachingMetadataStore) ResolveSymbol(ctx context.Context, symbol string) (*models.Entity, error) {
	return c.lookup(ctx, pkgcache.Key("meta:symbol", symbol), func() (*models.Entity, error) {
		return c.inner.ResolveSymbol(ctx, symbol)
	})
}

func (c *CachingMetadataStore) GetEntity(ctx context.Context, id string) (*models.Entity, error) {
	return c.lookup(ctx, pkgcache.Key("meta:id", id), func() (*models.Entity, error) {
		return c.inner.GetEntity(ctx, id)
	})
}

func (c *CachingMetadataStore) Health(ctx context.Context) error {
	return c.inner.Health(ctx)
}

func (c *CachingMetadataStore) lookup(ctx context.Context, key string, fetch func() (*models.Entity, error)) (*models.Entity, error) {
	if c.rdb == nil {
		return fetch()
	}

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var e models.Entity
		if err := json.Unmarshal(b, &e); err == nil {
			return &e, nil
		}
		// Corrupted entry; drop and refetch.
		_ = c.rdb.Del(ctx, key).Err()
	}

	e, err := fetch()
	if err != nil {
		return nil, err
	}

	// Best effort: a failed write never fails the lookup.
	if b, err := json.Marshal(e); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return e, nil
}
