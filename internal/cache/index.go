// Package cache holds the router's five purpose-specific caches. Each cache
// has its own key scheme, TTL policy and capacity; the backing stores remain
// the source of truth.
package cache

import (
	"time"

	"ChartPull/internal/domain/models"
	domrepo "ChartPull/internal/domain/repository"
	pkgcache "ChartPull/pkg/cache"
)

// ResultEntry is a fully assembled chart response plus the headers it was
// served with. Cached entries are replayed byte-identically.
type ResultEntry struct {
	Body    models.HistoryResponse
	Headers map[string]string
}

// Config tunes cache capacities and TTLs. Zero values fall back to defaults.
type Config struct {
	ResultCapacity  int
	EntityCapacity  int
	EntityTTL       time.Duration
	DisplayNameTTL  time.Duration
	NegativeDataTTL time.Duration
	BreakerTTL      time.Duration
	DefaultResultTTL time.Duration
}

func (c *Config) applyDefaults() {
	if c.ResultCapacity == 0 {
		c.ResultCapacity = 500
	}
	if c.EntityCapacity == 0 {
		c.EntityCapacity = 1000
	}
	if c.EntityTTL == 0 {
		c.EntityTTL = 30 * time.Minute
	}
	if c.DisplayNameTTL == 0 {
		c.DisplayNameTTL = 5 * time.Minute
	}
	if c.NegativeDataTTL == 0 {
		c.NegativeDataTTL = 60 * time.Second
	}
	if c.BreakerTTL == 0 {
		c.BreakerTTL = 30 * time.Second
	}
	if c.DefaultResultTTL == 0 {
		c.DefaultResultTTL = 60 * time.Second
	}
}

// Result cache TTLs per timeframe. Finer buckets refresh sooner; unlisted
// timeframes use the configured default.
var resultTTLs = map[domrepo.Timeframe]time.Duration{
	domrepo.TF1m:  10 * time.Second,
	domrepo.TF5m:  30 * time.Second,
	domrepo.TF15m: 60 * time.Second,
	domrepo.TF30m: 2 * time.Minute,
	domrepo.TF1h:  3 * time.Minute,
	domrepo.TF4h:  5 * time.Minute,
	domrepo.TF1d:  10 * time.Minute,
}

// Index owns the five caches.
type Index struct {
	cfg Config

	// Assembled responses, keyed per ResultKey.
	Results *pkgcache.Store[ResultEntry]
	// Display symbol -> canonical entity id.
	Entities *pkgcache.Store[string]
	// Canonical id -> display name, used only by the fallback path.
	Names *pkgcache.Store[string]
	// Presence means fallback synthesis already confirmed no data exists.
	NoData *pkgcache.Store[struct{}]
	// Presence means the primary fetch recently failed or timed out;
	// requests skip the fetch entirely until expiry.
	Breaker *pkgcache.Store[string]
}

// NewIndex creates the cache index.
func NewIndex(cfg Config) *Index {
	cfg.applyDefaults()
	return &Index{
		cfg:      cfg,
		Results:  pkgcache.New[ResultEntry](cfg.ResultCapacity),
		Entities: pkgcache.New[string](cfg.EntityCapacity),
		Names:    pkgcache.New[string](0),
		NoData:   pkgcache.New[struct{}](0),
		Breaker:  pkgcache.New[string](0),
	}
}

// ResultTTL returns the result-cache TTL for tf.
func (i *Index) ResultTTL(tf domrepo.Timeframe) time.Duration {
	if ttl, ok := resultTTLs[tf]; ok {
		return ttl
	}
	return i.cfg.DefaultResultTTL
}

// EntityTTL returns the entity-resolution cache TTL.
func (i *Index) EntityTTL() time.Duration { return i.cfg.EntityTTL }

// DisplayNameTTL returns the display-name cache TTL.
func (i *Index) DisplayNameTTL() time.Duration { return i.cfg.DisplayNameTTL }

// NegativeDataTTL returns the negative-data cache TTL.
func (i *Index) NegativeDataTTL() time.Duration { return i.cfg.NegativeDataTTL }

// BreakerTTL returns the circuit-breaker TTL.
func (i *Index) BreakerTTL() time.Duration { return i.cfg.BreakerTTL }

// BucketTo rounds to down to a multiple of max(bucketSeconds, 10). The chart
// client re-polls with a monotonically advancing "to" roughly once a second;
// without this every poll would be a guaranteed miss.
func BucketTo(to, bucketSeconds int64) int64 {
	step := bucketSeconds
	if step < 10 {
		step = 10
	}
	return to - to%step
}

// ResultKey is the result-cache key for a normalized request.
func ResultKey(symbol string, tf domrepo.Timeframe, clampedFrom, to int64, limit int) string {
	return pkgcache.Key("result", symbol, tf, clampedFrom, BucketTo(to, domrepo.BucketSeconds(tf)), limit)
}

// NoDataKey is the negative-data cache key.
func NoDataKey(entityID string, tf domrepo.Timeframe) string {
	return pkgcache.Key("nodata", entityID, tf)
}

// BreakerKey is the failing-query circuit-breaker key.
func BreakerKey(symbol string, tf domrepo.Timeframe) string {
	return pkgcache.Key("breaker", symbol, tf)
}
