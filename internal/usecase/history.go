package usecase

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	icache "ChartPull/internal/cache"
	"ChartPull/internal/domain/models"
	domrepo "ChartPull/internal/domain/repository"
	"ChartPull/pkg/deadline"
	xhttp "ChartPull/pkg/http"
	applogger "ChartPull/pkg/logger"
	xutil "ChartPull/pkg/util"
)

// Diagnostic headers attached to every history response.
const (
	HeaderSource = "X-Chart-Source"
	HeaderCache  = "X-Chart-Cache"
)

// Config carries per-call-class deadlines for the router.
type Config struct {
	ResolveTimeout  time.Duration
	PrimaryTimeout  time.Duration
	FallbackTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.ResolveTimeout == 0 {
		c.ResolveTimeout = 2 * time.Second
	}
	if c.PrimaryTimeout == 0 {
		c.PrimaryTimeout = 4 * time.Second
	}
	if c.FallbackTimeout == 0 {
		c.FallbackTimeout = 3 * time.Second
	}
}

// HistoryUseCase is the cache-and-fallback query router. It turns a chart
// request into a bounded-latency response using the cache index, deadline
// bounded fetches against the analytical and metadata stores, and synthetic
// bar construction when no aggregated candles exist.
type HistoryUseCase struct {
	candles  domrepo.CandleStore
	samples  domrepo.SampleStore
	metadata domrepo.MetadataStore
	idx      *icache.Index
	metrics  domrepo.Metrics
	logger   *applogger.Logger
	cfg      Config

	// Coalesces concurrent misses for the same result key into one fetch.
	flight singleflight.Group
}

func NewHistoryUseCase(
	candles domrepo.CandleStore,
	samples domrepo.SampleStore,
	metadata domrepo.MetadataStore,
	idx *icache.Index,
	metrics domrepo.Metrics,
	logger *applogger.Logger,
	cfg Config,
) *HistoryUseCase {
	cfg.applyDefaults()
	return &HistoryUseCase{
		candles:  candles,
		samples:  samples,
		metadata: metadata,
		idx:      idx,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
	}
}

// HistoryParams is a raw chart request after HTTP binding.
type HistoryParams struct {
	Symbol     string
	Resolution string
	From       int64
	To         int64
	Countback  int
}

// HistoryResult is the assembled response body plus its headers.
type HistoryResult struct {
	Body    models.HistoryResponse
	Headers map[string]string
}

// GetHistory runs the full routed flow: normalize, result-cache lookup,
// resolve, circuit-breaker check, primary fetch, fallback synthesis,
// assembly and cache commit. Backing-store failures surface as no_data;
// only malformed input returns an error.
func (uc *HistoryUseCase) GetHistory(ctx context.Context, p HistoryParams) (*HistoryResult, error) {
	symbol := xutil.StripExchange(p.Symbol)
	if symbol == "" {
		return nil, xhttp.BadRequestError("symbol is required")
	}
	tf, err := domrepo.ParseResolution(p.Resolution)
	if err != nil {
		return nil, xhttp.BadRequestErrorf("unsupported resolution %q", p.Resolution)
	}
	if p.To < p.From {
		return nil, xhttp.BadRequestError("to must be >= from")
	}

	limit := domrepo.ClampLimit(p.Countback)
	from := domrepo.ClampFrom(p.From, p.To, limit, tf)
	key := icache.ResultKey(symbol, tf, from, p.To, limit)

	// Fast path: a result-cache hit costs zero calls to either store.
	if ent, ok := uc.idx.Results.Get(key); ok {
		uc.metrics.RecordCacheHit("result")
		headers := make(map[string]string, len(ent.Headers)+1)
		for k, v := range ent.Headers {
			headers[k] = v
		}
		headers[HeaderCache] = "hit"
		return &HistoryResult{Body: ent.Body, Headers: headers}, nil
	}
	uc.metrics.RecordCacheMiss("result")

	v, err, _ := uc.flight.Do(key, func() (interface{}, error) {
		return uc.fetch(ctx, key, symbol, tf, from, p.To, limit)
	})
	if err != nil {
		return nil, err
	}
	return v.(*HistoryResult), nil
}

// fetch is the miss path: everything past the result cache.
func (uc *HistoryUseCase) fetch(ctx context.Context, key, symbol string, tf domrepo.Timeframe, from, to int64, limit int) (*HistoryResult, error) {
	entityID := uc.resolveEntity(ctx, symbol)

	// The circuit breaker suppresses attempts against a query known to be
	// currently failing or slow.
	if _, ok := uc.idx.Breaker.Get(icache.BreakerKey(symbol, tf)); ok {
		uc.metrics.RecordCacheHit("breaker")
		return uc.noData(to, tf, models.SourceCircuit), nil
	}

	queryID := entityID
	if queryID == "" {
		queryID = symbol
	}
	fromT, toT := time.Unix(from, 0).UTC(), time.Unix(to, 0).UTC()

	start := time.Now()
	candles, ok, err := deadline.Run(ctx, uc.cfg.PrimaryTimeout, func(ctx context.Context) ([]models.Candle, error) {
		return uc.candles.GetCandles(ctx, queryID, tf, fromT, toT, limit)
	})
	uc.metrics.RecordFetchLatency("candles", time.Since(start).Seconds())

	// Timeout and thrown error are indistinguishable to the client but both
	// trip the breaker and skip fallback: "could not determine whether data
	// exists" must not trigger synthesis.
	if !ok || err != nil {
		reason := models.SourceTimeout
		if err != nil {
			reason = models.SourceError
			uc.logger.Error("primary candle fetch failed",
				applogger.String("symbol", symbol),
				applogger.String("tf", string(tf)),
				applogger.Error(err),
			)
		} else {
			uc.metrics.RecordTimeout("primary")
			uc.logger.Warn("primary candle fetch deadline exceeded",
				applogger.String("symbol", symbol),
				applogger.String("tf", string(tf)),
			)
		}
		uc.idx.Breaker.Set(icache.BreakerKey(symbol, tf), reason, uc.idx.BreakerTTL())
		uc.metrics.RecordBreakerTrip(reason)
		return uc.noData(to, tf, reason), nil
	}

	if allZeroOHLC(candles) {
		// Known ingestion defect: zero-filled rows are no data.
		candles = nil
	}

	if len(candles) > 0 {
		return uc.commit(key, tf, models.NewOKHistory(symbol, models.SourcePrimary, candles), models.SourcePrimary), nil
	}

	return uc.fallback(ctx, key, symbol, entityID, tf, fromT, toT, to), nil
}

// fallback synthesizes bars from the raw per-minute sample series. Reached
// only on a clean empty (or all-zero) primary result.
func (uc *HistoryUseCase) fallback(ctx context.Context, key, symbol, entityID string, tf domrepo.Timeframe, fromT, toT time.Time, to int64) *HistoryResult {
	if !domrepo.SupportsFallback(tf) || entityID == "" {
		return uc.commitNoData(key, to, tf, models.SourceEmpty)
	}

	if _, ok := uc.idx.NoData.Get(icache.NoDataKey(entityID, tf)); ok {
		uc.metrics.RecordCacheHit("nodata")
		return uc.commitNoData(key, to, tf, models.SourceEmpty)
	}

	name := uc.displayName(ctx, entityID)

	start := time.Now()
	samples, ok, err := deadline.Run(ctx, uc.cfg.FallbackTimeout, func(ctx context.Context) ([]models.MetricSample, error) {
		return uc.samples.GetSamples(ctx, entityID, name, fromT, toT)
	})
	uc.metrics.RecordFetchLatency("samples", time.Since(start).Seconds())
	if !ok || err != nil {
		if err != nil {
			uc.logger.Error("fallback sample fetch failed",
				applogger.String("entity", entityID),
				applogger.String("tf", string(tf)),
				applogger.Error(err),
			)
			return uc.noData(to, tf, models.SourceError)
		}
		uc.metrics.RecordTimeout("fallback")
		return uc.noData(to, tf, models.SourceTimeout)
	}

	rolled := Rollup(samples, domrepo.BucketSeconds(tf))
	if len(rolled) == 0 {
		uc.idx.NoData.Set(icache.NoDataKey(entityID, tf), struct{}{}, uc.idx.NegativeDataTTL())
		uc.metrics.RecordFallback("empty")
		return uc.commitNoData(key, to, tf, models.SourceEmpty)
	}

	uc.metrics.RecordFallback("synthesized")
	body := models.NewOKHistory(symbol, models.SourceFallback, SyntheticCandles(symbol, rolled))
	return uc.commit(key, tf, body, models.SourceFallback)
}

// resolveEntity maps a display symbol to its canonical id, memoized with a
// long TTL. Returns "" when resolution fails or times out; callers fall back
// to the raw symbol.
func (uc *HistoryUseCase) resolveEntity(ctx context.Context, symbol string) string {
	if id, ok := uc.idx.Entities.Get(symbol); ok {
		uc.metrics.RecordCacheHit("entity")
		return id
	}
	uc.metrics.RecordCacheMiss("entity")

	ent, ok, err := deadline.Run(ctx, uc.cfg.ResolveTimeout, func(ctx context.Context) (*models.Entity, error) {
		return uc.metadata.ResolveSymbol(ctx, symbol)
	})
	if !ok {
		uc.metrics.RecordTimeout("resolve")
		return ""
	}
	if err != nil || ent == nil {
		if err != nil && err != domrepo.ErrNotFound {
			uc.logger.Warn("symbol resolution failed",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return ""
	}

	uc.idx.Entities.Set(symbol, ent.ID, uc.idx.EntityTTL())
	if ent.DisplayName != "" {
		uc.idx.Names.Set(ent.ID, ent.DisplayName, uc.idx.DisplayNameTTL())
	}
	return ent.ID
}

// displayName resolves the human-readable name for an entity id, used only
// by the fallback sample query.
func (uc *HistoryUseCase) displayName(ctx context.Context, entityID string) string {
	if name, ok := uc.idx.Names.Get(entityID); ok {
		uc.metrics.RecordCacheHit("name")
		return name
	}
	uc.metrics.RecordCacheMiss("name")

	ent, ok, err := deadline.Run(ctx, uc.cfg.ResolveTimeout, func(ctx context.Context) (*models.Entity, error) {
		return uc.metadata.GetEntity(ctx, entityID)
	})
	if !ok {
		uc.metrics.RecordTimeout("resolve")
		return ""
	}
	if err != nil || ent == nil {
		return ""
	}
	uc.idx.Names.Set(entityID, ent.DisplayName, uc.idx.DisplayNameTTL())
	return ent.DisplayName
}

// commit stores a successful body in the result cache with the timeframe's
// TTL and returns it.
func (uc *HistoryUseCase) commit(key string, tf domrepo.Timeframe, body models.HistoryResponse, source string) *HistoryResult {
	ttl := uc.idx.ResultTTL(tf)
	headers := map[string]string{
		"Cache-Control": cacheControl(ttl),
		HeaderSource:    source,
	}
	uc.idx.Results.Set(key, icache.ResultEntry{Body: body, Headers: headers}, ttl)
	uc.metrics.RecordResponse(body.Status)
	return &HistoryResult{Body: body, Headers: headers}
}

// commitNoData stores a benign no_data body with a short TTL to dampen
// repeated polling of sparse entities.
func (uc *HistoryUseCase) commitNoData(key string, to int64, tf domrepo.Timeframe, source string) *HistoryResult {
	const ttl = 5 * time.Second
	body := models.NewNoDataHistory(to + domrepo.BucketSeconds(tf))
	headers := map[string]string{
		"Cache-Control": cacheControl(ttl),
		HeaderSource:    source,
	}
	uc.idx.Results.Set(key, icache.ResultEntry{Body: body, Headers: headers}, ttl)
	uc.metrics.RecordResponse(body.Status)
	return &HistoryResult{Body: body, Headers: headers}
}

// noData builds an uncached absence response for hard failures: timeouts,
// thrown errors and open breakers are never committed to the result cache.
func (uc *HistoryUseCase) noData(to int64, tf domrepo.Timeframe, source string) *HistoryResult {
	body := models.NewNoDataHistory(to + domrepo.BucketSeconds(tf))
	uc.metrics.RecordResponse(body.Status)
	return &HistoryResult{
		Body: body,
		Headers: map[string]string{
			"Cache-Control": "no-store",
			HeaderSource:    source,
		},
	}
}

func cacheControl(ttl time.Duration) string {
	secs := int(ttl / time.Second)
	if secs < 1 {
		secs = 1
	}
	return "public, max-age=" + strconv.Itoa(secs)
}
