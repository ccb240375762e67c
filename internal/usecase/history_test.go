package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	icache "ChartPull/internal/cache"
	"ChartPull/internal/domain/models"
	domrepo "ChartPull/internal/domain/repository"
	applogger "ChartPull/pkg/logger"
)

// fakeCandleStore serves canned candles or an injected failure.
type fakeCandleStore struct {
	candles []models.Candle
	err     error
	delay   time.Duration
	calls   int
}

func (f *fakeCandleStore) GetCandles(ctx context.Context, id string, tf domrepo.Timeframe, from, to time.Time, limit int) ([]models.Candle, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.candles, nil
}

func (f *fakeCandleStore) Health(ctx context.Context) error { return nil }

type fakeSampleStore struct {
	samples []models.MetricSample
	err     error
	calls   int
}

func (f *fakeSampleStore) GetSamples(ctx context.Context, entityID, displayName string, from, to time.Time) ([]models.MetricSample, error) {
	f.calls++
	return f.samples, f.err
}

type fakeMetadataStore struct {
	entities map[string]*models.Entity
}

func (f *fakeMetadataStore) ResolveSymbol(ctx context.Context, symbol string) (*models.Entity, error) {
	if e, ok := f.entities[symbol]; ok {
		return e, nil
	}
	return nil, domrepo.ErrNotFound
}

func (f *fakeMetadataStore) GetEntity(ctx context.Context, id string) (*models.Entity, error) {
	for _, e := range f.entities {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, domrepo.ErrNotFound
}

func (f *fakeMetadataStore) Health(ctx context.Context) error { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordCacheHit(string)            {}
func (nopMetrics) RecordCacheMiss(string)           {}
func (nopMetrics) RecordFetchLatency(string, float64) {}
func (nopMetrics) RecordTimeout(string)             {}
func (nopMetrics) RecordFallback(string)            {}
func (nopMetrics) RecordBreakerTrip(string)         {}
func (nopMetrics) RecordResponse(string)            {}

func newRouter(candles *fakeCandleStore, samples *fakeSampleStore, meta *fakeMetadataStore, cfg Config) (*HistoryUseCase, *icache.Index) {
	idx := icache.NewIndex(icache.Config{})
	uc := NewHistoryUseCase(candles, samples, meta, idx, nopMetrics{}, applogger.Nop(), cfg)
	return uc, idx
}

func defaultMeta() *fakeMetadataStore {
	return &fakeMetadataStore{entities: map[string]*models.Entity{
		"ACME": {ID: "ent-1", Symbol: "ACME", DisplayName: "Acme Corp"},
	}}
}

func candleAt(ts int64, close float64) models.Candle {
	return models.Candle{
		Bucket: time.Unix(ts, 0).UTC(),
		Open:   close, High: close, Low: close, Close: close,
		Volume: 100,
	}
}

func historyParams(symbol string) HistoryParams {
	return HistoryParams{Symbol: symbol, Resolution: "1", From: 0, To: 1_000_000, Countback: 10}
}

func TestGetHistoryPrimaryPath(t *testing.T) {
	candles := &fakeCandleStore{candles: []models.Candle{candleAt(999_900, 5), candleAt(999_960, 6)}}
	uc, _ := newRouter(candles, &fakeSampleStore{}, defaultMeta(), Config{})

	res, err := uc.GetHistory(context.Background(), historyParams("ACME"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Body.Status != models.StatusOK {
		t.Fatalf("status = %s, want ok", res.Body.Status)
	}
	if len(res.Body.Times) != 2 || res.Body.Closes[1] != 6 {
		t.Fatalf("unexpected body: %+v", res.Body)
	}
	if res.Headers[HeaderSource] != models.SourcePrimary {
		t.Fatalf("source header = %q", res.Headers[HeaderSource])
	}
}

func TestGetHistoryResultCacheHit(t *testing.T) {
	candles := &fakeCandleStore{candles: []models.Candle{candleAt(999_960, 6)}}
	uc, _ := newRouter(candles, &fakeSampleStore{}, defaultMeta(), Config{})

	p := historyParams("ACME")
	if _, err := uc.GetHistory(context.Background(), p); err != nil {
		t.Fatalf("first call: %v", err)
	}
	res, err := uc.GetHistory(context.Background(), p)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if candles.calls != 1 {
		t.Fatalf("store called %d times, want 1", candles.calls)
	}
	if res.Headers[HeaderCache] != "hit" {
		t.Fatalf("expected cache hit header, got %v", res.Headers)
	}
	if res.Body.Status != models.StatusOK {
		t.Fatalf("status = %s", res.Body.Status)
	}
}

func TestGetHistoryExchangePrefixStripped(t *testing.T) {
	candles := &fakeCandleStore{candles: []models.Candle{candleAt(999_960, 6)}}
	uc, _ := newRouter(candles, &fakeSampleStore{}, defaultMeta(), Config{})

	res, err := uc.GetHistory(context.Background(), historyParams("NASDAQ:ACME"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Body.Meta == nil || res.Body.Meta.Symbol != "ACME" {
		t.Fatalf("expected stripped symbol, got %+v", res.Body.Meta)
	}
}

func TestGetHistoryRejectsBadInput(t *testing.T) {
	uc, _ := newRouter(&fakeCandleStore{}, &fakeSampleStore{}, defaultMeta(), Config{})

	p := historyParams("ACME")
	p.Resolution = "7"
	if _, err := uc.GetHistory(context.Background(), p); err == nil {
		t.Fatal("expected error for unsupported resolution")
	}

	p = historyParams("ACME")
	p.From, p.To = 10, 5
	if _, err := uc.GetHistory(context.Background(), p); err == nil {
		t.Fatal("expected error for inverted range")
	}

	p = historyParams("")
	if _, err := uc.GetHistory(context.Background(), p); err == nil {
		t.Fatal("expected error for missing symbol")
	}
}

func TestGetHistoryFallbackSynthesis(t *testing.T) {
	// Clean empty primary plus three per-minute samples in one 1m window
	// each: the fallback path produces flat bars from the raw series.
	samples := &fakeSampleStore{samples: []models.MetricSample{
		{Bucket: time.Unix(999_840, 0).UTC(), Value: 10},
		{Bucket: time.Unix(999_900, 0).UTC(), Value: 20},
		{Bucket: time.Unix(999_960, 0).UTC(), Value: 30},
	}}
	uc, _ := newRouter(&fakeCandleStore{}, samples, defaultMeta(), Config{})

	res, err := uc.GetHistory(context.Background(), historyParams("ACME"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Body.Status != models.StatusOK {
		t.Fatalf("status = %s, want ok", res.Body.Status)
	}
	if res.Headers[HeaderSource] != models.SourceFallback {
		t.Fatalf("source = %q, want fallback", res.Headers[HeaderSource])
	}
	if len(res.Body.Times) != 3 {
		t.Fatalf("expected 3 synthetic bars, got %d", len(res.Body.Times))
	}
	for i, v := range res.Body.Volumes {
		if v != 0 {
			t.Fatalf("synthetic bar %d has volume %v", i, v)
		}
	}
	if res.Body.Opens[1] != 20 || res.Body.Closes[1] != 20 {
		t.Fatalf("expected flat bar at 20, got o=%v c=%v", res.Body.Opens[1], res.Body.Closes[1])
	}
}

func TestGetHistoryFallbackRollsUpCoarserBuckets(t *testing.T) {
	// Three minute samples in one 5m window collapse into a single bar at
	// their mean.
	samples := &fakeSampleStore{samples: []models.MetricSample{
		{Bucket: time.Unix(999_600, 0).UTC(), Value: 10},
		{Bucket: time.Unix(999_660, 0).UTC(), Value: 20},
		{Bucket: time.Unix(999_720, 0).UTC(), Value: 30},
	}}
	uc, _ := newRouter(&fakeCandleStore{}, samples, defaultMeta(), Config{})

	p := historyParams("ACME")
	p.Resolution = "5"
	res, err := uc.GetHistory(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Body.Times) != 1 {
		t.Fatalf("expected 1 rolled-up bar, got %d", len(res.Body.Times))
	}
	if res.Body.Closes[0] != 20 {
		t.Fatalf("rolled-up value = %v, want 20", res.Body.Closes[0])
	}
}

func TestGetHistoryAllZeroTreatedAsEmpty(t *testing.T) {
	// Zero-filled primary rows must route to fallback, not render.
	zero := models.Candle{Bucket: time.Unix(999_960, 0).UTC(), Volume: 50}
	samples := &fakeSampleStore{samples: []models.MetricSample{
		{Bucket: time.Unix(999_960, 0).UTC(), Value: 42},
	}}
	uc, _ := newRouter(&fakeCandleStore{candles: []models.Candle{zero}}, samples, defaultMeta(), Config{})

	res, err := uc.GetHistory(context.Background(), historyParams("ACME"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Headers[HeaderSource] != models.SourceFallback {
		t.Fatalf("source = %q, want fallback", res.Headers[HeaderSource])
	}
}

func TestGetHistoryErrorTripsBreakerAndSkipsFallback(t *testing.T) {
	candles := &fakeCandleStore{err: errors.New("connection refused")}
	samples := &fakeSampleStore{samples: []models.MetricSample{
		{Bucket: time.Unix(999_960, 0).UTC(), Value: 42},
	}}
	uc, idx := newRouter(candles, samples, defaultMeta(), Config{})

	res, err := uc.GetHistory(context.Background(), historyParams("ACME"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Body.Status != models.StatusNoData {
		t.Fatalf("status = %s, want no_data", res.Body.Status)
	}
	if samples.calls != 0 {
		t.Fatal("fallback must not run after a primary failure")
	}
	if res.Headers["Cache-Control"] != "no-store" {
		t.Fatalf("failure responses must not be cacheable, got %q", res.Headers["Cache-Control"])
	}
	if _, ok := idx.Breaker.Get(icache.BreakerKey("ACME", domrepo.TF1m)); !ok {
		t.Fatal("breaker should be set after failure")
	}
	if _, ok := idx.Results.Get(icache.ResultKey("ACME", domrepo.TF1m,
		domrepo.ClampFrom(0, 1_000_000, 10, domrepo.TF1m), 1_000_000, 10)); ok {
		t.Fatal("failure responses must not enter the result cache")
	}
}

func TestGetHistoryOpenBreakerShortCircuits(t *testing.T) {
	candles := &fakeCandleStore{candles: []models.Candle{candleAt(999_960, 6)}}
	uc, idx := newRouter(candles, &fakeSampleStore{}, defaultMeta(), Config{})

	idx.Breaker.Set(icache.BreakerKey("ACME", domrepo.TF1m), models.SourceTimeout, idx.BreakerTTL())

	res, err := uc.GetHistory(context.Background(), historyParams("ACME"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candles.calls != 0 {
		t.Fatal("open breaker must suppress the primary fetch")
	}
	if res.Body.Status != models.StatusNoData {
		t.Fatalf("status = %s, want no_data", res.Body.Status)
	}
	if res.Headers[HeaderSource] != models.SourceCircuit {
		t.Fatalf("source = %q, want circuit", res.Headers[HeaderSource])
	}
}

func TestGetHistoryTimeoutDoesNotFallBack(t *testing.T) {
	candles := &fakeCandleStore{delay: 200 * time.Millisecond}
	samples := &fakeSampleStore{samples: []models.MetricSample{
		{Bucket: time.Unix(999_960, 0).UTC(), Value: 42},
	}}
	uc, _ := newRouter(candles, samples, defaultMeta(), Config{PrimaryTimeout: 20 * time.Millisecond})

	res, err := uc.GetHistory(context.Background(), historyParams("ACME"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Body.Status != models.StatusNoData {
		t.Fatalf("status = %s, want no_data", res.Body.Status)
	}
	if res.Headers[HeaderSource] != models.SourceTimeout {
		t.Fatalf("source = %q, want timeout", res.Headers[HeaderSource])
	}
	if samples.calls != 0 {
		t.Fatal("a timed-out primary must never trigger synthesis")
	}
}

func TestGetHistoryUnknownSymbolNoFallback(t *testing.T) {
	// Resolution failure leaves no entity id: primary runs against the raw
	// symbol but fallback is impossible.
	samples := &fakeSampleStore{samples: []models.MetricSample{
		{Bucket: time.Unix(999_960, 0).UTC(), Value: 42},
	}}
	uc, _ := newRouter(&fakeCandleStore{}, samples, &fakeMetadataStore{}, Config{})

	res, err := uc.GetHistory(context.Background(), historyParams("NOPE"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Body.Status != models.StatusNoData {
		t.Fatalf("status = %s, want no_data", res.Body.Status)
	}
	if samples.calls != 0 {
		t.Fatal("fallback requires a resolved entity id")
	}
	if res.Headers[HeaderSource] != models.SourceEmpty {
		t.Fatalf("source = %q, want empty", res.Headers[HeaderSource])
	}
}

func TestGetHistoryNegativeDataCacheSkipsSecondProbe(t *testing.T) {
	samples := &fakeSampleStore{}
	uc, idx := newRouter(&fakeCandleStore{}, samples, defaultMeta(), Config{})

	p := historyParams("ACME")
	if _, err := uc.GetHistory(context.Background(), p); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if samples.calls != 1 {
		t.Fatalf("expected one probe, got %d", samples.calls)
	}
	if _, ok := idx.NoData.Get(icache.NoDataKey("ent-1", domrepo.TF1m)); !ok {
		t.Fatal("confirmed-empty fallback should populate the negative cache")
	}

	// Force a result-cache miss with a different countback; the negative
	// cache must still suppress the sample probe.
	p.Countback = 20
	if _, err := uc.GetHistory(context.Background(), p); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if samples.calls != 1 {
		t.Fatalf("negative cache should suppress re-probe, got %d calls", samples.calls)
	}
}

func TestGetHistoryNoDataCarriesNextTime(t *testing.T) {
	uc, _ := newRouter(&fakeCandleStore{}, &fakeSampleStore{}, defaultMeta(), Config{})

	p := historyParams("ACME")
	p.Resolution = "W" // no fallback for weekly buckets
	res, err := uc.GetHistory(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Body.Status != models.StatusNoData {
		t.Fatalf("status = %s", res.Body.Status)
	}
	if want := p.To + domrepo.BucketSeconds(domrepo.TF1w); res.Body.NextTime != want {
		t.Fatalf("nextTime = %d, want %d", res.Body.NextTime, want)
	}
}
