package repository

import (
	"context"
	"errors"
	"time"

	"ChartPull/internal/domain/models"
)

// ErrNotFound is returned by the metadata store when a symbol or entity id
// has no counterpart.
var ErrNotFound = errors.New("entity not found")

// CandleStore provides read access to aggregated candles in the analytical
// store. The id argument is the canonical entity id when resolution
// succeeded, otherwise the raw display symbol.
type CandleStore interface {
	GetCandles(ctx context.Context, id string, tf Timeframe, from, to time.Time, limit int) ([]models.Candle, error)
	Health(ctx context.Context) error
}

// SampleStore provides the raw per-minute observation series used for
// fallback synthesis.
type SampleStore interface {
	GetSamples(ctx context.Context, entityID, displayName string, from, to time.Time) ([]models.MetricSample, error)
}

// MetadataStore resolves display symbols and canonical ids. Read-only.
type MetadataStore interface {
	ResolveSymbol(ctx context.Context, symbol string) (*models.Entity, error)
	GetEntity(ctx context.Context, id string) (*models.Entity, error)
	Health(ctx context.Context) error
}

// Metrics records router observability signals.
type Metrics interface {
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
	RecordFetchLatency(store string, seconds float64)
	RecordTimeout(op string)
	RecordFallback(outcome string)
	RecordBreakerTrip(reason string)
	RecordResponse(status string)
}
