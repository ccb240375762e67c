package models

import "time"

// Candle is one OHLCV aggregate for a single timeframe bucket.
type Candle struct {
	Bucket time.Time
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// IsZeroOHLC reports whether every price field is zero. Malformed ingestion
// upstream can produce fully zero-filled rows; those are treated as no data.
func (c Candle) IsZeroOHLC() bool {
	return c.Open == 0 && c.High == 0 && c.Low == 0 && c.Close == 0
}

// MetricSample is a single per-minute observation from the raw sample series.
type MetricSample struct {
	Bucket time.Time
	Value  float64
}

// Entity binds an externally visible display symbol to its canonical id.
type Entity struct {
	ID          string
	Symbol      string
	DisplayName string
}
