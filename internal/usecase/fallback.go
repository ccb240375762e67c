package usecase

import (
	"sort"
	"time"

	"ChartPull/internal/domain/models"
)

// Rollup groups per-minute samples into bucket-aligned windows and averages
// the value within each window, returning one point per populated bucket in
// ascending time order. The source series carries a single observation per
// minute, so the arithmetic mean is the only deterministic aggregate
// available. A bucket of 60 seconds passes the series through untouched.
func Rollup(samples []models.MetricSample, bucketSeconds int64) []models.MetricSample {
	if bucketSeconds <= 60 {
		return samples
	}

	type acc struct {
		sum   float64
		count int
	}
	windows := make(map[int64]*acc)
	for _, s := range samples {
		ts := s.Bucket.Unix()
		key := ts - ts%bucketSeconds
		a, ok := windows[key]
		if !ok {
			a = &acc{}
			windows[key] = a
		}
		a.sum += s.Value
		a.count++
	}

	keys := make([]int64, 0, len(windows))
	for k := range windows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]models.MetricSample, 0, len(keys))
	for _, k := range keys {
		a := windows[k]
		out = append(out, models.MetricSample{
			Bucket: time.Unix(k, 0).UTC(),
			Value:  a.sum / float64(a.count),
		})
	}
	return out
}

// SyntheticCandles turns rolled-up points into flat bars: open, high, low and
// close all carry the observed value and volume is zero. The chart's
// auxiliary indicator keeps a time axis to plot against even when no
// trade-derived candles exist.
func SyntheticCandles(symbol string, points []models.MetricSample) []models.Candle {
	out := make([]models.Candle, 0, len(points))
	for _, p := range points {
		out = append(out, models.Candle{
			Bucket: p.Bucket,
			Symbol: symbol,
			Open:   p.Value,
			High:   p.Value,
			Low:    p.Value,
			Close:  p.Value,
			Volume: 0,
		})
	}
	return out
}

// allZeroOHLC reports whether a candle list is degenerate: non-empty but
// every price field zero. Such lists come from a known ingestion defect and
// are treated exactly like an empty result.
func allZeroOHLC(candles []models.Candle) bool {
	if len(candles) == 0 {
		return false
	}
	for _, c := range candles {
		if !c.IsZeroOHLC() {
			return false
		}
	}
	return true
}
