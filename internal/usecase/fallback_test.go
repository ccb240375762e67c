package usecase

import (
	"testing"
	"time"

	"ChartPull/internal/domain/models"
)

func sampleAt(ts int64, v float64) models.MetricSample {
	return models.MetricSample{Bucket: time.Unix(ts, 0).UTC(), Value: v}
}

func TestRollupPassthroughAtMinuteBucket(t *testing.T) {
	in := []models.MetricSample{sampleAt(60, 1), sampleAt(120, 2)}
	out := Rollup(in, 60)
	if len(out) != 2 || out[0].Value != 1 || out[1].Value != 2 {
		t.Fatalf("unexpected passthrough result: %+v", out)
	}
}

func TestRollupAveragesWithinBucket(t *testing.T) {
	// Three minutes inside one 5m bucket average to their mean.
	in := []models.MetricSample{
		sampleAt(300, 10),
		sampleAt(360, 20),
		sampleAt(420, 30),
	}
	out := Rollup(in, 300)
	if len(out) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(out))
	}
	if out[0].Bucket.Unix() != 300 {
		t.Fatalf("bucket start = %d, want 300", out[0].Bucket.Unix())
	}
	if out[0].Value != 20 {
		t.Fatalf("mean = %v, want 20", out[0].Value)
	}
}

func TestRollupOrdersBucketsAscending(t *testing.T) {
	in := []models.MetricSample{
		sampleAt(660, 6), // second 5m bucket
		sampleAt(300, 3), // first 5m bucket
	}
	out := Rollup(in, 300)
	if len(out) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(out))
	}
	if !out[0].Bucket.Before(out[1].Bucket) {
		t.Fatalf("buckets out of order: %v, %v", out[0].Bucket, out[1].Bucket)
	}
}

func TestSyntheticCandlesShape(t *testing.T) {
	out := SyntheticCandles("ACME", []models.MetricSample{sampleAt(600, 7.5)})
	if len(out) != 1 {
		t.Fatalf("expected 1 candle, got %d", len(out))
	}
	c := out[0]
	if c.Open != 7.5 || c.High != 7.5 || c.Low != 7.5 || c.Close != 7.5 {
		t.Fatalf("expected flat bar at 7.5, got %+v", c)
	}
	if c.Volume != 0 {
		t.Fatalf("synthetic volume must be zero, got %v", c.Volume)
	}
	if c.Symbol != "ACME" {
		t.Fatalf("symbol = %q", c.Symbol)
	}
}

func TestAllZeroOHLC(t *testing.T) {
	if allZeroOHLC(nil) {
		t.Fatal("empty list is not degenerate")
	}
	zeros := []models.Candle{{}, {}}
	if !allZeroOHLC(zeros) {
		t.Fatal("expected degenerate")
	}
	mixed := []models.Candle{{}, {Close: 1}}
	if allZeroOHLC(mixed) {
		t.Fatal("mixed list is not degenerate")
	}
}
