package cache

import (
	"testing"
	"time"

	domrepo "ChartPull/internal/domain/repository"
)

func TestResultTTLTable(t *testing.T) {
	idx := NewIndex(Config{})

	cases := []struct {
		tf   domrepo.Timeframe
		want time.Duration
	}{
		{domrepo.TF1m, 10 * time.Second},
		{domrepo.TF5m, 30 * time.Second},
		{domrepo.TF1d, 10 * time.Minute},
		// Unlisted timeframes use the default.
		{domrepo.TF1w, 60 * time.Second},
		{domrepo.TF1M, 60 * time.Second},
	}
	for _, c := range cases {
		if got := idx.ResultTTL(c.tf); got != c.want {
			t.Errorf("ResultTTL(%s) = %v, want %v", c.tf, got, c.want)
		}
	}
}

func TestBucketTo(t *testing.T) {
	cases := []struct {
		to, bucket, want int64
	}{
		{1000, 60, 960},
		{1020, 60, 1020},
		// Sub-10s buckets round on a 10s floor.
		{1007, 1, 1000},
		{1007, 0, 1000},
	}
	for _, c := range cases {
		if got := BucketTo(c.to, c.bucket); got != c.want {
			t.Errorf("BucketTo(%d, %d) = %d, want %d", c.to, c.bucket, got, c.want)
		}
	}
}

func TestResultKeyStableUnderPolling(t *testing.T) {
	// Two polls one second apart inside the same bucket must share a key.
	k1 := ResultKey("BTCUSDT", domrepo.TF1m, 500, 1100, 300)
	k2 := ResultKey("BTCUSDT", domrepo.TF1m, 500, 1101, 300)
	if k1 != k2 {
		t.Fatalf("keys differ across a 1s poll: %q vs %q", k1, k2)
	}
	// Crossing the bucket boundary changes the key.
	k3 := ResultKey("BTCUSDT", domrepo.TF1m, 500, 1160, 300)
	if k1 == k3 {
		t.Fatalf("key did not advance across bucket boundary")
	}
}

func TestIndexDefaults(t *testing.T) {
	idx := NewIndex(Config{})
	if idx.EntityTTL() != 30*time.Minute {
		t.Errorf("entity ttl = %v", idx.EntityTTL())
	}
	if idx.DisplayNameTTL() != 5*time.Minute {
		t.Errorf("display name ttl = %v", idx.DisplayNameTTL())
	}
	if idx.NegativeDataTTL() != 60*time.Second {
		t.Errorf("negative ttl = %v", idx.NegativeDataTTL())
	}
	if idx.BreakerTTL() != 30*time.Second {
		t.Errorf("breaker ttl = %v", idx.BreakerTTL())
	}
}
