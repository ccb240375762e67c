package repository

import "errors"

// Timeframe represents candle resolution buckets.
type Timeframe string

const (
	TF1m  Timeframe = "1m"
	TF5m  Timeframe = "5m"
	TF15m Timeframe = "15m"
	TF30m Timeframe = "30m"
	TF1h  Timeframe = "1h"
	TF4h  Timeframe = "4h"
	TF1d  Timeframe = "1d"
	TF1w  Timeframe = "1w"
	TF1M  Timeframe = "1M"
)

// ErrUnsupportedResolution is returned for resolution codes outside the
// chart client's enumeration. It is a client input error, never cached.
var ErrUnsupportedResolution = errors.New("unsupported resolution")

// Bar limits applied to every request regardless of client input.
const (
	MinLimit     = 1
	MaxLimit     = 500
	DefaultLimit = 300
)

// lookbackFactor bounds how far back the effective range may reach relative
// to the requested bar count, so the store never scans far more history than
// the client can render.
const lookbackFactor = 1.5

// ParseResolution maps a chart client resolution code to a canonical
// timeframe.
func ParseResolution(code string) (Timeframe, error) {
	switch code {
	case "1":
		return TF1m, nil
	case "5":
		return TF5m, nil
	case "15":
		return TF15m, nil
	case "30":
		return TF30m, nil
	case "60":
		return TF1h, nil
	case "240":
		return TF4h, nil
	case "D", "1D":
		return TF1d, nil
	case "W", "1W":
		return TF1w, nil
	case "M", "1M":
		return TF1M, nil
	default:
		return "", ErrUnsupportedResolution
	}
}

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf Timeframe) bool {
	_, ok := bucketSeconds[tf]
	return ok
}

var bucketSeconds = map[Timeframe]int64{
	TF1m:  60,
	TF5m:  300,
	TF15m: 900,
	TF30m: 1800,
	TF1h:  3600,
	TF4h:  14400,
	TF1d:  86400,
	TF1w:  604800,
	// 30-day approximation; used only to bound lookback, never for
	// bucket alignment of returned data.
	TF1M: 2592000,
}

// BucketSeconds returns the bucket duration of tf in seconds.
func BucketSeconds(tf Timeframe) int64 {
	return bucketSeconds[tf]
}

// SupportsFallback reports whether synthetic bars may be derived from the raw
// per-minute series for tf. Week and month buckets fall straight through to
// no data.
func SupportsFallback(tf Timeframe) bool {
	switch tf {
	case TF1m, TF5m, TF15m, TF30m, TF1h, TF4h, TF1d:
		return true
	default:
		return false
	}
}

// ClampLimit bounds a requested bar count to [MinLimit, MaxLimit]. A missing
// count (<= 0) falls back to DefaultLimit.
func ClampLimit(n int) int {
	if n <= 0 {
		return DefaultLimit
	}
	if n < MinLimit {
		return MinLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

// ClampFrom bounds the effective start of the range to a lookback window
// proportional to the requested bar count. The result is never earlier than
// the requested from.
func ClampFrom(from, to int64, limit int, tf Timeframe) int64 {
	lookback := int64(float64(limit) * float64(BucketSeconds(tf)) * lookbackFactor)
	if floor := to - lookback; floor > from {
		return floor
	}
	return from
}
