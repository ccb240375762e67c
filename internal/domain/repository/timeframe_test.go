package repository

import "testing"

func TestParseResolution(t *testing.T) {
	cases := map[string]Timeframe{
		"1":   TF1m,
		"5":   TF5m,
		"15":  TF15m,
		"30":  TF30m,
		"60":  TF1h,
		"240": TF4h,
		"D":   TF1d,
		"1D":  TF1d,
		"W":   TF1w,
		"1W":  TF1w,
		"M":   TF1M,
		"1M":  TF1M,
	}
	for code, want := range cases {
		got, err := ParseResolution(code)
		if err != nil {
			t.Fatalf("ParseResolution(%q) error: %v", code, err)
		}
		if got != want {
			t.Fatalf("ParseResolution(%q) = %s, want %s", code, got, want)
		}
	}
}

func TestParseResolutionRejectsUnknown(t *testing.T) {
	for _, code := range []string{"", "7", "2D", "d", "1min"} {
		if _, err := ParseResolution(code); err != ErrUnsupportedResolution {
			t.Fatalf("ParseResolution(%q) = %v, want ErrUnsupportedResolution", code, err)
		}
	}
}

func TestClampLimit(t *testing.T) {
	if got := ClampLimit(0); got != DefaultLimit {
		t.Fatalf("missing countback: got %d, want %d", got, DefaultLimit)
	}
	if got := ClampLimit(-5); got != DefaultLimit {
		t.Fatalf("negative countback: got %d, want %d", got, DefaultLimit)
	}
	if got := ClampLimit(10_000); got != MaxLimit {
		t.Fatalf("oversized countback: got %d, want %d", got, MaxLimit)
	}
	if got := ClampLimit(42); got != 42 {
		t.Fatalf("in-range countback: got %d, want 42", got)
	}
}

func TestClampFromBoundsLookback(t *testing.T) {
	// 100 one-minute bars allow at most 100*60*1.5 = 9000s of lookback.
	to := int64(1_000_000)
	got := ClampFrom(0, to, 100, TF1m)
	if got != to-9000 {
		t.Fatalf("got %d, want %d", got, to-9000)
	}

	// A from inside the window is preserved.
	if got := ClampFrom(to-100, to, 100, TF1m); got != to-100 {
		t.Fatalf("got %d, want %d", got, to-100)
	}
}

func TestSupportsFallback(t *testing.T) {
	for _, tf := range []Timeframe{TF1m, TF5m, TF15m, TF30m, TF1h, TF4h, TF1d} {
		if !SupportsFallback(tf) {
			t.Fatalf("%s should support fallback", tf)
		}
	}
	for _, tf := range []Timeframe{TF1w, TF1M} {
		if SupportsFallback(tf) {
			t.Fatalf("%s should not support fallback", tf)
		}
	}
}
