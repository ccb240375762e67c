package cache

import (
	"testing"
	"time"
)

func TestStoreGetSet(t *testing.T) {
	s := New[int](0)
	if _, ok := s.Get("a"); ok {
		t.Fatalf("expected miss on empty store")
	}
	s.Set("a", 7, time.Minute)
	v, ok := s.Get("a")
	if !ok || v != 7 {
		t.Fatalf("expected 7, got %v ok=%v", v, ok)
	}
}

func TestStoreExpiry(t *testing.T) {
	s := New[string](0)
	s.Set("a", "x", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	if _, ok := s.Get("a"); ok {
		t.Fatalf("expected expired entry to miss")
	}
	if s.Len() != 0 {
		t.Fatalf("expected expired entry removed on read, len=%d", s.Len())
	}
}

func TestStoreNoExpiry(t *testing.T) {
	s := New[string](0)
	s.Set("a", "x", 0)
	if _, ok := s.Get("a"); !ok {
		t.Fatalf("expected zero ttl to mean no expiry")
	}
}

func TestStoreOverflowClearsAll(t *testing.T) {
	s := New[int](2)
	s.Set("a", 1, time.Minute)
	s.Set("b", 2, time.Minute)
	// Third distinct key overflows capacity and wipes the store.
	s.Set("c", 3, time.Minute)
	if s.Len() != 1 {
		t.Fatalf("expected full clear then single insert, len=%d", s.Len())
	}
	if _, ok := s.Get("a"); ok {
		t.Fatalf("expected a evicted by full clear")
	}
	if v, ok := s.Get("c"); !ok || v != 3 {
		t.Fatalf("expected c present after clear")
	}
}

func TestStoreOverwriteAtCapacity(t *testing.T) {
	s := New[int](2)
	s.Set("a", 1, time.Minute)
	s.Set("b", 2, time.Minute)
	// Overwriting an existing key must not trigger the clear.
	s.Set("b", 9, time.Minute)
	if s.Len() != 2 {
		t.Fatalf("expected overwrite to keep both entries, len=%d", s.Len())
	}
	if v, _ := s.Get("b"); v != 9 {
		t.Fatalf("expected overwritten value")
	}
}

func TestKey(t *testing.T) {
	got := Key("result", "BTC", "1m", 100, 200, 300)
	want := "result|BTC|1m|100|200|300"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
