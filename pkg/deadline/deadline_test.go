package deadline

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunCompletes(t *testing.T) {
	v, ok, err := Run(context.Background(), time.Second, func(ctx context.Context) (int, error) {
		return 42, nil
	})
	if !ok || err != nil || v != 42 {
		t.Fatalf("got v=%d ok=%v err=%v", v, ok, err)
	}
}

func TestRunPropagatesError(t *testing.T) {
	want := errors.New("store down")
	_, ok, err := Run(context.Background(), time.Second, func(ctx context.Context) (int, error) {
		return 0, want
	})
	if !ok || !errors.Is(err, want) {
		t.Fatalf("got ok=%v err=%v", ok, err)
	}
}

func TestRunDeadlineYieldsAbsence(t *testing.T) {
	v, ok, err := Run(context.Background(), 10*time.Millisecond, func(ctx context.Context) (string, error) {
		select {
		case <-time.After(time.Second):
			return "late", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})
	if ok {
		t.Fatalf("expected deadline to win")
	}
	if err != nil {
		t.Fatalf("absence must not carry an error, got %v", err)
	}
	if v != "" {
		t.Fatalf("expected zero value, got %q", v)
	}
}

func TestRunCancelsAbandonedOp(t *testing.T) {
	cancelled := make(chan struct{})
	_, ok, _ := Run(context.Background(), 10*time.Millisecond, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		close(cancelled)
		return 0, ctx.Err()
	})
	if ok {
		t.Fatalf("expected deadline to win")
	}
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatalf("abandoned op never saw cancellation")
	}
}
