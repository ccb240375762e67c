// Package deadline bounds external calls with per-call-class deadlines.
package deadline

import (
	"context"
	"time"
)

type result[T any] struct {
	v   T
	err error
}

// Run races op against d. When op finishes first its value and error are
// returned with ok=true. When the deadline (or the parent context) wins the
// zero value is returned with ok=false and a nil error: the caller must treat
// the outcome as absence, exactly like an empty result, not as a failure to
// propagate. The operation receives a child context that is cancelled once
// the race is decided, so abandoned work can actually stop.
func Run[T any](ctx context.Context, d time.Duration, op func(context.Context) (T, error)) (T, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	ch := make(chan result[T], 1)
	go func() {
		v, err := op(ctx)
		ch <- result[T]{v: v, err: err}
	}()

	select {
	case r := <-ch:
		return r.v, true, r.err
	case <-ctx.Done():
		var zero T
		return zero, false, nil
	}
}
