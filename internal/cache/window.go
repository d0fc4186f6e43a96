package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Window memoizes one value for a fixed TTL.
// Concurrent callers that find the window expired share a single fill; the
// result is stored only if no newer fill or Invalidate happened meanwhile.
type Window[T any] struct {
	TTL time.Duration
	Now func() time.Time

	sf singleflight.Group

	mu    sync.RWMutex
	value T
	until time.Time
	ok    bool
	gen   uint64
}

// NewWindow returns a Window with the given TTL.
func NewWindow[T any](ttl time.Duration) *Window[T] {
	return &Window[T]{TTL: ttl}
}

func (w *Window[T]) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// Peek returns the cached value if the window is still valid.
func (w *Window[T]) Peek() (T, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.ok && w.now().Before(w.until) {
		return w.value, true
	}
	var zero T
	return zero, false
}

// Get returns the cached value or calls fill once for all concurrent callers.
// Fill errors are returned and nothing is cached.
func (w *Window[T]) Get(ctx context.Context, fill func(ctx context.Context) (T, error)) (T, error) {
	if v, ok := w.Peek(); ok {
		return v, nil
	}

	w.mu.RLock()
	gen := w.gen
	w.mu.RUnlock()

	ch := w.sf.DoChan("window", func() (any, error) {
		// Double-check: a previous flight may have filled the window already.
		if v, ok := w.Peek(); ok {
			return v, nil
		}
		// The fill belongs to every waiter, not just the caller that started it.
		v, err := fill(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		w.mu.Lock()
		if w.gen == gen {
			w.value = v
			w.until = w.now().Add(w.TTL)
			w.ok = true
		}
		w.mu.Unlock()
		return v, nil
	})

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			var zero T
			return zero, r.Err
		}
		return r.Val.(T), nil
	}
}

// Invalidate drops the cached value. A fill already in flight is not stored.
func (w *Window[T]) Invalidate() {
	w.mu.Lock()
	var zero T
	w.value = zero
	w.ok = false
	w.until = time.Time{}
	w.gen++
	w.mu.Unlock()
	w.sf.Forget("window")
}
