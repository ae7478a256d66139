package scheduler

import (
	"context"
	"fmt"
	"sync"
)

// Future is a single-assignment result slot. It is resolved exactly once and
// may be read any number of times afterwards.
type Future struct {
	once      sync.Once
	done      chan struct{}
	mu        sync.Mutex
	val       any
	err       error
	observers []func(any, error)
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// resolve stores the outcome. Only the first call has any effect; it reports
// whether this call was the one that resolved the future.
func (f *Future) resolve(val any, err error) bool {
	resolved := false
	f.once.Do(func() {
		f.mu.Lock()
		f.val, f.err = val, err
		obs := f.observers
		f.observers = nil
		close(f.done)
		f.mu.Unlock()
		for _, fn := range obs {
			fn(val, err)
		}
		resolved = true
	})
	return resolved
}

// Done is closed once the future resolves.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the future resolves or ctx is done.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result returns the outcome without blocking. ok is false while unresolved.
func (f *Future) Result() (val any, err error, ok bool) {
	select {
	case <-f.done:
		return f.val, f.err, true
	default:
		return nil, nil, false
	}
}

// OnResolve registers fn to run with the outcome. If the future is already
// resolved fn runs immediately on the calling goroutine.
func (f *Future) OnResolve(fn func(any, error)) {
	f.mu.Lock()
	select {
	case <-f.done:
		val, err := f.val, f.err
		f.mu.Unlock()
		fn(val, err)
		return
	default:
	}
	f.observers = append(f.observers, fn)
	f.mu.Unlock()
}

// Await waits on f and asserts the value to T.
func Await[T any](ctx context.Context, f *Future) (T, error) {
	var zero T
	v, err := f.Wait(ctx)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("scheduler: unexpected result type %T", v)
	}
	return out, nil
}
