package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock for age-bonus tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// newTestScheduler builds a scheduler and disposes it when the test ends.
func newTestScheduler(t *testing.T, cfg Config) *Scheduler {
	t.Helper()
	s := New(cfg)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Dispose(ctx)
	})
	return s
}

// serialLimits puts Storage behind a ceiling of one.
func serialLimits() []Limit {
	return []Limit{{Categories: []Category{CategoryStorage}, Max: 1}}
}

// gatedOp reports its name on ran once started and then blocks until release
// yields a value.
func gatedOp(name string, ran chan<- string, release <-chan struct{}) Operation {
	return func(ctx context.Context) (any, error) {
		ran <- name
		<-release
		return name, nil
	}
}

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting on channel")
	}
	var zero T
	return zero
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return ctx
}
