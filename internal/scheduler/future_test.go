package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFutureResolveOnce(t *testing.T) {
	f := newFuture()
	var calls int
	f.OnResolve(func(any, error) { calls++ })

	if !f.resolve("first", nil) {
		t.Fatalf("first resolve should win")
	}
	if f.resolve("second", errors.New("late")) {
		t.Fatalf("second resolve should be ignored")
	}
	v, err, ok := f.Result()
	if !ok || err != nil || v != "first" {
		t.Fatalf("result = %v %v %v", v, err, ok)
	}
	f.OnResolve(func(any, error) { calls++ })
	if calls != 2 {
		t.Fatalf("observer calls = %d, want 2", calls)
	}
}

func TestFutureWaitHonoursContext(t *testing.T) {
	f := newFuture()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := f.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}
	if _, _, ok := f.Result(); ok {
		t.Fatalf("unresolved future reported ok")
	}
}

func TestAwaitTypeMismatch(t *testing.T) {
	f := newFuture()
	f.resolve("text", nil)
	if _, err := Await[int](context.Background(), f); err == nil {
		t.Fatalf("expected type error")
	}
	got, err := Await[string](context.Background(), f)
	if err != nil || got != "text" {
		t.Fatalf("Await = %q %v", got, err)
	}
}
