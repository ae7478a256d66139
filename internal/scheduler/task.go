package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Category partitions work for the purpose of concurrency ceilings.
type Category string

const (
	CategoryInference      Category = "inference"
	CategoryModelLoad      Category = "model_load"
	CategoryMemorySearch   Category = "memory_search"
	CategoryFaceDetect     Category = "face_detect"
	CategoryVoiceSynthesis Category = "voice_synthesis"
	CategoryStorage        Category = "storage"
	CategoryExport         Category = "export"
	CategoryMaintenance    Category = "maintenance"
)

// Categories lists every known category in a stable order.
func Categories() []Category {
	return []Category{
		CategoryInference,
		CategoryModelLoad,
		CategoryMemorySearch,
		CategoryFaceDetect,
		CategoryVoiceSynthesis,
		CategoryStorage,
		CategoryExport,
		CategoryMaintenance,
	}
}

// Priority orders pending work. Higher values run first.
type Priority int

const (
	PriorityBackground Priority = iota
	PriorityLow
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

// Rank is the priority's weight in the pending score.
func (p Priority) Rank() int { return int(p) }

func (p Priority) String() string {
	switch p {
	case PriorityBackground:
		return "background"
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// Operation is a unit of work. ctx is cancelled when the task is cancelled,
// times out or the scheduler is disposed; long operations should check it
// between steps.
type Operation func(ctx context.Context) (any, error)

// RetryPolicy re-runs a failed operation on the same worker. Cancellation and
// timeouts are never retried.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// SubmitOption customises a single submission.
type SubmitOption func(*Task)

// WithTimeout overrides the category default. A negative value disables the timeout.
func WithTimeout(d time.Duration) SubmitOption {
	return func(t *Task) {
		if d == 0 {
			return
		}
		t.timeout = d
	}
}

// WithRetry attaches a bounded retry policy.
func WithRetry(p RetryPolicy) SubmitOption {
	return func(t *Task) { t.retry = p }
}

// Task is a unit of background work owned by the Scheduler until it resolves.
type Task struct {
	id        string
	category  Category
	priority  Priority
	createdAt time.Time
	timeout   time.Duration
	retry     RetryPolicy
	op        Operation
	future    *Future
	seq       uint64

	ctx    context.Context
	cancel context.CancelFunc

	cancelled atomic.Bool
	timedOut  atomic.Bool

	settled    chan struct{}
	settleOnce sync.Once

	mu        sync.Mutex
	startedAt time.Time
	timer     *time.Timer
}

func newTask(parent context.Context, cat Category, prio Priority, op Operation, now time.Time) *Task {
	ctx, cancel := context.WithCancel(parent)
	return &Task{
		id:        uuid.New().String(),
		category:  cat,
		priority:  prio,
		createdAt: now,
		op:        op,
		future:    newFuture(),
		settled:   make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (t *Task) ID() string           { return t.id }
func (t *Task) Category() Category   { return t.category }
func (t *Task) Priority() Priority   { return t.priority }
func (t *Task) CreatedAt() time.Time { return t.createdAt }
func (t *Task) Future() *Future      { return t.future }

// Settled is closed once the task no longer holds or waits for a slot: its
// operation returned, or it was removed before it ran. Unlike the future it
// is not closed early by a timeout.
func (t *Task) Settled() <-chan struct{} { return t.settled }

func (t *Task) settle() { t.settleOnce.Do(func() { close(t.settled) }) }

// Timeout is the effective timeout; zero means none.
func (t *Task) Timeout() time.Duration {
	if t.timeout < 0 {
		return 0
	}
	return t.timeout
}

// Cancelled reports whether cancellation was requested.
func (t *Task) Cancelled() bool { return t.cancelled.Load() }

// Wait blocks until the task resolves or ctx is done.
func (t *Task) Wait(ctx context.Context) (any, error) { return t.future.Wait(ctx) }

// score ranks a pending task; higher runs first. Every full ageStep waited
// adds one point so old low-priority work eventually overtakes fresh work.
func (t *Task) score(now time.Time, weight int, ageStep time.Duration) int {
	s := t.priority.Rank() * weight
	if ageStep > 0 {
		if age := now.Sub(t.createdAt); age > 0 {
			s += int(age / ageStep)
		}
	}
	return s
}

// start arms the timeout timer. onExpire runs at most once, on the timer goroutine.
func (t *Task) start(now time.Time, onExpire func(*Task)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.startedAt = now
	if d := t.Timeout(); d > 0 {
		t.timer = time.AfterFunc(d, func() { onExpire(t) })
	}
}

func (t *Task) stopTimer() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
}

func (t *Task) started() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.startedAt
}

// run executes the operation honouring the retry policy. Panics are converted
// to errors so a misbehaving operation cannot take a worker down.
func (t *Task) run() (any, error) {
	attempts := t.retry.attempts()
	for i := 1; ; i++ {
		val, err := t.call()
		if err == nil || i >= attempts || t.ctx.Err() != nil {
			return val, err
		}
		backoff := t.retry.Backoff * time.Duration(i)
		if backoff <= 0 {
			continue
		}
		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-t.ctx.Done():
			timer.Stop()
			return nil, err
		}
	}
}

func (t *Task) call() (val any, err error) {
	defer func() {
		if r := recover(); r != nil {
			val, err = nil, &PanicError{TaskID: t.id, Value: r}
		}
	}()
	return t.op(t.ctx)
}
