package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Scheduler admits, orders and executes background work on a fixed pool of
// workers while enforcing per-category concurrency ceilings.
//
// All bookkeeping happens under mu. Workers receive jobs on their own channel
// and report back on done; a single loop goroutine consumes completions.
type Scheduler struct {
	mu  sync.Mutex
	cfg Config
	log zerolog.Logger
	now func() time.Time

	pending     pendingQueue
	active      map[string]*Task
	limitActive []int
	limitsByCat map[Category][]int
	workers     []*worker
	idle        []*worker
	seq         uint64
	disposed    bool
	stats       map[Category]*CategoryStats

	baseCtx    context.Context
	baseCancel context.CancelFunc
	done       chan completion
	stopCh     chan struct{}
	loopDone   chan struct{}
	wg         sync.WaitGroup
}

// New builds a Scheduler and starts its workers.
func New(cfg Config) *Scheduler {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cfg:         cfg,
		log:         cfg.Logger.With().Str("component", "scheduler").Logger(),
		now:         cfg.Now,
		active:      make(map[string]*Task),
		limitActive: make([]int, len(cfg.Limits)),
		limitsByCat: make(map[Category][]int),
		stats:       make(map[Category]*CategoryStats),
		baseCtx:     ctx,
		baseCancel:  cancel,
		done:        make(chan completion),
		stopCh:      make(chan struct{}),
		loopDone:    make(chan struct{}),
	}
	for i, l := range cfg.Limits {
		for _, c := range l.Categories {
			s.limitsByCat[c] = append(s.limitsByCat[c], i)
		}
	}
	for i := 0; i < cfg.Workers; i++ {
		w := newWorker(i)
		s.workers = append(s.workers, w)
		s.idle = append(s.idle, w)
		s.wg.Add(1)
		go w.run(s.done, &s.wg)
	}
	go s.loop()
	s.log.Info().Str("event", "started").Int("workers", cfg.Workers).Msg("scheduler")
	return s
}

// Workers returns the pool size.
func (s *Scheduler) Workers() int { return len(s.workers) }

func (s *Scheduler) loop() {
	defer close(s.loopDone)
	for {
		select {
		case c := <-s.done:
			s.complete(c.worker, c.task, c.val, c.err, c.duration)
		case <-s.stopCh:
			return
		}
	}
}

// Submit hands op to the scheduler. Critical work runs on the calling
// goroutine and is resolved before Submit returns; everything else is queued
// and dispatched as soon as a worker and a ceiling slot are free.
func (s *Scheduler) Submit(cat Category, prio Priority, op Operation, opts ...SubmitOption) (*Task, error) {
	if op == nil {
		return nil, errors.New("scheduler: nil operation")
	}
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		tasksTotal.WithLabelValues(string(cat), outcomeRejected).Inc()
		return nil, ErrDisposed
	}
	t := newTask(s.baseCtx, cat, prio, op, s.now())
	t.timeout = s.cfg.Timeouts[cat]
	for _, opt := range opts {
		opt(t)
	}
	s.seq++
	t.seq = s.seq
	categoryStats(s.stats, cat).Submitted++

	if prio == PriorityCritical {
		s.runInline(t)
		return t, nil
	}

	s.pending.push(t)
	s.log.Debug().Str("event", "submitted").Str("task", t.id).Str("category", string(cat)).Stringer("priority", prio).Msg("scheduler")
	s.dispatchLocked()
	s.mu.Unlock()
	return t, nil
}

// runInline is entered with mu held and returns with it released.
func (s *Scheduler) runInline(t *Task) {
	if !s.admissibleLocked(t.category) {
		categoryStats(s.stats, t.category).Rejected++
		s.mu.Unlock()
		tasksTotal.WithLabelValues(string(t.category), outcomeRejected).Inc()
		t.cancel()
		t.future.resolve(nil, taskErr(t, ErrCategoryBusy))
		t.settle()
		s.log.Warn().Str("event", "rejected").Str("task", t.id).Str("category", string(t.category)).Msg("scheduler")
		return
	}
	now := s.now()
	s.acquireLocked(t.category)
	s.active[t.id] = t
	activeGauge.WithLabelValues(string(t.category)).Inc()
	t.start(now, s.expire)
	s.mu.Unlock()

	start := time.Now()
	val, err := t.run()
	s.complete(nil, t, val, err, time.Since(start))
}

func (s *Scheduler) admissibleLocked(cat Category) bool {
	for _, i := range s.limitsByCat[cat] {
		if s.limitActive[i] >= s.cfg.Limits[i].Max {
			return false
		}
	}
	return true
}

func (s *Scheduler) acquireLocked(cat Category) {
	for _, i := range s.limitsByCat[cat] {
		s.limitActive[i]++
	}
}

func (s *Scheduler) releaseLocked(cat Category) {
	for _, i := range s.limitsByCat[cat] {
		if s.limitActive[i] > 0 {
			s.limitActive[i]--
		}
	}
}

// dispatchLocked re-orders the pending set and starts every admissible task
// it can, best score first.
func (s *Scheduler) dispatchLocked() {
	defer func() { pendingGauge.Set(float64(s.pending.len())) }()
	if s.disposed || s.pending.len() == 0 || len(s.idle) == 0 {
		return
	}
	now := s.now()
	s.pending.order(now, s.cfg.PriorityWeight, s.cfg.AgeStep)
	for i := 0; i < s.pending.len() && len(s.idle) > 0; {
		t := s.pending.tasks[i]
		if !s.admissibleLocked(t.category) {
			i++
			continue
		}
		s.pending.removeAt(i)
		w := s.idle[len(s.idle)-1]
		s.idle = s.idle[:len(s.idle)-1]
		s.startLocked(w, t, now)
	}
}

func (s *Scheduler) startLocked(w *worker, t *Task, now time.Time) {
	s.acquireLocked(t.category)
	s.active[t.id] = t
	activeGauge.WithLabelValues(string(t.category)).Inc()
	taskWait.WithLabelValues(string(t.category)).Observe(now.Sub(t.createdAt).Seconds())
	t.start(now, s.expire)
	s.log.Debug().Str("event", "dispatched").Str("task", t.id).Int("worker", w.id).Msg("scheduler")
	w.jobs <- t
}

// expire runs on the timer goroutine. The operation keeps its slot until it
// actually returns.
func (s *Scheduler) expire(t *Task) {
	if t.cancelled.Load() {
		return
	}
	t.timedOut.Store(true)
	t.cancel()
	if t.future.resolve(nil, taskErr(t, ErrTimeout)) {
		s.log.Warn().Str("event", "timeout").Str("task", t.id).Str("category", string(t.category)).Dur("timeout", t.Timeout()).Msg("scheduler")
	}
}

// complete releases the task's slot, records the outcome, resolves the future
// and dispatches whatever the freed slot admits. w is nil for inline tasks.
func (s *Scheduler) complete(w *worker, t *Task, val any, err error, dur time.Duration) {
	t.stopTimer()

	s.mu.Lock()
	delete(s.active, t.id)
	s.releaseLocked(t.category)
	activeGauge.WithLabelValues(string(t.category)).Dec()
	if w != nil && !s.disposed {
		s.idle = append(s.idle, w)
	}

	var (
		outcome string
		result  error
	)
	switch {
	case t.timedOut.Load():
		// expire may not have resolved the future yet
		outcome, result = outcomeTimeout, taskErr(t, ErrTimeout)
	case t.cancelled.Load():
		outcome, result = outcomeCancelled, taskErr(t, ErrCancelled)
	case s.disposed && err != nil && errors.Is(err, context.Canceled):
		outcome, result = outcomeDisposed, taskErr(t, ErrDisposed)
	case err != nil:
		outcome, result = outcomeFailed, err
	default:
		outcome = outcomeCompleted
	}
	cs := categoryStats(s.stats, t.category)
	cs.observe(dur)
	switch outcome {
	case outcomeCompleted:
		cs.Completed++
	case outcomeFailed:
		cs.Failed++
	case outcomeCancelled:
		cs.Cancelled++
	case outcomeTimeout:
		cs.TimedOut++
	case outcomeDisposed:
		cs.Disposed++
	}
	s.dispatchLocked()
	s.mu.Unlock()

	t.cancel()
	tasksTotal.WithLabelValues(string(t.category), outcome).Inc()
	taskDuration.WithLabelValues(string(t.category)).Observe(dur.Seconds())

	if result != nil {
		t.future.resolve(nil, result)
	} else {
		t.future.resolve(val, nil)
	}
	t.settle()
	ev := s.log.Debug()
	if outcome == outcomeFailed {
		ev = s.log.Warn().Err(err)
	}
	ev.Str("event", outcome).Str("task", t.id).Str("category", string(t.category)).Dur("duration", dur).Msg("scheduler")
}

// Cancel requests cancellation of a task. A pending task is removed and
// resolved immediately without ever running. An active task has its context
// cancelled and resolves once its operation returns. It reports false for
// unknown or already resolved tasks.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	if t := s.pending.remove(id); t != nil {
		categoryStats(s.stats, t.category).Cancelled++
		s.dispatchLocked()
		s.mu.Unlock()
		s.resolveCancelled(t)
		return true
	}
	t, ok := s.active[id]
	s.mu.Unlock()
	if !ok {
		return false
	}
	if _, _, resolved := t.future.Result(); resolved {
		return false
	}
	t.cancelled.Store(true)
	t.cancel()
	s.log.Debug().Str("event", "cancel_requested").Str("task", id).Msg("scheduler")
	return true
}

// CancelByCategory cancels every pending task of cat and returns how many were
// removed. Active tasks are left alone.
func (s *Scheduler) CancelByCategory(cat Category) int {
	s.mu.Lock()
	removed := s.pending.removeCategory(cat)
	categoryStats(s.stats, cat).Cancelled += int64(len(removed))
	s.dispatchLocked()
	s.mu.Unlock()
	for _, t := range removed {
		s.resolveCancelled(t)
	}
	return len(removed)
}

func (s *Scheduler) resolveCancelled(t *Task) {
	t.cancelled.Store(true)
	t.cancel()
	tasksTotal.WithLabelValues(string(t.category), outcomeCancelled).Inc()
	t.future.resolve(nil, taskErr(t, ErrCancelled))
	t.settle()
}

// Dispose stops accepting work, resolves every pending task with ErrDisposed
// and shuts the workers down. It waits for running operations until ctx is
// done; whatever is still active then is resolved with ErrDisposed and
// abandoned. Calling Dispose more than once is a no-op.
func (s *Scheduler) Dispose(ctx context.Context) error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return nil
	}
	s.disposed = true
	drained := s.pending.drain()
	for _, t := range drained {
		categoryStats(s.stats, t.category).Disposed++
	}
	for _, w := range s.workers {
		close(w.jobs)
	}
	s.idle = nil
	s.mu.Unlock()
	pendingGauge.Set(0)

	for _, t := range drained {
		t.cancel()
		tasksTotal.WithLabelValues(string(t.category), outcomeDisposed).Inc()
		t.future.resolve(nil, taskErr(t, ErrDisposed))
		t.settle()
	}
	s.baseCancel()
	s.log.Info().Str("event", "disposing").Int("pending_dropped", len(drained)).Msg("scheduler")

	finished := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(s.stopCh)
		<-s.loopDone
		close(finished)
	}()

	select {
	case <-finished:
		s.log.Info().Str("event", "disposed").Msg("scheduler")
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		abandoned := make([]*Task, 0, len(s.active))
		for _, t := range s.active {
			abandoned = append(abandoned, t)
		}
		s.mu.Unlock()
		for _, t := range abandoned {
			t.future.resolve(nil, taskErr(t, ErrDisposed))
		}
		s.log.Warn().Str("event", "disposed").Int("abandoned", len(abandoned)).Msg("scheduler")
		return ctx.Err()
	}
}

// Disposed reports whether Dispose has been called.
func (s *Scheduler) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}
