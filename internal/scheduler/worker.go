package scheduler

import (
	"sync"
	"sync/atomic"
	"time"
)

// completion is the only message a worker sends back to the scheduler.
type completion struct {
	worker   *worker
	task     *Task
	val      any
	err      error
	duration time.Duration
}

// worker is a long-lived goroutine fed through its own jobs channel. It never
// reads or writes scheduler state.
type worker struct {
	id   int
	jobs chan *Task
	busy atomic.Bool
}

func newWorker(id int) *worker {
	// Buffer of one: the scheduler only hands a job to an idle worker, so the
	// send never blocks while the scheduler mutex is held.
	return &worker{id: id, jobs: make(chan *Task, 1)}
}

func (w *worker) run(done chan<- completion, wg *sync.WaitGroup) {
	defer wg.Done()
	for t := range w.jobs {
		w.busy.Store(true)
		start := time.Now()
		val, err := t.run()
		dur := time.Since(start)
		w.busy.Store(false)
		done <- completion{worker: w, task: t, val: val, err: err, duration: dur}
	}
}
