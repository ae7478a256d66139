package scheduler

import "time"

// CategoryStats accumulates outcomes for one category.
type CategoryStats struct {
	Submitted   int64         `json:"submitted"`
	Completed   int64         `json:"completed"`
	Failed      int64         `json:"failed"`
	Cancelled   int64         `json:"cancelled"`
	TimedOut    int64         `json:"timed_out"`
	Rejected    int64         `json:"rejected"`
	Disposed    int64         `json:"disposed"`
	Active      int           `json:"active"`
	Pending     int           `json:"pending"`
	AvgDuration time.Duration `json:"avg_duration"`
	// executions feeds the running mean; cancelled-while-pending tasks never ran.
	executions int64
}

func (c *CategoryStats) observe(d time.Duration) {
	c.executions++
	c.AvgDuration += (d - c.AvgDuration) / time.Duration(c.executions)
}

func (c *CategoryStats) resolved() int64 {
	return c.Completed + c.Failed + c.Cancelled + c.TimedOut + c.Rejected + c.Disposed
}

// Stats is a read-only snapshot of scheduler activity.
type Stats struct {
	Workers     int                         `json:"workers"`
	BusyWorkers int                         `json:"busy_workers"`
	Pending     int                         `json:"pending"`
	Active      int                         `json:"active"`
	Submitted   int64                       `json:"submitted"`
	Resolved    int64                       `json:"resolved"`
	Disposed    bool                        `json:"disposed"`
	Categories  map[Category]*CategoryStats `json:"categories"`
}

// Stats returns a copy of the current statistics.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := Stats{
		Workers:    len(s.workers),
		Pending:    s.pending.len(),
		Active:     len(s.active),
		Disposed:   s.disposed,
		Categories: make(map[Category]*CategoryStats, len(s.stats)),
	}
	for _, w := range s.workers {
		if w.busy.Load() {
			out.BusyWorkers++
		}
	}
	for cat, cs := range s.stats {
		cp := *cs
		cp.Active, cp.Pending = 0, 0
		out.Categories[cat] = &cp
		out.Submitted += cs.Submitted
		out.Resolved += cs.resolved()
	}
	for _, t := range s.pending.tasks {
		categoryStats(out.Categories, t.category).Pending++
	}
	for _, t := range s.active {
		categoryStats(out.Categories, t.category).Active++
	}
	return out
}

func categoryStats(m map[Category]*CategoryStats, cat Category) *CategoryStats {
	cs, ok := m[cat]
	if !ok {
		cs = &CategoryStats{}
		m[cat] = cs
	}
	return cs
}

// Pending returns the number of queued tasks.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending.len()
}

// ActiveCount returns the number of active tasks in cat.
func (s *Scheduler) ActiveCount(cat Category) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.active {
		if t.category == cat {
			n++
		}
	}
	return n
}

// Completed returns the number of tasks that finished successfully.
func (s *Scheduler) Completed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, cs := range s.stats {
		n += cs.Completed
	}
	return n
}
