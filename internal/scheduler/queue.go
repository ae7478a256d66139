package scheduler

import (
	"slices"
	"time"
)

// pendingQueue holds admitted-but-not-running tasks. It is only touched with
// the scheduler mutex held.
type pendingQueue struct {
	tasks []*Task
}

func (q *pendingQueue) len() int { return len(q.tasks) }

func (q *pendingQueue) push(t *Task) { q.tasks = append(q.tasks, t) }

func (q *pendingQueue) find(id string) int {
	for i, t := range q.tasks {
		if t.id == id {
			return i
		}
	}
	return -1
}

func (q *pendingQueue) removeAt(i int) *Task {
	t := q.tasks[i]
	q.tasks = slices.Delete(q.tasks, i, i+1)
	return t
}

// remove drops the task with id and returns it, or nil.
func (q *pendingQueue) remove(id string) *Task {
	if i := q.find(id); i >= 0 {
		return q.removeAt(i)
	}
	return nil
}

// removeCategory drops every task of cat, preserving the order of the rest.
func (q *pendingQueue) removeCategory(cat Category) []*Task {
	var out []*Task
	kept := q.tasks[:0]
	for _, t := range q.tasks {
		if t.category == cat {
			out = append(out, t)
			continue
		}
		kept = append(kept, t)
	}
	clear(q.tasks[len(kept):])
	q.tasks = kept
	return out
}

func (q *pendingQueue) drain() []*Task {
	out := q.tasks
	q.tasks = nil
	return out
}

// order sorts by score, highest first; equal scores keep submission order.
func (q *pendingQueue) order(now time.Time, weight int, ageStep time.Duration) {
	scores := make(map[*Task]int, len(q.tasks))
	for _, t := range q.tasks {
		scores[t] = t.score(now, weight, ageStep)
	}
	slices.SortFunc(q.tasks, func(a, b *Task) int {
		if sa, sb := scores[a], scores[b]; sa != sb {
			return sb - sa
		}
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})
}
