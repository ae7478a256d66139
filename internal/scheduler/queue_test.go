package scheduler

import (
	"context"
	"testing"
	"time"
)

func queuedTask(id string, prio Priority, created time.Time, seq uint64) *Task {
	t := newTask(context.Background(), CategoryStorage, prio, nil, created)
	t.id = id
	t.seq = seq
	return t
}

func TestQueueOrderByScoreThenSeq(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var q pendingQueue
	q.push(queuedTask("low-old", PriorityLow, base, 1))
	q.push(queuedTask("normal", PriorityNormal, base.Add(50*time.Second), 2))
	q.push(queuedTask("high", PriorityHigh, base.Add(55*time.Second), 3))
	q.push(queuedTask("normal-2", PriorityNormal, base.Add(50*time.Second), 4))

	// at +60s: low-old 10+6=16, normal 20+1=21, high 30+0=30, normal-2 21
	q.order(base.Add(60*time.Second), 10, 10*time.Second)
	want := []string{"high", "normal", "normal-2", "low-old"}
	for i, id := range want {
		if q.tasks[i].id != id {
			t.Fatalf("position %d = %s, want %s", i, q.tasks[i].id, id)
		}
	}

	// a long wait lets the low task overtake fresh high-priority work
	q.push(queuedTask("high-fresh", PriorityHigh, base.Add(290*time.Second), 5))
	q.order(base.Add(300*time.Second), 10, 10*time.Second)
	pos := map[string]int{}
	for i, task := range q.tasks {
		pos[task.id] = i
	}
	if pos["low-old"] > pos["high-fresh"] {
		t.Fatalf("low-old at %d behind high-fresh at %d", pos["low-old"], pos["high-fresh"])
	}
}

func TestQueueRemove(t *testing.T) {
	base := time.Now()
	var q pendingQueue
	q.push(queuedTask("a", PriorityLow, base, 1))
	q.push(queuedTask("b", PriorityLow, base, 2))
	q.push(queuedTask("c", PriorityLow, base, 3))
	q.tasks[1].category = CategoryExport

	if got := q.remove("missing"); got != nil {
		t.Fatalf("remove missing = %v", got)
	}
	if got := q.remove("a"); got == nil || got.id != "a" {
		t.Fatalf("remove a = %v", got)
	}
	removed := q.removeCategory(CategoryExport)
	if len(removed) != 1 || removed[0].id != "b" {
		t.Fatalf("removeCategory = %v", removed)
	}
	if q.len() != 1 || q.tasks[0].id != "c" {
		t.Fatalf("remaining = %d", q.len())
	}
	if drained := q.drain(); len(drained) != 1 || q.len() != 0 {
		t.Fatalf("drain left %d", q.len())
	}
}

func TestScoreIgnoresClockSkew(t *testing.T) {
	base := time.Now()
	task := queuedTask("x", PriorityHigh, base, 1)
	if got := task.score(base.Add(-time.Minute), 10, 10*time.Second); got != 30 {
		t.Fatalf("score = %d, want 30", got)
	}
}
