// Package telemetry keeps a bounded history of inference samples and exports
// them to Prometheus.
package telemetry

import (
	"sync"
	"time"
)

// DefaultCapacity is the number of samples retained when none is configured.
const DefaultCapacity = 100

// Aggregate summarises the retained samples.
type Aggregate struct {
	Count             int     `json:"count"`
	MeanDurationMs    float64 `json:"mean_duration_ms"`
	MinDurationMs     float64 `json:"min_duration_ms"`
	MaxDurationMs     float64 `json:"max_duration_ms"`
	MeanTokensPerSec  float64 `json:"mean_tokens_per_second"`
	TotalOutputTokens int     `json:"total_output_tokens"`
	TotalInputTokens  int     `json:"total_input_tokens"`
}

// Recorder is a fixed-size ring of the most recent samples. Safe for
// concurrent use.
type Recorder struct {
	mu    sync.Mutex
	buf   []Sample
	next  int
	count int
}

// NewRecorder returns a recorder holding at most capacity samples.
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Recorder{buf: make([]Sample, capacity)}
}

// Record appends s, evicting the oldest sample when full.
func (r *Recorder) Record(s Sample) {
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now()
	}
	r.mu.Lock()
	r.buf[r.next] = s
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
	r.mu.Unlock()
	observe(s)
}

// Len returns the number of retained samples.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Cap returns the ring capacity.
func (r *Recorder) Cap() int { return len(r.buf) }

// Samples returns the retained samples, oldest first.
func (r *Recorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sample, 0, r.count)
	start := (r.next - r.count + len(r.buf)) % len(r.buf)
	for i := 0; i < r.count; i++ {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	return out
}

// Aggregate reports summary statistics. ok is false when nothing has been
// recorded yet.
func (r *Recorder) Aggregate() (agg Aggregate, ok bool) {
	samples := r.Samples()
	if len(samples) == 0 {
		return Aggregate{}, false
	}
	var sumMs, sumTPS float64
	for i, s := range samples {
		ms := float64(s.Duration) / float64(time.Millisecond)
		sumMs += ms
		sumTPS += s.TokensPerSecond()
		agg.TotalInputTokens += s.InputTokens
		agg.TotalOutputTokens += s.OutputTokens
		if i == 0 || ms < agg.MinDurationMs {
			agg.MinDurationMs = ms
		}
		if ms > agg.MaxDurationMs {
			agg.MaxDurationMs = ms
		}
	}
	n := float64(len(samples))
	agg.Count = len(samples)
	agg.MeanDurationMs = sumMs / n
	agg.MeanTokensPerSec = sumTPS / n
	return agg, true
}

// Reset drops every retained sample.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.buf)
	r.next, r.count = 0, 0
}
