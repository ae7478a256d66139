package scheduler

import (
	"time"

	"github.com/rs/zerolog"

	"localmind/internal/common/hostinfo"
)

// Defaults applied when corresponding Config fields are unset.
const (
	minWorkers = 2
	maxWorkers = 8

	defaultPriorityWeight   = 10
	defaultAgeStep          = 10 * time.Second
	defaultInferenceTimeout = 120 * time.Second
	defaultModelLoadTimeout = 60 * time.Second
	defaultMemorySearchMax  = 2
)

// Limit caps the number of simultaneously active tasks across a set of
// categories. A category may appear in several limits; all must have room.
type Limit struct {
	Categories []Category
	Max        int
}

// DefaultLimits returns the stock ceilings: the inference engine is shared by
// inference and model loading, so both draw on a single slot.
func DefaultLimits() []Limit {
	return []Limit{
		{Categories: []Category{CategoryInference, CategoryModelLoad}, Max: 1},
		{Categories: []Category{CategoryMemorySearch}, Max: defaultMemorySearchMax},
		{Categories: []Category{CategoryFaceDetect}, Max: 1},
		{Categories: []Category{CategoryVoiceSynthesis}, Max: 1},
	}
}

// Config encapsulates all tunables for Scheduler construction.
type Config struct {
	// Workers is the pool size; zero derives it from the host. Always clamped to [2, 8].
	Workers int
	// Limits overrides DefaultLimits when non-nil.
	Limits []Limit
	// MemorySearchCeiling replaces the MemorySearch entry of DefaultLimits when Limits is nil.
	MemorySearchCeiling int
	// Timeouts per category; categories missing here have no default timeout.
	Timeouts map[Category]time.Duration
	// PriorityWeight multiplies the priority rank in the pending score.
	PriorityWeight int
	// AgeStep is the wait that earns one point of age bonus.
	AgeStep time.Duration
	// Now is the clock; tests substitute a fake one.
	Now    func() time.Time
	Logger zerolog.Logger
}

// DefaultTimeouts returns the stock per-category timeouts.
func DefaultTimeouts() map[Category]time.Duration {
	return map[Category]time.Duration{
		CategoryInference: defaultInferenceTimeout,
		CategoryModelLoad: defaultModelLoadTimeout,
	}
}

// PoolSize clamps a hardware thread count to the pool bounds.
func PoolSize(hw int) int { return hostinfo.Clamp(hw, minWorkers, maxWorkers) }

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = hostinfo.LogicalCPUs()
	}
	c.Workers = PoolSize(c.Workers)
	if c.Limits == nil {
		c.Limits = DefaultLimits()
		if c.MemorySearchCeiling > 0 {
			for i := range c.Limits {
				if len(c.Limits[i].Categories) == 1 && c.Limits[i].Categories[0] == CategoryMemorySearch {
					c.Limits[i].Max = c.MemorySearchCeiling
				}
			}
		}
	}
	timeouts := DefaultTimeouts()
	for cat, d := range c.Timeouts {
		timeouts[cat] = d
	}
	c.Timeouts = timeouts
	if c.PriorityWeight <= 0 {
		c.PriorityWeight = defaultPriorityWeight
	}
	if c.AgeStep <= 0 {
		c.AgeStep = defaultAgeStep
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}
