package manager

import "time"

// Event names published by the manager.
const (
	EventStateChanged     = "state_changed"
	EventInitStart        = "init_start"
	EventInitDone         = "init_done"
	EventInitFailed       = "init_failed"
	EventExtractSkipped   = "extract_skipped"
	EventExtractDone      = "extract_done"
	EventGenerationStart  = "generation_start"
	EventGenerationDone   = "generation_done"
	EventGenerationFailed = "generation_failed"
	EventGenerationCancel = "generation_cancelled"
	EventUnloadStart      = "unload_start"
	EventUnloadDone       = "unload_done"
)

// Event represents a manager lifecycle event.
// Minimal and stable: name + model ID and optional fields via key/values.
type Event struct {
	Name    string
	ModelID string
	Time    time.Time
	Fields  map[string]any
}

// EventPublisher receives events from the manager. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// ChannelPublisher forwards events to a buffered channel for live watchers.
// Events are dropped when the buffer is full.
type ChannelPublisher struct {
	ch chan Event
}

// NewChannelPublisher returns a publisher with the given buffer size.
func NewChannelPublisher(buffer int) *ChannelPublisher {
	if buffer <= 0 {
		buffer = 64
	}
	return &ChannelPublisher{ch: make(chan Event, buffer)}
}

func (p *ChannelPublisher) Publish(e Event) {
	select {
	case p.ch <- e:
	default:
	}
}

// Events returns the receive side of the channel.
func (p *ChannelPublisher) Events() <-chan Event { return p.ch }

// multiPublisher fans an event out to several publishers.
type multiPublisher []EventPublisher

func (m multiPublisher) Publish(e Event) {
	for _, p := range m {
		p.Publish(e)
	}
}

// Publishers combines publishers; nil entries are skipped.
func Publishers(ps ...EventPublisher) EventPublisher {
	var out multiPublisher
	for _, p := range ps {
		if p != nil {
			out = append(out, p)
		}
	}
	switch len(out) {
	case 0:
		return noopPublisher{}
	case 1:
		return out[0]
	}
	return out
}
