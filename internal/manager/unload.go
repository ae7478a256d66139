package manager

import (
	"context"
	"fmt"

	"localmind/internal/scheduler"
)

// Unload releases the model from the engine and returns the manager to
// Uninitialized. The engine call runs as a model-load task so it never
// overlaps a generation or a load. Unloading while a generation is running
// or while initialization is in progress is refused.
func (m *Manager) Unload(ctx context.Context) error {
	m.initMu.Lock()
	defer m.initMu.Unlock()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrDisposed
	}
	state := m.state
	switch state {
	case StateGenerating:
		m.mu.Unlock()
		return ErrGenerationInFlight
	case StateExtractingModel, StateLoading:
		m.mu.Unlock()
		return fmt.Errorf("%w: state %s", ErrNotReady, state)
	}
	// hold the in-flight slot so no generation starts mid-unload
	select {
	case m.genCh <- struct{}{}:
	default:
		m.mu.Unlock()
		return ErrGenerationInFlight
	}
	m.mu.Unlock()
	defer func() { <-m.genCh }()

	m.publish(EventUnloadStart, map[string]any{"from": state})
	if err := m.unloadEngine(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	m.cur = nil
	m.setStateLocked(StateUninitialized)
	m.mu.Unlock()
	m.log.Info().Str("event", EventUnloadDone).Msg("manager")
	m.publish(EventUnloadDone, nil)
	return nil
}

func (m *Manager) unloadEngine(ctx context.Context) error {
	task, err := m.sched.Submit(scheduler.CategoryModelLoad, scheduler.PriorityHigh,
		func(context.Context) (any, error) {
			m.engine.Unload()
			return nil, nil
		},
		scheduler.WithTimeout(m.cfg.ModelLoadTimeout),
	)
	if err != nil {
		return err
	}
	_, err = task.Wait(ctx)
	return err
}
