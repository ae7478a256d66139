package manager

import (
	"fmt"

	"localmind/internal/scheduler"
)

// precheck reports admission errors without claiming anything.
func (m *Manager) precheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	switch {
	case m.closed:
		return ErrDisposed
	case m.state == StateGenerating || len(m.genCh) > 0:
		return ErrGenerationInFlight
	case m.state != StateReady:
		return fmt.Errorf("%w: state %s", ErrNotReady, m.state)
	}
	return nil
}

// beginGeneration checks readiness, claims the single in-flight slot and
// submits the generation task, moving the model to Generating. The task id
// is recorded under the same lock so CancelGeneration always finds it. The
// returned release func returns the model to Ready and frees the slot; it is
// safe to call more than once.
func (m *Manager) beginGeneration(submit func() (*scheduler.Task, error)) (*scheduler.Task, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, nil, ErrDisposed
	}
	if m.state == StateGenerating {
		return nil, nil, ErrGenerationInFlight
	}
	if m.state != StateReady {
		return nil, nil, fmt.Errorf("%w: state %s", ErrNotReady, m.state)
	}
	select {
	case m.genCh <- struct{}{}:
	default:
		return nil, nil, ErrGenerationInFlight
	}
	task, err := submit()
	if err != nil {
		<-m.genCh
		return nil, nil, err
	}
	m.setStateLocked(StateGenerating)
	m.genID = task.ID()

	released := false
	release := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if released {
			return
		}
		released = true
		m.genID, m.genRelease = "", nil
		if m.state == StateGenerating {
			m.setStateLocked(StateReady)
		}
		<-m.genCh
	}
	m.genRelease = release
	return task, release, nil
}
