package manager

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"localmind/internal/scheduler"
	"localmind/internal/telemetry"
)

// Manager owns the bundled model's lifecycle and serialises all engine access
// through the scheduler.
type Manager struct {
	mu     sync.RWMutex
	cfg    ManagerConfig
	state  State
	cur    *ModelInfo
	err    string
	closed bool

	engine    InferenceEngine
	sched     *scheduler.Scheduler
	ownsSched bool
	recorder  *telemetry.Recorder
	publisher EventPublisher
	log       zerolog.Logger

	// genCh is the in-flight flag: a slot of one held for the whole generation.
	genCh      chan struct{}
	genID      string
	genRelease func()
	initMu     sync.Mutex
	// staleLoad is a load task an interrupted Initialize gave up on; guarded
	// by initMu.
	staleLoad *scheduler.Task

	startTime        time.Time
	loadsTotal       atomic.Uint64
	generationsTotal atomic.Uint64
}

// New builds a Manager for the model bundled in assets, extracting into
// modelDir. Everything else takes its default.
func New(engine InferenceEngine, assets fs.FS, modelDir string) *Manager {
	return NewWithConfig(ManagerConfig{Engine: engine, Assets: assets, ModelDir: modelDir})
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Ready reports whether a generation can be accepted right now.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateReady && !m.closed
}

// InFlight reports whether a generation is running.
func (m *Manager) InFlight() bool { return len(m.genCh) > 0 }

// LastError returns the error recorded by the last failed lifecycle step.
func (m *Manager) LastError() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

// ModelInfo returns a copy of the loaded model's details, or nil.
func (m *Manager) ModelInfo() *ModelInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cur == nil {
		return nil
	}
	cp := *m.cur
	return &cp
}

// ModelPath is where the bundled model is extracted to.
func (m *Manager) ModelPath() string { return filepath.Join(m.cfg.ModelDir, m.cfg.AssetName) }

// Scheduler exposes the scheduler for collaborators that submit their own work.
func (m *Manager) Scheduler() *scheduler.Scheduler { return m.sched }

// Recorder exposes the telemetry recorder.
func (m *Manager) Recorder() *telemetry.Recorder { return m.recorder }

// setStateLocked moves to s if the edge is legal and publishes the change.
// Callers hold m.mu.
func (m *Manager) setStateLocked(s State) bool {
	from := m.state
	if from == s {
		return true
	}
	if !canTransition(from, s) {
		m.log.Error().Str("event", "illegal_transition").Str("from", string(from)).Str("to", string(s)).Msg("manager")
		return false
	}
	m.state = s
	m.log.Info().Str("event", EventStateChanged).Str("from", string(from)).Str("to", string(s)).Msg("manager")
	m.publish(EventStateChanged, map[string]any{"from": from, "to": s})
	return true
}

func (m *Manager) setState(s State) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setStateLocked(s)
}

// fail records err and moves to Error.
func (m *Manager) fail(err error) {
	m.mu.Lock()
	m.err = err.Error()
	m.setStateLocked(StateError)
	m.mu.Unlock()
	m.log.Error().Err(err).Str("event", "failed").Msg("manager")
}

func (m *Manager) publish(name string, fields map[string]any) {
	if fields == nil {
		fields = map[string]any{}
	}
	m.publisher.Publish(Event{Name: name, ModelID: m.cfg.ModelID, Time: time.Now(), Fields: fields})
}

// Close cancels any generation, unloads the engine and, when the manager
// created its own scheduler, disposes it. Later calls return ErrDisposed.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.CancelGeneration()
	defer m.log.Info().Str("event", "closed").Msg("manager")
	if !m.ownsSched {
		return m.unloadEngine(ctx)
	}
	if err := m.sched.Dispose(ctx); err != nil {
		// abandoned work may still hold the engine
		return err
	}
	m.engine.Unload()
	return nil
}

func (m *Manager) isClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}
