package manager

import (
	"context"
	"errors"
	"sync"
	"time"

	"localmind/internal/scheduler"
)

// Initialize extracts and loads the bundled model. It is a no-op unless the
// manager is Uninitialized or in Error. Extraction runs as a critical
// model-load task on the calling goroutine; loading runs as a high-priority
// model-load task on a worker. Any failure moves the manager to Error and is
// returned.
func (m *Manager) Initialize(ctx context.Context) error {
	m.initMu.Lock()
	defer m.initMu.Unlock()

	// a load abandoned by an earlier call still holds the model-load slot
	if t := m.staleLoad; t != nil {
		select {
		case <-t.Settled():
			m.staleLoad = nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrDisposed
	}
	if m.state != StateUninitialized && m.state != StateError {
		m.mu.Unlock()
		return nil
	}
	m.err = ""
	m.setStateLocked(StateExtractingModel)
	m.mu.Unlock()

	start := time.Now()
	m.publish(EventInitStart, nil)

	path := m.ModelPath()
	task, err := m.sched.Submit(scheduler.CategoryModelLoad, scheduler.PriorityCritical,
		func(ctx context.Context) (any, error) { return m.extractModel(ctx) },
		scheduler.WithTimeout(m.cfg.ModelLoadTimeout),
		scheduler.WithRetry(m.cfg.ExtractRetry),
	)
	if err != nil {
		return m.initFailed(&ExtractionError{Path: path, Err: err})
	}
	skipped, err := scheduler.Await[bool](ctx, task.Future())
	if err != nil {
		var xe *ExtractionError
		if !errors.As(err, &xe) {
			err = &ExtractionError{Path: path, Err: err}
		}
		return m.initFailed(err)
	}
	if skipped {
		m.publish(EventExtractSkipped, map[string]any{"path": path})
	} else {
		m.publish(EventExtractDone, map[string]any{"path": path})
	}

	if !m.setState(StateLoading) {
		return m.initFailed(errors.New("initialization interrupted"))
	}
	opts := LoadOptions{
		ContextSize: m.cfg.ContextSize,
		Threads:     engineThreads(m.cfg.HardwareThreads),
		BatchSize:   m.cfg.BatchSize,
		GPULayers:   m.cfg.GPULayers,
	}
	var (
		loadMu    sync.Mutex
		abandoned bool
		loaded    bool
	)
	task, err = m.sched.Submit(scheduler.CategoryModelLoad, scheduler.PriorityHigh,
		func(context.Context) (any, error) {
			loadMu.Lock()
			gone := abandoned
			loadMu.Unlock()
			if gone {
				return nil, errLoadAbandoned
			}
			if err := m.engine.Load(path, opts); err != nil {
				return nil, err
			}
			loadMu.Lock()
			defer loadMu.Unlock()
			if abandoned {
				m.engine.Unload()
				return nil, errLoadAbandoned
			}
			loaded = true
			return nil, nil
		},
		scheduler.WithTimeout(m.cfg.ModelLoadTimeout),
	)
	if err != nil {
		return m.initFailed(&LoadError{Path: path, Err: err})
	}
	if _, err := task.Wait(ctx); err != nil {
		// Whichever side sees the other first unloads a late model.
		loadMu.Lock()
		abandoned = true
		late := loaded
		loadMu.Unlock()
		m.sched.Cancel(task.ID())
		if late {
			m.engine.Unload()
		}
		m.staleLoad = task
		return m.initFailed(&LoadError{Path: path, Err: err})
	}

	info := &ModelInfo{
		ID:          m.cfg.ModelID,
		Path:        path,
		ContextSize: m.engine.ContextSize(),
		VocabSize:   m.engine.VocabSize(),
		Threads:     opts.Threads,
		Accelerator: m.engine.HasAccelerator(),
		LoadedAt:    time.Now(),
	}
	if info.ContextSize <= 0 {
		info.ContextSize = opts.ContextSize
	}
	if si, ok := m.engine.(SystemInfoer); ok {
		info.SystemInfo = si.SystemInfo()
	}

	m.mu.Lock()
	m.cur = info
	ok := m.setStateLocked(StateReady)
	m.mu.Unlock()
	if !ok {
		return m.initFailed(errors.New("initialization interrupted"))
	}
	m.loadsTotal.Add(1)
	m.log.Info().Str("event", EventInitDone).Str("path", path).Int("threads", info.Threads).
		Int("context_size", info.ContextSize).Bool("extract_skipped", skipped).Dur("duration", time.Since(start)).Msg("manager")
	m.publish(EventInitDone, map[string]any{"duration_ms": time.Since(start).Milliseconds(), "threads": info.Threads})
	return nil
}

func (m *Manager) initFailed(err error) error {
	m.fail(err)
	m.publish(EventInitFailed, map[string]any{"error": err.Error()})
	return err
}
