package manager

import (
	"time"

	"localmind/pkg/types"
)

// Snapshot returns a read-only view of the manager state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var cur *ModelInfo
	if m.cur != nil {
		cp := *m.cur
		cur = &cp
	}
	return Snapshot{State: m.state, CurrentModel: cur, Err: m.err, InFlight: len(m.genCh) > 0}
}

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	snap := m.Snapshot()
	st := m.sched.Stats()
	resp := types.StatusResponse{
		State:            string(snap.State),
		InFlight:         snap.InFlight,
		LastError:        snap.Err,
		UptimeSeconds:    int64(time.Since(m.startTime).Seconds()),
		ServerTimeUnix:   time.Now().Unix(),
		LoadsTotal:       m.loadsTotal.Load(),
		GenerationsTotal: m.generationsTotal.Load(),
		Scheduler: types.SchedulerStatus{
			Workers:     st.Workers,
			BusyWorkers: st.BusyWorkers,
			Pending:     st.Pending,
			Active:      st.Active,
			Submitted:   st.Submitted,
		},
	}
	for _, cs := range st.Categories {
		resp.Scheduler.Completed += cs.Completed
		resp.Scheduler.Failed += cs.Failed
		resp.Scheduler.Cancelled += cs.Cancelled
		resp.Scheduler.TimedOut += cs.TimedOut
	}
	if cur := snap.CurrentModel; cur != nil {
		resp.Model = &types.ModelDetails{
			ModelID:     cur.ID,
			Path:        cur.Path,
			ContextSize: cur.ContextSize,
			VocabSize:   cur.VocabSize,
			Threads:     cur.Threads,
			Accelerator: cur.Accelerator,
			SystemInfo:  cur.SystemInfo,
		}
	}
	return resp
}
