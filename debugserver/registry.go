package debugserver

import (
	"sync"
	"time"

	"github.com/danthegoodman1/pgscan/coordinator"
)

// ScanState is a live scan's registered coordinator plus bookkeeping the
// coordinator itself doesn't carry.
type ScanState struct {
	ID          string
	Schema      string
	Table       string
	StartedAt   time.Time
	Coordinator *coordinator.Coordinator

	mu      sync.Mutex
	workers map[string]time.Time
}

// ScanSummary is the JSON shape returned by GET /scans.
type ScanSummary struct {
	ID            string    `json:"id"`
	Schema        string    `json:"schema"`
	Table         string    `json:"table"`
	StartedAt     time.Time `json:"started_at"`
	ClaimedPages  uint64    `json:"claimed_pages"`
	TotalPages    uint64    `json:"total_pages"`
	ActiveWorkers int       `json:"active_workers"`
}

// WorkerSummary is one row of GET /scans/:id/workers.
type WorkerSummary struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
}

// Registry tracks the scans currently running in this process, for the
// debug server's introspection endpoints. It holds no scan data itself,
// only a reference to each scan's Coordinator.
type Registry struct {
	mu    sync.Mutex
	scans map[string]*ScanState
}

// Default is the process-wide registry pgscan.ParallelScan registers
// into; handlers read from it.
var Default = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{scans: make(map[string]*ScanState)}
}

// RegisterScan records a new scan and returns an unregister func the
// caller must run when the scan finishes.
func (r *Registry) RegisterScan(id, schema, table string, coord *coordinator.Coordinator) func() {
	state := &ScanState{
		ID:          id,
		Schema:      schema,
		Table:       table,
		StartedAt:   time.Now(),
		Coordinator: coord,
		workers:     make(map[string]time.Time),
	}
	r.mu.Lock()
	r.scans[id] = state
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		delete(r.scans, id)
		r.mu.Unlock()
	}
}

// RegisterWorker records a worker starting on scanID and returns an
// unregister func the caller must run when the worker exits.
func (r *Registry) RegisterWorker(scanID, workerID string) func() {
	r.mu.Lock()
	state := r.scans[scanID]
	r.mu.Unlock()
	if state == nil {
		return func() {}
	}
	state.mu.Lock()
	state.workers[workerID] = time.Now()
	state.mu.Unlock()
	return func() {
		state.mu.Lock()
		delete(state.workers, workerID)
		state.mu.Unlock()
	}
}

// ListScans returns a summary of every scan currently registered.
func (r *Registry) ListScans() []ScanSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ScanSummary, 0, len(r.scans))
	for _, s := range r.scans {
		claimed, total := s.Coordinator.Progress()
		s.mu.Lock()
		active := len(s.workers)
		s.mu.Unlock()
		out = append(out, ScanSummary{
			ID:            s.ID,
			Schema:        s.Schema,
			Table:         s.Table,
			StartedAt:     s.StartedAt,
			ClaimedPages:  claimed,
			TotalPages:    total,
			ActiveWorkers: active,
		})
	}
	return out
}

// Workers returns the workers currently active on scanID, and ok=false
// if no such scan is registered.
func (r *Registry) Workers(scanID string) ([]WorkerSummary, bool) {
	r.mu.Lock()
	state := r.scans[scanID]
	r.mu.Unlock()
	if state == nil {
		return nil, false
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	out := make([]WorkerSummary, 0, len(state.workers))
	for id, started := range state.workers {
		out = append(out, WorkerSummary{ID: id, StartedAt: started})
	}
	return out, true
}
