package handlers

import (
	"sync"

	"fes-bids/internal/compile"
)

// DefaultRegistryLimit is how many finished runs the API remembers.
const DefaultRegistryLimit = 50

// RunRecord is a finished run and the error that ended it, if any.
type RunRecord struct {
	Result *compile.Result
	Err    error
}

// Registry keeps recent runs in memory, oldest evicted first.
type Registry struct {
	mu    sync.RWMutex
	runs  map[string]*RunRecord
	order []string
	limit int
}

func NewRegistry(limit int) *Registry {
	if limit <= 0 {
		limit = DefaultRegistryLimit
	}
	return &Registry{runs: map[string]*RunRecord{}, limit: limit}
}

func (r *Registry) Put(rec *RunRecord) {
	id := rec.Result.RunID
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.runs[id]; !ok {
		r.order = append(r.order, id)
	}
	r.runs[id] = rec
	for len(r.order) > r.limit {
		delete(r.runs, r.order[0])
		r.order = r.order[1:]
	}
}

func (r *Registry) Get(id string) (*RunRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.runs[id]
	return rec, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.runs)
}
