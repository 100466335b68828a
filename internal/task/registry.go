package task

import (
	"fmt"
	"log/slog"
	"sync"
)

// Registry is the goroutine-safe, in-memory source of truth for task records.
// A single mutex guards the map; every operation is O(1) amortized and
// short-held, which is sufficient at the expected volume of single-digit
// concurrent long-running tasks. Records never survive a process restart.
type Registry struct {
	mu      sync.Mutex
	records map[string]*Record
	logger  *slog.Logger
}

// NewRegistry creates an empty task registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		records: make(map[string]*Record),
		logger:  logger,
	}
}

// Put inserts a new record. It returns ErrDuplicateTask if the ID is already
// registered; the ID generation scheme makes that practically impossible, so
// the check is defensive.
func (g *Registry) Put(id string, rec *Record) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.records[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTask, id)
	}
	g.records[id] = rec

	g.logger.Debug("task registered",
		"task_id", id,
		"status", rec.Status,
		"registry_size", len(g.records))
	return nil
}

// Get returns a copy of the record for the given ID, or false if it is not
// present (never existed, or already reaped).
func (g *Registry) Get(id string) (*Record, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[id]
	if !ok {
		return nil, false
	}
	return rec.clone(), true
}

// Update atomically applies mutate to the stored record. It returns
// ErrTaskNotFound if the ID is absent, e.g. when the record was already
// reaped.
func (g *Registry) Update(id string, mutate func(*Record)) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	mutate(rec)
	return nil
}

// Delete removes the record for the given ID. It is idempotent: deleting an
// absent ID is a silent no-op.
func (g *Registry) Delete(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.records[id]; !ok {
		return
	}
	delete(g.records, id)

	g.logger.Debug("task record removed",
		"task_id", id,
		"registry_size", len(g.records))
}

// List returns copies of all records matching the predicate, keyed by task
// ID. The snapshot is taken under the lock, so no record is ever observed
// mid-mutation. A nil predicate matches everything.
func (g *Registry) List(pred func(*Record) bool) map[string]*Record {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make(map[string]*Record)
	for id, rec := range g.records {
		if pred == nil || pred(rec) {
			out[id] = rec.clone()
		}
	}
	return out
}

// Len returns the number of records currently held.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.records)
}
