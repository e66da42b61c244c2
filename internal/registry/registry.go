// Package registry owns the authoritative in-memory set of model-serving
// instances and answers capacity and eligibility queries. It is structured
// into small files by concern:
//
//   - registry.go: core Registry type, initialization, reads, manual control.
//   - load.go: per-attempt load accounting (Acquire/Release/Record*).
//   - select.go: best-instance selection with model and vendor fallbacks.
//   - health.go: periodic health-check loop and the Prober interface.
//   - errors.go: typed errors and helpers (IsUnavailable, IsAtCapacity).
//
// The registry has no persistence: a process restart loses manual overrides
// and re-seeds from the configured definition list.
package registry

import (
	"sync"

	"github.com/google/uuid"

	"modelgw/pkg/types"
)

// Registry is the authoritative table of serving instances. All mutation of
// instance state (status, load, latency, counters) goes through its lock.
type Registry struct {
	mu        sync.RWMutex
	instances map[string]*types.ModelInstance
	order     []string // creation order, for stable listings
}

// New returns an empty registry. Call Initialize to seed instances.
func New() *Registry {
	return &Registry{instances: make(map[string]*types.ModelInstance)}
}

// Initialize clears any existing instances and creates exactly one instance
// per definition with a fresh id and zero load. Repeated calls do not
// accumulate: the whole set is rebuilt, which also resets all load counters.
func (r *Registry) Initialize(defs []types.InstanceDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances = make(map[string]*types.ModelInstance, len(defs))
	r.order = r.order[:0]
	for _, def := range defs {
		maxLoad := def.MaxLoad
		if maxLoad <= 0 {
			maxLoad = 1
		}
		inst := &types.ModelInstance{
			ID:       uuid.NewString(),
			ModelID:  def.ModelID,
			Endpoint: def.Endpoint,
			Status:   types.StatusHealthy,
			MaxLoad:  maxLoad,
		}
		r.instances[inst.ID] = inst
		r.order = append(r.order, inst.ID)
	}
}

// List returns a copy of every instance in creation order.
func (r *Registry) List() []types.ModelInstance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.ModelInstance, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.instances[id])
	}
	return out
}

// ListByModel returns copies of the instances serving exactly modelID.
func (r *Registry) ListByModel(modelID string) []types.ModelInstance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.ModelInstance, 0, 4)
	for _, id := range r.order {
		if inst := r.instances[id]; inst.ModelID == modelID {
			out = append(out, *inst)
		}
	}
	return out
}

// Get returns a copy of one instance by id.
func (r *Registry) Get(id string) (types.ModelInstance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[id]
	if !ok {
		return types.ModelInstance{}, false
	}
	return *inst, true
}

// Start forces an instance healthy and places it under manual control so the
// health loop leaves it alone. Returns false for an unknown id.
func (r *Registry) Start(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[id]
	if !ok {
		return false
	}
	inst.Status = types.StatusHealthy
	inst.ManuallyControlled = true
	return true
}

// Stop forces an instance offline under manual control and zeroes its load
// accounting. In-flight callers still complete their attempt; the instance is
// simply no longer selectable for new work. Returns false for an unknown id.
func (r *Registry) Stop(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[id]
	if !ok {
		return false
	}
	inst.Status = types.StatusOffline
	inst.ManuallyControlled = true
	inst.CurrentLoad = 0
	return true
}

// ResetManualControl clears the manual override on every instance, returning
// control to the health-check loop.
func (r *Registry) ResetManualControl() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inst := range r.instances {
		inst.ManuallyControlled = false
	}
}
