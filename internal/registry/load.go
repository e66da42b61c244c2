package registry

import "modelgw/pkg/types"

// Acquire re-validates status and capacity immediately before incrementing
// load. The instance may have changed since selection (a second caller can
// route and execute concurrently with the queue processor), so this is the
// acceptance check of record. On rejection the load is left untouched.
func (r *Registry) Acquire(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[id]
	if !ok {
		return unknownInstanceError{id: id}
	}
	if inst.Status != types.StatusHealthy {
		return unavailableError{status: inst.Status}
	}
	if inst.CurrentLoad >= inst.MaxLoad {
		return atCapacityError{}
	}
	inst.CurrentLoad++
	return nil
}

// Release decrements load by one, floored at zero. The floor is the safety
// net for the selection/acceptance race: a double decrement (e.g. after Stop
// zeroed the load while an attempt was in flight) must never drive the count
// negative.
func (r *Registry) Release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[id]
	if !ok {
		return
	}
	if inst.CurrentLoad > 0 {
		inst.CurrentLoad--
	}
	// A saturated instance is marked busy by the health pass; clear it as
	// soon as a slot frees rather than waiting for the next pass.
	if inst.Status == types.StatusBusy && inst.CurrentLoad < inst.MaxLoad {
		inst.Status = types.StatusHealthy
	}
}

// RecordSuccess folds one observed latency into the rolling average and bumps
// the completed-request counter.
func (r *Registry) RecordSuccess(id string, elapsedMs float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[id]
	if !ok {
		return
	}
	if inst.ResponseTimeMs == 0 {
		inst.ResponseTimeMs = elapsedMs
	} else {
		inst.ResponseTimeMs = (inst.ResponseTimeMs + elapsedMs) / 2
	}
	inst.TotalRequests++
}

// RecordFailure bumps the error counter.
func (r *Registry) RecordFailure(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inst, ok := r.instances[id]; ok {
		inst.ErrorCount++
	}
}
