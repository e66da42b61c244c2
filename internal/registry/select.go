package registry

import (
	"sort"
	"strings"

	"modelgw/pkg/types"
)

// BestInstance returns the single best instance to use next for modelID, or
// false when nothing qualifies. Candidates are tried in three tiers, stopping
// at the first tier with any eligible instance:
//
//  1. instances serving exactly modelID,
//  2. instances sharing the vendor prefix (up to the first "/"),
//  3. any instance at all, regardless of model.
//
// The vendor and any-instance tiers are deliberate degraded routing: a
// request is never deadlocked purely because its exact model has no capacity.
// Callers that cannot tolerate cross-model substitution must filter by exact
// model id themselves (ListByModel) before selecting.
//
// Within a tier only healthy instances with spare capacity are eligible; ties
// break by lowest load, then lowest observed response time. A false return is
// the normal "queue the request" signal, not an error.
func (r *Registry) BestInstance(modelID string) (types.ModelInstance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exact := func(inst *types.ModelInstance) bool { return inst.ModelID == modelID }
	vendor := func(inst *types.ModelInstance) bool {
		return vendorPrefix(inst.ModelID) == vendorPrefix(modelID)
	}
	any := func(*types.ModelInstance) bool { return true }

	for _, match := range []func(*types.ModelInstance) bool{exact, vendor, any} {
		if inst, ok := r.pickLocked(match); ok {
			return inst, true
		}
	}
	return types.ModelInstance{}, false
}

// pickLocked selects the least-loaded, then fastest, eligible instance among
// those matching. Caller holds at least the read lock.
func (r *Registry) pickLocked(match func(*types.ModelInstance) bool) (types.ModelInstance, bool) {
	var candidates []*types.ModelInstance
	for _, id := range r.order {
		inst := r.instances[id]
		if match(inst) && inst.HasCapacity() {
			candidates = append(candidates, inst)
		}
	}
	if len(candidates) == 0 {
		return types.ModelInstance{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].CurrentLoad != candidates[j].CurrentLoad {
			return candidates[i].CurrentLoad < candidates[j].CurrentLoad
		}
		return candidates[i].ResponseTimeMs < candidates[j].ResponseTimeMs
	})
	return *candidates[0], true
}

// vendorPrefix returns the namespace before the first "/" separator, or the
// whole id when there is none.
func vendorPrefix(modelID string) string {
	if i := strings.IndexByte(modelID, '/'); i >= 0 {
		return modelID[:i]
	}
	return modelID
}

// AvgResponseTimeMs returns the mean rolling latency across healthy instances
// of a model, and false when the model has no healthy instances.
func (r *Registry) AvgResponseTimeMs(modelID string) (float64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sum float64
	var n int
	for _, id := range r.order {
		inst := r.instances[id]
		if inst.ModelID == modelID && inst.Status == types.StatusHealthy {
			sum += inst.ResponseTimeMs
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
