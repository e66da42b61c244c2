package registry

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"modelgw/pkg/types"
)

// Prober checks whether one instance's backend is reachable. The production
// implementation lives in internal/backend; tests supply canned probers.
type Prober interface {
	Probe(ctx context.Context, inst types.ModelInstance) error
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, inst types.ModelInstance) error

func (f ProberFunc) Probe(ctx context.Context, inst types.ModelInstance) error {
	return f(ctx, inst)
}

// HealthChecker periodically probes every instance that is not under manual
// control and updates its status.
type HealthChecker struct {
	reg      *Registry
	prober   Prober
	interval time.Duration
	log      zerolog.Logger
}

// NewHealthChecker builds a checker over reg. interval <= 0 defaults to 30s.
func NewHealthChecker(reg *Registry, prober Prober, interval time.Duration, log zerolog.Logger) *HealthChecker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &HealthChecker{reg: reg, prober: prober, interval: interval, log: log}
}

// Run blocks until ctx is canceled, probing all instances once per interval.
// An initial pass runs immediately so freshly initialized instances do not
// wait a full interval for their first status.
func (h *HealthChecker) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	h.CheckAll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.CheckAll(ctx)
		}
	}
}

// CheckAll performs one probe pass over the current instance set.
func (h *HealthChecker) CheckAll(ctx context.Context) {
	for _, inst := range h.reg.List() {
		if inst.ManuallyControlled {
			continue
		}
		err := h.prober.Probe(ctx, inst)
		if err != nil {
			h.log.Warn().
				Str("instance_id", inst.ID).
				Str("model", inst.ModelID).
				Err(err).
				Msg("health probe failed")
		}
		h.reg.applyProbe(inst.ID, err == nil)
	}
}

// applyProbe records one probe outcome. Manually controlled instances are
// left alone even if the flag was set after the probe started. A reachable
// instance reads busy while saturated, healthy otherwise.
func (r *Registry) applyProbe(id string, reachable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[id]
	if !ok || inst.ManuallyControlled {
		return
	}
	switch {
	case !reachable:
		inst.Status = types.StatusUnhealthy
	case inst.CurrentLoad >= inst.MaxLoad:
		inst.Status = types.StatusBusy
	default:
		inst.Status = types.StatusHealthy
	}
}
