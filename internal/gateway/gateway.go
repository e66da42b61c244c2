package gateway

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"modelgw/internal/backend"
	"modelgw/internal/queue"
	"modelgw/internal/registry"
	"modelgw/pkg/types"
)

// Gateway routes requests to serving instances, queueing them while capacity
// is exhausted and handing results back through the shared store.
type Gateway struct {
	reg   *registry.Registry
	store queue.Store
	be    backend.Backend
	log   zerolog.Logger
	cfg   Config

	startTime time.Time

	mu    sync.Mutex
	loops map[string]*loop
}

// New constructs a Gateway; zero Config fields take package defaults.
func New(reg *registry.Registry, store queue.Store, be backend.Backend, log zerolog.Logger, cfg Config) *Gateway {
	return &Gateway{
		reg:       reg,
		store:     store,
		be:        be,
		log:       log,
		cfg:       cfg.withDefaults(),
		startTime: time.Now(),
		loops:     make(map[string]*loop),
	}
}

// BestInstance is the router: the single best instance to use next for
// modelID, or false when none qualifies (the signal to queue).
func (g *Gateway) BestInstance(modelID string) (types.ModelInstance, bool) {
	return g.reg.BestInstance(modelID)
}

// ListInstances returns every registered instance.
func (g *Gateway) ListInstances() []types.ModelInstance { return g.reg.List() }

// ListInstancesByModel returns the instances serving exactly modelID.
func (g *Gateway) ListInstancesByModel(modelID string) []types.ModelInstance {
	return g.reg.ListByModel(modelID)
}

// StartInstance forces an instance healthy under manual control.
func (g *Gateway) StartInstance(id string) bool { return g.reg.Start(id) }

// StopInstance forces an instance offline under manual control.
func (g *Gateway) StopInstance(id string) bool { return g.reg.Stop(id) }

// ResetManualControl returns every instance to the health loop.
func (g *Gateway) ResetManualControl() { g.reg.ResetManualControl() }
