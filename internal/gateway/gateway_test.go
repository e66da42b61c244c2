package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"modelgw/internal/backend"
	"modelgw/internal/queue"
	"modelgw/internal/registry"
	"modelgw/pkg/types"
)

// testConfig shrinks every interval so loop tests finish in milliseconds.
var testConfig = Config{
	TickInterval:   5 * time.Millisecond,
	RequeueDelay:   5 * time.Millisecond,
	RetryBackoff:   time.Millisecond,
	ResultTTL:      time.Minute,
	PollInterval:   5 * time.Millisecond,
	RequestTimeout: time.Second,
	MaxRetries:     3,
}

// newTestGateway wires a gateway over a memory store and the given stub,
// seeding one registry instance per def.
func newTestGateway(t *testing.T, be backend.Backend, defs ...types.InstanceDef) (*Gateway, *registry.Registry, *queue.MemoryStore) {
	t.Helper()
	reg := registry.New()
	reg.Initialize(defs)
	store := queue.NewMemoryStore()
	g := New(reg, store, be, zerolog.Nop(), testConfig)
	t.Cleanup(g.StopAll)
	return g, reg, store
}

func TestNewAppliesDefaults(t *testing.T) {
	g := New(registry.New(), queue.NewMemoryStore(), &backend.Stub{}, zerolog.Nop(), Config{})
	if g.cfg.TickInterval != defaultTickInterval {
		t.Fatalf("expected default tick %v, got %v", defaultTickInterval, g.cfg.TickInterval)
	}
	if g.cfg.ResultTTL != defaultResultTTL {
		t.Fatalf("expected default TTL %v, got %v", defaultResultTTL, g.cfg.ResultTTL)
	}
	if g.cfg.MaxRetries != defaultMaxRetries {
		t.Fatalf("expected default retries %d, got %d", defaultMaxRetries, g.cfg.MaxRetries)
	}
}

func TestEnqueueValidatesAndAppliesDefaults(t *testing.T) {
	g, _, store := newTestGateway(t, &backend.Stub{})
	ctx := context.Background()

	if _, err := g.Enqueue(ctx, types.EnqueueRequest{}); !IsInvalidRequest(err) {
		t.Fatalf("expected invalid request error, got %v", err)
	}

	id, err := g.Enqueue(ctx, types.EnqueueRequest{ModelID: "m"})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if id == "" {
		t.Fatalf("expected a request id")
	}
	req, ok, _ := store.Dequeue(ctx, "m")
	if !ok {
		t.Fatalf("expected queued request")
	}
	if req.ID != id {
		t.Fatalf("id mismatch: %s vs %s", req.ID, id)
	}
	if req.TimeoutMs != testConfig.RequestTimeout.Milliseconds() {
		t.Fatalf("expected default timeout, got %d", req.TimeoutMs)
	}
	if req.MaxRetries != testConfig.MaxRetries {
		t.Fatalf("expected default retries, got %d", req.MaxRetries)
	}
	if req.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}
}

func TestStartModelIsIdempotentAndStopCleansUp(t *testing.T) {
	g, _, _ := newTestGateway(t, &backend.Stub{})
	g.StartModel("m")
	g.StartModel("m")
	if got := g.ActiveModels(); len(got) != 1 || got[0] != "m" {
		t.Fatalf("expected exactly one active loop, got %v", got)
	}
	g.StopModel("m")
	if got := g.ActiveModels(); len(got) != 0 {
		t.Fatalf("expected no active loops, got %v", got)
	}
	// stopping a stopped model is harmless
	g.StopModel("m")
	// and a restart begins clean
	g.StartModel("m")
	if got := g.ActiveModels(); len(got) != 1 {
		t.Fatalf("expected restart to work, got %v", got)
	}
}
