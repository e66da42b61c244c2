package registry

import (
	"sync"
	"testing"

	"modelgw/pkg/types"
)

func seed(t *testing.T, defs ...types.InstanceDef) *Registry {
	t.Helper()
	r := New()
	r.Initialize(defs)
	return r
}

func TestInitializeCreatesOnePerDef(t *testing.T) {
	r := seed(t,
		types.InstanceDef{ModelID: "meta/llama-3.1-8b", Endpoint: "http://a", MaxLoad: 2},
		types.InstanceDef{ModelID: "meta/llama-3.1-8b", Endpoint: "http://b", MaxLoad: 4},
	)
	got := r.List()
	if len(got) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(got))
	}
	if got[0].ID == got[1].ID {
		t.Fatalf("expected distinct ids")
	}
	for _, inst := range got {
		if inst.Status != types.StatusHealthy {
			t.Fatalf("expected healthy, got %s", inst.Status)
		}
		if inst.CurrentLoad != 0 {
			t.Fatalf("expected zero load, got %d", inst.CurrentLoad)
		}
	}
}

func TestInitializeIsIdempotentAndResetsLoad(t *testing.T) {
	r := seed(t, types.InstanceDef{ModelID: "m", Endpoint: "http://a", MaxLoad: 2})
	id := r.List()[0].ID
	if err := r.Acquire(id); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	r.Initialize([]types.InstanceDef{{ModelID: "m", Endpoint: "http://a", MaxLoad: 2}})
	got := r.List()
	if len(got) != 1 {
		t.Fatalf("expected no accumulation across initializations, got %d", len(got))
	}
	if got[0].CurrentLoad != 0 {
		t.Fatalf("stale load %d survived re-initialization", got[0].CurrentLoad)
	}
}

func TestListReturnsCopies(t *testing.T) {
	r := seed(t, types.InstanceDef{ModelID: "m", Endpoint: "http://a", MaxLoad: 1})
	out := r.List()
	out[0].CurrentLoad = 99
	if r.List()[0].CurrentLoad != 0 {
		t.Fatalf("registry mutated via returned slice")
	}
}

func TestListByModel(t *testing.T) {
	r := seed(t,
		types.InstanceDef{ModelID: "a", Endpoint: "http://1", MaxLoad: 1},
		types.InstanceDef{ModelID: "b", Endpoint: "http://2", MaxLoad: 1},
		types.InstanceDef{ModelID: "a", Endpoint: "http://3", MaxLoad: 1},
	)
	if got := r.ListByModel("a"); len(got) != 2 {
		t.Fatalf("expected 2, got %d", len(got))
	}
	if got := r.ListByModel("missing"); len(got) != 0 {
		t.Fatalf("expected empty for unknown model, got %d", len(got))
	}
}

func TestStartStopManualControl(t *testing.T) {
	r := seed(t, types.InstanceDef{ModelID: "m", Endpoint: "http://a", MaxLoad: 2})
	id := r.List()[0].ID

	if r.Stop("nope") {
		t.Fatalf("expected false for unknown id")
	}
	if err := r.Acquire(id); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if !r.Stop(id) {
		t.Fatalf("expected stop to succeed")
	}
	inst, _ := r.Get(id)
	if inst.Status != types.StatusOffline || !inst.ManuallyControlled {
		t.Fatalf("expected offline+manual, got %+v", inst)
	}
	if inst.CurrentLoad != 0 {
		t.Fatalf("stop must reset load, got %d", inst.CurrentLoad)
	}

	if !r.Start(id) {
		t.Fatalf("expected start to succeed")
	}
	inst, _ = r.Get(id)
	if inst.Status != types.StatusHealthy || !inst.ManuallyControlled {
		t.Fatalf("expected healthy+manual, got %+v", inst)
	}

	r.ResetManualControl()
	inst, _ = r.Get(id)
	if inst.ManuallyControlled {
		t.Fatalf("expected manual flag cleared")
	}
}

func TestAcquireRejectsWithoutMutating(t *testing.T) {
	r := seed(t, types.InstanceDef{ModelID: "m", Endpoint: "http://a", MaxLoad: 1})
	id := r.List()[0].ID

	if err := r.Acquire(id); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	err := r.Acquire(id)
	if err == nil || !IsAtCapacity(err) {
		t.Fatalf("expected at-capacity error, got %v", err)
	}
	if inst, _ := r.Get(id); inst.CurrentLoad != 1 {
		t.Fatalf("rejection mutated load: %d", inst.CurrentLoad)
	}

	r.Stop(id)
	err = r.Acquire(id)
	if err == nil || !IsUnavailable(err) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	if err.Error() != "Instance is offline" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestReleaseFloorsAtZero(t *testing.T) {
	r := seed(t, types.InstanceDef{ModelID: "m", Endpoint: "http://a", MaxLoad: 4})
	id := r.List()[0].ID

	// Stop zeroes the load while an attempt is still in flight; the deferred
	// release afterwards must not drive it negative.
	if err := r.Acquire(id); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	r.Stop(id)
	r.Release(id)
	r.Release(id)
	if inst, _ := r.Get(id); inst.CurrentLoad != 0 {
		t.Fatalf("expected floor at zero, got %d", inst.CurrentLoad)
	}
}

func TestConcurrentAcquireReleaseKeepsLoadBounded(t *testing.T) {
	r := seed(t, types.InstanceDef{ModelID: "m", Endpoint: "http://a", MaxLoad: 3})
	id := r.List()[0].ID

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.Acquire(id); err != nil {
				return
			}
			defer r.Release(id)
			inst, _ := r.Get(id)
			if inst.CurrentLoad < 0 || inst.CurrentLoad > inst.MaxLoad {
				t.Errorf("load out of bounds: %d", inst.CurrentLoad)
			}
		}()
	}
	wg.Wait()
	if inst, _ := r.Get(id); inst.CurrentLoad != 0 {
		t.Fatalf("expected zero load after all attempts, got %d", inst.CurrentLoad)
	}
}

func TestRecordSuccessRollingAverage(t *testing.T) {
	r := seed(t, types.InstanceDef{ModelID: "m", Endpoint: "http://a", MaxLoad: 1})
	id := r.List()[0].ID

	r.RecordSuccess(id, 100)
	if inst, _ := r.Get(id); inst.ResponseTimeMs != 100 {
		t.Fatalf("first observation should seed the average, got %v", inst.ResponseTimeMs)
	}
	r.RecordSuccess(id, 300)
	inst, _ := r.Get(id)
	if inst.ResponseTimeMs != 200 {
		t.Fatalf("expected (100+300)/2=200, got %v", inst.ResponseTimeMs)
	}
	if inst.TotalRequests != 2 {
		t.Fatalf("expected 2 total requests, got %d", inst.TotalRequests)
	}

	r.RecordFailure(id)
	if inst, _ := r.Get(id); inst.ErrorCount != 1 {
		t.Fatalf("expected 1 error, got %d", inst.ErrorCount)
	}
}
