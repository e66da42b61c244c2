package backend

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"modelgw/pkg/types"
)

// Stub is a deterministic Backend for tests: a fixed response, a fixed error,
// or a per-call function. No simulated latency or randomness belongs here.
// It is safe for use from a processor goroutine while the test observes it.
type Stub struct {
	// Response is returned when Fn and Err are unset.
	Response json.RawMessage
	// Err, when set, fails every call.
	Err error
	// Fn, when set, decides per call and wins over Response/Err.
	Fn func(ctx context.Context, inst types.ModelInstance, req *types.QueuedRequest) (json.RawMessage, error)

	calls atomic.Int64
}

// CallCount reports how many times Execute ran.
func (s *Stub) CallCount() int64 { return s.calls.Load() }

func (s *Stub) Execute(ctx context.Context, inst types.ModelInstance, req *types.QueuedRequest) (json.RawMessage, error) {
	s.calls.Add(1)
	if s.Fn != nil {
		return s.Fn(ctx, inst, req)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Response != nil {
		return s.Response, nil
	}
	return json.RawMessage(`{}`), nil
}
