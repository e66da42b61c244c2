package gateway

import (
	"context"
	"time"

	"modelgw/pkg/types"
)

// execute performs one attempt of req against inst with strict load
// accounting. The acceptance check re-validates status and capacity right
// before incrementing load: the instance may have changed since the router
// picked it, because direct callers can route and execute concurrently with
// the processor. The deferred release floors at zero, so the race can never
// drive the load count negative.
//
// No per-attempt timeout applies beyond ctx: a hung backend call holds the
// load slot until it returns. Bounding the call is the backend's job.
func (g *Gateway) execute(ctx context.Context, inst types.ModelInstance, req *types.QueuedRequest) *types.GatewayResponse {
	if err := g.reg.Acquire(inst.ID); err != nil {
		executionsTotal.WithLabelValues("rejected").Inc()
		return &types.GatewayResponse{
			Success:    false,
			Error:      err.Error(),
			InstanceID: inst.ID,
		}
	}
	defer g.reg.Release(inst.ID)

	start := time.Now()
	data, err := g.be.Execute(ctx, inst, req)
	elapsedMs := float64(time.Since(start)) / float64(time.Millisecond)

	if err != nil {
		g.reg.RecordFailure(inst.ID)
		executionsTotal.WithLabelValues("failed").Inc()
		g.log.Warn().
			Str("request_id", req.ID).
			Str("instance_id", inst.ID).
			Int("retry", req.RetryCount).
			Err(err).
			Msg("execution failed")
		return &types.GatewayResponse{
			Success:    false,
			Error:      "Request processing failed",
			InstanceID: inst.ID,
		}
	}

	g.reg.RecordSuccess(inst.ID, elapsedMs)
	executionsTotal.WithLabelValues("success").Inc()
	g.log.Debug().
		Str("request_id", req.ID).
		Str("instance_id", inst.ID).
		Float64("elapsed_ms", elapsedMs).
		Msg("execution succeeded")
	return &types.GatewayResponse{
		Success:    true,
		Data:       data,
		InstanceID: inst.ID,
	}
}
