package gateway

import (
	"context"
	"time"

	"modelgw/pkg/types"
)

// Result is a single non-blocking read of requestID's result slot.
func (g *Gateway) Result(ctx context.Context, requestID string) (*types.GatewayResponse, bool, error) {
	return g.store.GetResult(ctx, requestID)
}

// WaitForResult polls the result slot until a result appears or timeout
// elapses, then synthesizes a caller-side timeout response. This timeout is
// independent of the request's own queue-side expiry; callers should choose
// it comfortably larger so the processor's expiry handling wins the race.
func (g *Gateway) WaitForResult(ctx context.Context, requestID string, timeout time.Duration) (*types.GatewayResponse, error) {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(g.cfg.PollInterval)
	defer ticker.Stop()

	for {
		resp, ok, err := g.store.GetResult(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if ok {
			return resp, nil
		}
		if !time.Now().Before(deadline) {
			return &types.GatewayResponse{
				Success: false,
				Error:   "Request processing timeout",
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
