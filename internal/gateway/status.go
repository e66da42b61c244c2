package gateway

import (
	"context"
	"sort"
	"time"

	"modelgw/pkg/types"
)

// QueueStatus estimates how long a newly queued request for modelID would
// wait: queue length times the average observed latency of the model's
// healthy instances, with a fixed default when none are healthy.
func (g *Gateway) QueueStatus(ctx context.Context, modelID string) (types.QueueStatus, error) {
	length, err := g.store.Len(ctx, modelID)
	if err != nil {
		return types.QueueStatus{}, err
	}
	avg, ok := g.reg.AvgResponseTimeMs(modelID)
	if !ok || avg <= 0 {
		avg = defaultWaitEstimateMs
	}
	return types.QueueStatus{
		Length:          length,
		EstimatedWaitMs: int64(float64(length) * avg),
	}, nil
}

// Status builds the detailed projection for GET /status.
func (g *Gateway) Status() types.StatusResponse {
	active := g.ActiveModels()
	sort.Strings(active)
	now := time.Now()
	return types.StatusResponse{
		Instances:      g.reg.List(),
		ActiveModels:   active,
		UptimeSeconds:  int64(now.Sub(g.startTime).Seconds()),
		ServerTimeUnix: now.Unix(),
	}
}
