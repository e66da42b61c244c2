package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"

	"modelgw/pkg/types"
)

// Enqueue admits one request into its model's queue and returns the id the
// caller polls for the result. Defaults for timeout and retries apply here so
// the processor never sees an unbounded request.
func (g *Gateway) Enqueue(ctx context.Context, req types.EnqueueRequest) (string, error) {
	if req.ModelID == "" {
		return "", invalidRequestError{msg: "model_id is required"}
	}
	timeoutMs := req.TimeoutMs
	if timeoutMs <= 0 {
		timeoutMs = g.cfg.RequestTimeout.Milliseconds()
	}
	maxRetries := req.MaxRetries
	if maxRetries <= 0 {
		maxRetries = g.cfg.MaxRetries
	}

	queued := &types.QueuedRequest{
		ID:         uuid.NewString(),
		ModelID:    req.ModelID,
		Payload:    req.Payload,
		UserID:     req.UserID,
		Priority:   req.Priority,
		CreatedAt:  time.Now(),
		TimeoutMs:  timeoutMs,
		MaxRetries: maxRetries,
	}
	if err := g.store.Enqueue(ctx, queued); err != nil {
		return "", err
	}
	enqueuedTotal.Inc()
	g.log.Debug().
		Str("request_id", queued.ID).
		Str("model", queued.ModelID).
		Int("priority", queued.Priority).
		Msg("request enqueued")
	return queued.ID, nil
}
