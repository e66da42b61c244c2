// Package queue provides the shared queue store: per-model request queues
// ordered by priority then arrival, and short-lived result slots with expiry.
// The production implementation is Redis; an in-memory implementation backs
// tests and single-process deployments without Redis.
package queue

import (
	"context"
	"time"

	"modelgw/pkg/types"
)

const (
	queueKeyPrefix  = "queue:"
	resultKeyPrefix = "result:"
)

// Store is the durable handoff between enqueuing callers and the queue
// processor. Dequeue and GetResult report absence as (nil, false, nil), never
// as an error.
type Store interface {
	// Enqueue appends one request to its model's queue. Higher priority
	// dequeues first; equal priorities dequeue in arrival order.
	Enqueue(ctx context.Context, req *types.QueuedRequest) error
	// Dequeue pops the next request for modelID.
	Dequeue(ctx context.Context, modelID string) (*types.QueuedRequest, bool, error)
	// Len returns the number of requests waiting for modelID.
	Len(ctx context.Context, modelID string) (int64, error)

	// PutResult writes the response slot for requestID with an expiry,
	// overwriting any prior value for the same id.
	PutResult(ctx context.Context, requestID string, resp *types.GatewayResponse, ttl time.Duration) error
	// GetResult is a single non-blocking read of the slot for requestID.
	GetResult(ctx context.Context, requestID string) (*types.GatewayResponse, bool, error)
}

// score orders queue members: higher priority first, then earlier enqueue
// time. The priority term dominates any millisecond timestamp this century.
func score(priority int, enqueuedAt time.Time) float64 {
	const priorityStride = float64(1 << 41) // > unix millis until ~2039
	return -float64(priority)*priorityStride + float64(enqueuedAt.UnixMilli())
}

func queueKey(modelID string) string    { return queueKeyPrefix + modelID }
func resultKey(requestID string) string { return resultKeyPrefix + requestID }
