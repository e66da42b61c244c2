package types

import (
	"encoding/json"
	"time"
)

// InstanceStatus is the lifecycle state of a serving instance.
type InstanceStatus string

const (
	// StatusHealthy means the instance passed its last health probe and can
	// accept work while it has spare capacity.
	StatusHealthy InstanceStatus = "healthy"
	// StatusUnhealthy means the last health probe failed.
	StatusUnhealthy InstanceStatus = "unhealthy"
	// StatusBusy means the instance is healthy but saturated (load == max).
	StatusBusy InstanceStatus = "busy"
	// StatusOffline means the instance was stopped by an operator.
	StatusOffline InstanceStatus = "offline"
)

// InstanceDef describes one instance to create at registry initialization.
type InstanceDef struct {
	// ID of the model this instance serves.
	// example: meta/llama-3.1-8b
	ModelID string `json:"model_id" yaml:"model_id" toml:"model_id" example:"meta/llama-3.1-8b"`
	// Opaque address used only by the execution backend.
	// example: http://10.0.0.12:8000
	Endpoint string `json:"endpoint" yaml:"endpoint" toml:"endpoint" example:"http://10.0.0.12:8000"`
	// Maximum concurrent requests this instance accepts.
	// example: 4
	MaxLoad int `json:"max_load" yaml:"max_load" toml:"max_load" example:"4"`
}

// ModelInstance is one addressable unit of serving capacity for one model.
type ModelInstance struct {
	// Unique id assigned at registry initialization, immutable.
	// example: 1b4e28ba-2fa1-11d2-883f-0016d3cca427
	ID string `json:"id" example:"1b4e28ba-2fa1-11d2-883f-0016d3cca427"`
	// ID of the model this instance serves; many instances may share one.
	// example: meta/llama-3.1-8b
	ModelID string `json:"model_id" example:"meta/llama-3.1-8b"`
	// Opaque backend address; the gateway never interprets it.
	// example: http://10.0.0.12:8000
	Endpoint string `json:"endpoint" example:"http://10.0.0.12:8000"`
	// Current lifecycle status.
	// example: healthy
	Status InstanceStatus `json:"status" example:"healthy"`
	// Requests currently accounted as in flight on this instance.
	// example: 1
	CurrentLoad int `json:"current_load" example:"1"`
	// Maximum concurrent requests.
	// example: 4
	MaxLoad int `json:"max_load" example:"4"`
	// Rolling average latency in milliseconds, updated as (old+new)/2.
	// example: 812.5
	ResponseTimeMs float64 `json:"response_time_ms" example:"812.5"`
	// Completed successful requests, monotonically increasing.
	// example: 1042
	TotalRequests int64 `json:"total_requests" example:"1042"`
	// Failed attempts, monotonically increasing.
	// example: 7
	ErrorCount int64 `json:"error_count" example:"7"`
	// True while an operator start/stop override is active; the health loop
	// skips manually controlled instances.
	ManuallyControlled bool `json:"manually_controlled"`
}

// HasCapacity reports whether the instance can accept one more request.
func (m *ModelInstance) HasCapacity() bool {
	return m.Status == StatusHealthy && m.CurrentLoad < m.MaxLoad
}

// QueuedRequest is one admission request waiting for capacity.
type QueuedRequest struct {
	// Unique id assigned at enqueue time.
	// example: 9f1c2d3e-0b4a-4f6c-9d2e-7a8b9c0d1e2f
	ID string `json:"id" example:"9f1c2d3e-0b4a-4f6c-9d2e-7a8b9c0d1e2f"`
	// Target model id.
	// example: meta/llama-3.1-8b
	ModelID string `json:"model_id" example:"meta/llama-3.1-8b"`
	// Opaque request body forwarded to the backend untouched.
	Payload json.RawMessage `json:"payload"`
	// Caller identity, opaque to the gateway.
	// example: user-42
	UserID string `json:"user_id,omitempty" example:"user-42"`
	// Higher priority is serviced first; equal priorities are FIFO.
	// example: 0
	Priority int `json:"priority,omitempty" example:"0"`
	// Enqueue time; request age is measured from here.
	CreatedAt time.Time `json:"created_at"`
	// Milliseconds after which the queued request expires unexecuted.
	// example: 30000
	TimeoutMs int64 `json:"timeout_ms" example:"30000"`
	// Retries already attempted.
	// example: 0
	RetryCount int `json:"retry_count" example:"0"`
	// Maximum retries before the last failure stands.
	// example: 3
	MaxRetries int `json:"max_retries" example:"3"`
}

// Expired reports whether the request outlived its queue-side timeout at now.
func (q *QueuedRequest) Expired(now time.Time) bool {
	return now.Sub(q.CreatedAt) > time.Duration(q.TimeoutMs)*time.Millisecond
}

// GatewayResponse is the outcome of one execution attempt or a terminal
// failure. Each request id holds at most one response at a time; retries
// overwrite, they never append.
type GatewayResponse struct {
	// Whether the attempt succeeded.
	// example: true
	Success bool `json:"success" example:"true"`
	// Opaque backend result when Success.
	Data json.RawMessage `json:"data,omitempty"`
	// Human-readable failure reason when not Success.
	// example: Request processing failed
	Error string `json:"error,omitempty" example:"Request processing failed"`
	// Instance that produced this outcome, if any.
	// example: 1b4e28ba-2fa1-11d2-883f-0016d3cca427
	InstanceID string `json:"instance_id,omitempty" example:"1b4e28ba-2fa1-11d2-883f-0016d3cca427"`
}
