package types

import "encoding/json"

// EnqueueRequest is the body accepted by POST /requests.
type EnqueueRequest struct {
	// Target model id.
	// example: meta/llama-3.1-8b
	ModelID string `json:"model_id" example:"meta/llama-3.1-8b"`
	// Opaque request body forwarded to the serving backend.
	Payload json.RawMessage `json:"payload"`
	// Caller identity, opaque to the gateway.
	// example: user-42
	UserID string `json:"user_id,omitempty" example:"user-42"`
	// Higher priority is serviced first; equal priorities are FIFO.
	// example: 0
	Priority int `json:"priority,omitempty" example:"0"`
	// Queue-side expiry in milliseconds; 0 uses the server default.
	// example: 30000
	TimeoutMs int64 `json:"timeout_ms,omitempty" example:"30000"`
	// Maximum retries; 0 uses the server default.
	// example: 3
	MaxRetries int `json:"max_retries,omitempty" example:"3"`
}

// EnqueueResponse is returned by POST /requests.
type EnqueueResponse struct {
	// Id to poll for the result.
	// example: 9f1c2d3e-0b4a-4f6c-9d2e-7a8b9c0d1e2f
	RequestID string `json:"request_id" example:"9f1c2d3e-0b4a-4f6c-9d2e-7a8b9c0d1e2f"`
}

// QueueStatus summarizes one model's queue for GET /models/{model}/queue.
type QueueStatus struct {
	// Requests currently waiting for capacity.
	// example: 3
	Length int64 `json:"length" example:"3"`
	// Length times the average response time of healthy instances.
	// example: 2400
	EstimatedWaitMs int64 `json:"estimated_wait_ms" example:"2400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// All registered instances.
	Instances []ModelInstance `json:"instances"`
	// Model ids with an active processing loop.
	ActiveModels []string `json:"active_models"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
