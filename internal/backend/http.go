package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"modelgw/pkg/types"
)

// HTTPBackend executes requests by POSTing the payload to the instance
// endpoint. Each instance gets its own circuit breaker so a flapping backend
// fails fast without dragging its siblings down. The breaker only guards the
// outbound call; retry policy stays with the queue processor.
type HTTPBackend struct {
	client *http.Client
	log    zerolog.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewHTTPBackend builds a backend over client. A nil client uses
// http.DefaultClient; callers that want per-attempt timeouts set them on the
// client (the gateway deliberately enforces none).
func NewHTTPBackend(client *http.Client, log zerolog.Logger) *HTTPBackend {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPBackend{
		client:   client,
		log:      log,
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

func (b *HTTPBackend) breaker(instanceID string) *gobreaker.CircuitBreaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	cb, ok := b.breakers[instanceID]
	if !ok {
		cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "backend-" + instanceID,
			MaxRequests: 3,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				ratio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 5 && ratio >= 0.6
			},
		})
		b.breakers[instanceID] = cb
	}
	return cb
}

func (b *HTTPBackend) Execute(ctx context.Context, inst types.ModelInstance, req *types.QueuedRequest) (json.RawMessage, error) {
	out, err := b.breaker(inst.ID).Execute(func() (any, error) {
		return b.post(ctx, inst, req)
	})
	if err != nil {
		b.log.Debug().
			Str("instance_id", inst.ID).
			Str("request_id", req.ID).
			Err(err).
			Msg("backend call failed")
		return nil, err
	}
	return out.(json.RawMessage), nil
}

func (b *HTTPBackend) post(ctx context.Context, inst types.ModelInstance, req *types.QueuedRequest) (json.RawMessage, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, inst.Endpoint, bytes.NewReader(req.Payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.UserID != "" {
		httpReq.Header.Set("X-User-Id", req.UserID)
	}

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", inst.Endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("backend status %d", resp.StatusCode)
	}
	return json.RawMessage(body), nil
}

// Probe implements registry.Prober with a GET against <endpoint>/health.
func (b *HTTPBackend) Probe(ctx context.Context, inst types.ModelInstance) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, inst.Endpoint+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("health status %d", resp.StatusCode)
	}
	return nil
}
