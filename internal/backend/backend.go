// Package backend defines the execution capability: the single point where a
// request leaves the gateway for a real model-serving process. The gateway
// never interprets instance endpoints or payloads; it hands both to a Backend.
package backend

import (
	"context"
	"encoding/json"

	"modelgw/pkg/types"
)

// Backend performs one attempt of a request against one instance. The wire
// protocol is the integrator's business; the gateway only needs an opaque
// result or an error.
type Backend interface {
	Execute(ctx context.Context, inst types.ModelInstance, req *types.QueuedRequest) (json.RawMessage, error)
}
