package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"modelgw/pkg/types"
)

// RedisStore implements Store on a Redis-compatible server. Queues are sorted
// sets keyed queue:<modelID> whose scores encode priority-then-FIFO ordering;
// result slots are plain keys result:<requestID> written with a TTL.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore wraps an existing client; the caller owns its lifecycle.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Ping verifies connectivity, for startup checks.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Enqueue(ctx context.Context, req *types.QueuedRequest) error {
	b, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request %s: %w", req.ID, err)
	}
	err = s.client.ZAdd(ctx, queueKey(req.ModelID), redis.Z{
		Score:  score(req.Priority, time.Now()),
		Member: string(b),
	}).Err()
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", req.ID, err)
	}
	return nil
}

func (s *RedisStore) Dequeue(ctx context.Context, modelID string) (*types.QueuedRequest, bool, error) {
	members, err := s.client.ZPopMin(ctx, queueKey(modelID), 1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("dequeue %s: %w", modelID, err)
	}
	if len(members) == 0 {
		return nil, false, nil
	}
	raw := members[0].Member
	var req types.QueuedRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return nil, false, fmt.Errorf("dequeue %s: decode: %w", modelID, err)
	}
	return &req, true, nil
}

func (s *RedisStore) Len(ctx context.Context, modelID string) (int64, error) {
	n, err := s.client.ZCard(ctx, queueKey(modelID)).Result()
	if err != nil {
		return 0, fmt.Errorf("queue length %s: %w", modelID, err)
	}
	return n, nil
}

func (s *RedisStore) PutResult(ctx context.Context, requestID string, resp *types.GatewayResponse, ttl time.Duration) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal result %s: %w", requestID, err)
	}
	if err := s.client.Set(ctx, resultKey(requestID), b, ttl).Err(); err != nil {
		return fmt.Errorf("store result %s: %w", requestID, err)
	}
	return nil
}

func (s *RedisStore) GetResult(ctx context.Context, requestID string) (*types.GatewayResponse, bool, error) {
	raw, err := s.client.Get(ctx, resultKey(requestID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get result %s: %w", requestID, err)
	}
	var resp types.GatewayResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, false, fmt.Errorf("get result %s: decode: %w", requestID, err)
	}
	return &resp, true, nil
}
