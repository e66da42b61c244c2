package queue

import (
	"context"
	"sort"
	"sync"
	"time"

	"modelgw/pkg/types"
)

// MemoryStore is an in-process Store with the same ordering and expiry
// contract as RedisStore. It backs tests and Redis-less deployments.
type MemoryStore struct {
	mu      sync.Mutex
	seq     int64
	queues  map[string][]memItem
	results map[string]memResult
}

type memItem struct {
	priority int
	seq      int64
	req      *types.QueuedRequest
}

type memResult struct {
	resp      *types.GatewayResponse
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		queues:  make(map[string][]memItem),
		results: make(map[string]memResult),
	}
}

func (s *MemoryStore) Enqueue(_ context.Context, req *types.QueuedRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	cp := *req
	q := append(s.queues[req.ModelID], memItem{priority: req.Priority, seq: s.seq, req: &cp})
	// Highest priority first; a monotone sequence keeps equal priorities FIFO.
	sort.SliceStable(q, func(i, j int) bool {
		if q[i].priority != q[j].priority {
			return q[i].priority > q[j].priority
		}
		return q[i].seq < q[j].seq
	})
	s.queues[req.ModelID] = q
	return nil
}

func (s *MemoryStore) Dequeue(_ context.Context, modelID string) (*types.QueuedRequest, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.queues[modelID]
	if len(q) == 0 {
		return nil, false, nil
	}
	head := q[0]
	s.queues[modelID] = q[1:]
	return head.req, true, nil
}

func (s *MemoryStore) Len(_ context.Context, modelID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.queues[modelID])), nil
}

func (s *MemoryStore) PutResult(_ context.Context, requestID string, resp *types.GatewayResponse, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *resp
	s.results[requestID] = memResult{resp: &cp, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryStore) GetResult(_ context.Context, requestID string) (*types.GatewayResponse, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.results[requestID]
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(r.expiresAt) {
		delete(s.results, requestID)
		return nil, false, nil
	}
	cp := *r.resp
	return &cp, true, nil
}
