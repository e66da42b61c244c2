package gateway

import (
	"context"
	"time"

	"modelgw/pkg/types"
)

// loop is the bookkeeping for one model's processing goroutine.
type loop struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartModel begins processing modelID's queue on a fixed tick. Starting an
// already-started model is a no-op. Ticks within one model are strictly
// sequential; concurrency across models comes from one goroutine per model.
func (g *Gateway) StartModel(modelID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, running := g.loops[modelID]; running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	l := &loop{cancel: cancel, done: make(chan struct{})}
	g.loops[modelID] = l
	g.log.Info().Str("model", modelID).Msg("queue processor started")
	go g.run(ctx, modelID, l.done)
}

// StopModel cancels modelID's loop and removes its bookkeeping so a restart
// begins clean. Requests already re-scheduled with a delay are abandoned;
// they are still in no worse a state than any queued request at a restart.
func (g *Gateway) StopModel(modelID string) {
	g.mu.Lock()
	l, ok := g.loops[modelID]
	if ok {
		delete(g.loops, modelID)
	}
	g.mu.Unlock()
	if !ok {
		return
	}
	l.cancel()
	<-l.done
	g.log.Info().Str("model", modelID).Msg("queue processor stopped")
}

// StopAll stops every active loop, for shutdown.
func (g *Gateway) StopAll() {
	g.mu.Lock()
	loops := make(map[string]*loop, len(g.loops))
	for m, l := range g.loops {
		loops[m] = l
	}
	g.loops = make(map[string]*loop)
	g.mu.Unlock()
	for _, l := range loops {
		l.cancel()
		<-l.done
	}
}

// ActiveModels lists the model ids with a running loop.
func (g *Gateway) ActiveModels() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.loops))
	for m := range g.loops {
		out = append(out, m)
	}
	return out
}

func (g *Gateway) run(ctx context.Context, modelID string, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(g.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.tick(ctx, modelID)
		}
	}
}

// tick advances at most one queued request toward execution. Every failure
// inside here is converted into a stored result or a log line; nothing may
// escape, since a panic or returned error would stop all future processing
// for the model.
func (g *Gateway) tick(ctx context.Context, modelID string) {
	if n, err := g.store.Len(ctx, modelID); err == nil {
		queueDepth.WithLabelValues(modelID).Set(float64(n))
	}

	req, ok, err := g.store.Dequeue(ctx, modelID)
	if err != nil {
		g.log.Warn().Str("model", modelID).Err(err).Msg("dequeue failed")
		return
	}
	if !ok {
		return
	}

	// Expired requests are abandoned before dispatch, never retried, even
	// when capacity is available.
	if req.Expired(time.Now()) {
		expiredTotal.Inc()
		g.putResult(ctx, req.ID, &types.GatewayResponse{
			Success: false,
			Error:   "Request timeout",
		})
		g.log.Debug().
			Str("request_id", req.ID).
			Str("model", modelID).
			Msg("request expired in queue")
		return
	}

	inst, ok := g.reg.BestInstance(req.ModelID)
	if !ok {
		// Normal backpressure: the same request goes back unmodified, with
		// no retry-count increment, after a short fixed delay.
		requeuedTotal.Inc()
		g.requeueAfter(ctx, req, g.cfg.RequeueDelay)
		return
	}

	queueWaitSeconds.Observe(time.Since(req.CreatedAt).Seconds())
	resp := g.execute(ctx, inst, req)
	g.putResult(ctx, req.ID, resp)

	if !resp.Success && req.RetryCount < req.MaxRetries {
		retry := *req
		retry.RetryCount++
		retriesTotal.Inc()
		// Linear backoff keyed to the new retry count keeps retries from
		// hammering an instance that just failed.
		g.requeueAfter(ctx, &retry, time.Duration(retry.RetryCount)*g.cfg.RetryBackoff)
	}
}

// requeueAfter puts req back on its queue once delay elapses. The wait is
// bound to the loop context: stopping the model abandons pending requeues.
func (g *Gateway) requeueAfter(ctx context.Context, req *types.QueuedRequest, delay time.Duration) {
	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		if err := g.store.Enqueue(ctx, req); err != nil {
			g.log.Warn().
				Str("request_id", req.ID).
				Str("model", req.ModelID).
				Err(err).
				Msg("requeue failed")
		}
	}()
}

func (g *Gateway) putResult(ctx context.Context, requestID string, resp *types.GatewayResponse) {
	if err := g.store.PutResult(ctx, requestID, resp, g.cfg.ResultTTL); err != nil {
		g.log.Error().Str("request_id", requestID).Err(err).Msg("store result failed")
	}
}
