// Package gateway coordinates admission, routing, execution, and result
// handoff for model serving requests. It is structured into small files by
// concern:
//
//   - gateway.go: core Gateway type, constructor, registry passthroughs.
//   - config.go: Config and package defaults; New applies defaults.
//   - enqueue.go: request admission into the shared queue store.
//   - processor.go: per-model processing loops (dequeue, expiry, dispatch,
//     requeue and retry with linear backoff).
//   - execute.go: one execution attempt with strict load accounting.
//   - results.go: result reads and the bounded polling waiter.
//   - status.go: queue status estimates and the /status projection.
//   - errors.go: typed errors and helpers (IsInvalidRequest).
//   - metrics.go: Prometheus counters and gauges for the processor.
//
// A Gateway is an explicitly constructed, explicitly owned service object
// with a single-instance lifetime per process; inject it rather than holding
// it in package state. Execution is at-least-once: a timeout-triggered retry
// can duplicate work, and callers are expected to tolerate that.
package gateway
