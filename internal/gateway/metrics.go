package gateway

import "github.com/prometheus/client_golang/prometheus"

var (
	enqueuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "modelgw",
		Subsystem: "gateway",
		Name:      "requests_enqueued_total",
		Help:      "Total requests admitted into the shared queue",
	})

	executionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "modelgw",
		Subsystem: "gateway",
		Name:      "executions_total",
		Help:      "Execution attempts by outcome",
	}, []string{"outcome"})

	retriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "modelgw",
		Subsystem: "gateway",
		Name:      "retries_total",
		Help:      "Failed attempts re-enqueued with backoff",
	})

	expiredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "modelgw",
		Subsystem: "gateway",
		Name:      "expired_total",
		Help:      "Requests abandoned because their queue-side timeout elapsed",
	})

	requeuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "modelgw",
		Subsystem: "gateway",
		Name:      "requeued_total",
		Help:      "Requests returned to the queue because no instance had capacity",
	})

	queueDepth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "modelgw",
		Subsystem: "gateway",
		Name:      "queue_depth",
		Help:      "Requests waiting per model queue",
	}, []string{"model"})

	queueWaitSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "modelgw",
		Subsystem: "gateway",
		Name:      "queue_wait_seconds",
		Help:      "Time between enqueue and dispatch to an instance",
		Buckets:   prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		enqueuedTotal,
		executionsTotal,
		retriesTotal,
		expiredTotal,
		requeuedTotal,
		queueDepth,
		queueWaitSeconds,
	)
}
