package gateway

import "time"

// Defaults applied when corresponding Config fields are unset.
const (
	defaultTickInterval   = 100 * time.Millisecond
	defaultRequeueDelay   = time.Second
	defaultRetryBackoff   = time.Second
	defaultResultTTL      = 5 * time.Minute
	defaultPollInterval   = 500 * time.Millisecond
	defaultRequestTimeout = 30 * time.Second
	defaultMaxRetries     = 3
	defaultWaitEstimateMs = 2000
)

// Config encapsulates all tunables for Gateway construction.
type Config struct {
	// TickInterval paces each model's processing loop.
	TickInterval time.Duration
	// RequeueDelay applies when no instance has capacity. Lack of capacity is
	// backpressure, not a retryable failure, so the request goes back as-is.
	RequeueDelay time.Duration
	// RetryBackoff is the linear backoff unit; a retry waits
	// RetryBackoff * retryCount before re-entering the queue.
	RetryBackoff time.Duration
	// ResultTTL bounds how long a stored result stays retrievable.
	ResultTTL time.Duration
	// PollInterval paces the result waiter.
	PollInterval time.Duration
	// RequestTimeout is the queue-side expiry applied when a request does not
	// carry its own.
	RequestTimeout time.Duration
	// MaxRetries applies when a request does not carry its own.
	MaxRetries int
}

func (c Config) withDefaults() Config {
	if c.TickInterval <= 0 {
		c.TickInterval = defaultTickInterval
	}
	if c.RequeueDelay <= 0 {
		c.RequeueDelay = defaultRequeueDelay
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = defaultRetryBackoff
	}
	if c.ResultTTL <= 0 {
		c.ResultTTL = defaultResultTTL
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = defaultMaxRetries
	}
	return c
}
