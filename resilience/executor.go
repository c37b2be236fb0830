package resilience

import (
	"context"
	"time"
)

// Executor runs encoder calls through rate limiter, bulkhead, circuit
// breaker and timeout, in that order. It never retries: a failed render
// is reported to the caller once.
//
// The timeout sits innermost so time queued for a bulkhead slot is not
// charged to the render. A render abandoned at its deadline keeps its
// bulkhead slot until it actually returns, so MaxConcurrent bounds the
// encoder work in progress, not just the callers waiting on it.
type Executor struct {
	limiter  *RateLimiter
	bulkhead *Bulkhead
	breaker  *CircuitBreaker
	timeout  *Timeout
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithRateLimiter caps the global render rate.
func WithRateLimiter(rl *RateLimiter) ExecutorOption {
	return func(e *Executor) { e.limiter = rl }
}

// WithBulkhead bounds concurrent renders.
func WithBulkhead(b *Bulkhead) ExecutorOption {
	return func(e *Executor) { e.bulkhead = b }
}

// WithCircuitBreaker fails fast while the encoder keeps failing.
func WithCircuitBreaker(cb *CircuitBreaker) ExecutorOption {
	return func(e *Executor) { e.breaker = cb }
}

// WithTimeout bounds each render.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.timeout = NewTimeout(TimeoutConfig{Timeout: d}) }
}

func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs op once through every configured guard. A nil Executor
// calls op directly.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	if e == nil {
		return op(ctx)
	}

	if e.limiter != nil {
		if err := e.limiter.admit(ctx); err != nil {
			return err
		}
	}

	release := func() {}
	if e.bulkhead != nil {
		if err := e.bulkhead.Acquire(ctx); err != nil {
			return err
		}
		release = e.bulkhead.Release
	}

	// handedOff is set when the timeout goroutine owns the release.
	handedOff := false
	guarded := func(ctx context.Context) error {
		if e.timeout == nil {
			return op(ctx)
		}
		handedOff = true
		return e.timeout.run(ctx, op, release)
	}

	var err error
	if e.breaker != nil {
		err = e.breaker.Execute(ctx, guarded)
	} else {
		err = guarded(ctx)
	}
	if !handedOff {
		release()
	}
	return err
}

// ExecuteTimed runs op under the configured timeout only. Rate limiter,
// bulkhead and circuit breaker are skipped, so health checks neither wait
// behind renders nor move the circuit.
func (e *Executor) ExecuteTimed(ctx context.Context, op func(context.Context) error) error {
	if e == nil || e.timeout == nil {
		return op(ctx)
	}
	return e.timeout.Execute(ctx, op)
}

// ExecutorMetrics is the executor section of the admin stats document.
type ExecutorMetrics struct {
	Bulkhead   *BulkheadMetrics       `json:"bulkhead,omitempty"`
	Circuit    *CircuitBreakerMetrics `json:"circuit,omitempty"`
	Timeout    time.Duration          `json:"timeout_ns,omitempty"`
	RateTokens *float64               `json:"rate_tokens,omitempty"`
}

// Metrics snapshots the configured guards.
func (e *Executor) Metrics() ExecutorMetrics {
	var m ExecutorMetrics
	if e == nil {
		return m
	}
	if e.bulkhead != nil {
		bm := e.bulkhead.Metrics()
		m.Bulkhead = &bm
	}
	if e.breaker != nil {
		cm := e.breaker.Metrics()
		m.Circuit = &cm
	}
	if e.timeout != nil {
		m.Timeout = e.timeout.Duration()
	}
	if e.limiter != nil {
		tokens := e.limiter.Tokens()
		m.RateTokens = &tokens
	}
	return m
}
