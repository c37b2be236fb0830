// Package resilience bounds the cost of rendering previews.
//
// Rendering is the only expensive step of the preview pipeline, so it runs
// through an Executor that composes:
//
//   - Bulkhead: caps concurrent renders, optionally queueing for MaxWait.
//   - CircuitBreaker: stops calling a failing encoder until it recovers.
//   - Timeout: abandons a render that exceeds its budget.
//
// Rate limiting of untokened callers is separate from rendering: a
// KeyedLimiter keeps one token bucket per client address and reports how
// long a rejected caller should wait.
//
// Nothing in this package retries. A failed render is reported to every
// caller waiting on it and the next request starts from scratch.
//
//	exec := resilience.NewExecutor(
//	    resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{
//	        MaxConcurrent: 8,
//	        MaxWait:       250 * time.Millisecond,
//	    })),
//	    resilience.WithTimeout(5*time.Second),
//	)
//
//	err := exec.Execute(ctx, func(ctx context.Context) error {
//	    artifact, err = encoder.Encode(ctx, content, opts)
//	    return err
//	})
package resilience
