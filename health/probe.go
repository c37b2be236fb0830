package health

import (
	"context"
	"fmt"
	"time"
)

// ProbeChecker runs a function that exercises a dependency, such as a
// tiny render through the encoder.
type ProbeChecker struct {
	name    string
	probe   func(context.Context) error
	timeout time.Duration
}

// NewProbeChecker creates a probe checker. A non-positive timeout
// defaults to 2 seconds.
func NewProbeChecker(name string, probe func(context.Context) error, timeout time.Duration) *ProbeChecker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &ProbeChecker{name: name, probe: probe, timeout: timeout}
}

// Name returns the checker name.
func (p *ProbeChecker) Name() string {
	return p.name
}

// Check runs the probe under the checker's timeout.
func (p *ProbeChecker) Check(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	if err := p.probe(ctx); err != nil {
		return Unhealthy(p.name+" probe failed", fmt.Errorf("%w: %w", ErrProbeFailed, err))
	}
	return Healthy(p.name + " probe ok").WithDetails(map[string]any{
		"latency_ms": float64(time.Since(start).Microseconds()) / 1000,
	})
}
