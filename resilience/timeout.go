package resilience

import (
	"context"
	"errors"
	"time"
)

// DefaultRenderTimeout bounds a single render.
const DefaultRenderTimeout = 5 * time.Second

// TimeoutConfig configures Timeout.
type TimeoutConfig struct {
	// Default: DefaultRenderTimeout
	Timeout time.Duration
}

// Timeout abandons an operation at its deadline and returns ErrTimeout.
// The abandoned goroutine sees a cancelled context and is expected to
// return soon; its result is discarded.
type Timeout struct {
	d time.Duration
}

// NewTimeout creates a Timeout.
func NewTimeout(config TimeoutConfig) *Timeout {
	if config.Timeout <= 0 {
		config.Timeout = DefaultRenderTimeout
	}
	return &Timeout{d: config.Timeout}
}

// Duration is the effective deadline.
func (t *Timeout) Duration() time.Duration { return t.d }

// Execute runs op under the deadline. Cancellation of the parent context
// is returned as is, not as ErrTimeout.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	return t.run(ctx, op, nil)
}

// run is Execute with a hook called from op's goroutine once op returns,
// even when the caller was already given ErrTimeout.
func (t *Timeout) run(ctx context.Context, op func(context.Context) error, after func()) error {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		err := op(ctx)
		if after != nil {
			after()
		}
		done <- err
	}()

	var err error
	select {
	case err = <-done:
		if ctx.Err() == nil || !errors.Is(err, ctx.Err()) {
			return err
		}
	case <-ctx.Done():
		err = ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}

// ExecuteWithTimeout runs op under a one-off deadline.
func ExecuteWithTimeout(ctx context.Context, d time.Duration, op func(context.Context) error) error {
	return NewTimeout(TimeoutConfig{Timeout: d}).Execute(ctx, op)
}
