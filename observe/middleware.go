package observe

import (
	"context"
	"time"
)

// RenderFunc produces an artifact for the render described by meta.
type RenderFunc func(ctx context.Context, meta RenderMeta) ([]byte, error)

// Middleware wraps renders with a span, metrics and a log entry.
//
// Contract:
//   - Concurrency: Wrap returns a RenderFunc safe for concurrent use.
//   - Errors: errors from the wrapped function are recorded and returned unchanged.
//   - Ownership: the artifact is passed through without copying.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a Middleware. Nil components are replaced by no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NopTracer()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap instruments fn.
func (m *Middleware) Wrap(fn RenderFunc) RenderFunc {
	return func(ctx context.Context, meta RenderMeta) ([]byte, error) {
		ctx, span := m.tracer.StartSpan(ctx, meta)
		start := time.Now()

		artifact, err := fn(ctx, meta)

		duration := time.Since(start)
		m.tracer.EndSpan(span, err)
		m.metrics.RecordRender(ctx, meta, duration, err)

		fields := append(meta.LogFields(),
			F("duration_ms", float64(duration.Microseconds())/1000),
		)
		if err != nil {
			fields = append(fields, F("error", err.Error()))
			m.logger.Error(ctx, "preview render failed", fields...)
		} else {
			fields = append(fields, F("bytes", len(artifact)))
			m.logger.Debug(ctx, "preview rendered", fields...)
		}

		return artifact, err
	}
}

// Metrics returns the middleware's metrics recorder.
func (m *Middleware) Metrics() Metrics {
	return m.metrics
}

// Logger returns the middleware's logger.
func (m *Middleware) Logger() Logger {
	return m.logger
}

// MiddlewareFromObserver builds a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
