package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Request outcomes recorded by Metrics.RecordRequest.
const (
	OutcomeOK          = "ok"
	OutcomeNotModified = "not_modified"
	OutcomeBadRequest  = "bad_request"
	OutcomeRateLimited = "rate_limited"
	OutcomeEncoding    = "encoding_failure"
	OutcomeUnknown     = "unknown"
)

// CacheSnapshot is the cache state sampled by observable gauges.
type CacheSnapshot struct {
	Entries     int64
	Bytes       int64
	Evictions   int64
	Expirations int64
}

// Metrics records preview pipeline metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordRequest counts a finished preview request by outcome.
	RecordRequest(ctx context.Context, outcome, format string)

	// RecordCacheLookup counts a cache hit or miss.
	RecordCacheLookup(ctx context.Context, hit bool)

	// RecordRender records one encoder call.
	RecordRender(ctx context.Context, meta RenderMeta, duration time.Duration, err error)

	// ObserveCache registers gauges sampled from fn at collection time.
	ObserveCache(fn func() CacheSnapshot) error
}

type otelMetrics struct {
	meter        metric.Meter
	requests     metric.Int64Counter
	cacheLookups metric.Int64Counter
	renders      metric.Int64Counter
	renderErrors metric.Int64Counter
	renderTime   metric.Float64Histogram
}

// NewMetrics creates Metrics on the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	requests, err := meter.Int64Counter(
		"preview.requests",
		metric.WithDescription("Preview requests by outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	cacheLookups, err := meter.Int64Counter(
		"preview.cache.lookups",
		metric.WithDescription("Preview cache lookups by result"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	renders, err := meter.Int64Counter(
		"preview.renders",
		metric.WithDescription("Encoder invocations"),
		metric.WithUnit("{render}"),
	)
	if err != nil {
		return nil, err
	}

	renderErrors, err := meter.Int64Counter(
		"preview.render.errors",
		metric.WithDescription("Failed encoder invocations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	renderTime, err := meter.Float64Histogram(
		"preview.render.duration_ms",
		metric.WithDescription("Encoder duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		meter:        meter,
		requests:     requests,
		cacheLookups: cacheLookups,
		renders:      renders,
		renderErrors: renderErrors,
		renderTime:   renderTime,
	}, nil
}

func (m *otelMetrics) RecordRequest(ctx context.Context, outcome, format string) {
	attrs := []attribute.KeyValue{attribute.String("outcome", outcome)}
	if format != "" {
		attrs = append(attrs, attribute.String("format", format))
	}
	m.requests.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *otelMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *otelMetrics) RecordRender(ctx context.Context, meta RenderMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(
		attribute.String("format", meta.Format),
		attribute.String("ecl", meta.ECL),
	)

	m.renders.Add(ctx, 1, opt)
	if err != nil {
		m.renderErrors.Add(ctx, 1, opt)
	}
	m.renderTime.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

func (m *otelMetrics) ObserveCache(fn func() CacheSnapshot) error {
	entries, err := m.meter.Int64ObservableGauge(
		"preview.cache.entries",
		metric.WithDescription("Entries held by the preview cache"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return err
	}
	bytes, err := m.meter.Int64ObservableGauge(
		"preview.cache.bytes",
		metric.WithDescription("Bytes held by the preview cache"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return err
	}
	evictions, err := m.meter.Int64ObservableCounter(
		"preview.cache.evictions",
		metric.WithDescription("Entries evicted for capacity"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return err
	}
	expirations, err := m.meter.Int64ObservableCounter(
		"preview.cache.expirations",
		metric.WithDescription("Entries removed after their TTL"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return err
	}

	_, err = m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := fn()
		o.ObserveInt64(entries, s.Entries)
		o.ObserveInt64(bytes, s.Bytes)
		o.ObserveInt64(evictions, s.Evictions)
		o.ObserveInt64(expirations, s.Expirations)
		return nil
	}, entries, bytes, evictions, expirations)
	return err
}

type nopMetrics struct{}

// NopMetrics returns Metrics that record nothing.
func NopMetrics() Metrics { return nopMetrics{} }

func (nopMetrics) RecordRequest(context.Context, string, string)                  {}
func (nopMetrics) RecordCacheLookup(context.Context, bool)                        {}
func (nopMetrics) RecordRender(context.Context, RenderMeta, time.Duration, error) {}
func (nopMetrics) ObserveCache(func() CacheSnapshot) error                        { return nil }
