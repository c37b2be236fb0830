package observe

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumWhere(t *testing.T, m *metricdata.Metrics, key, value string) int64 {
	t.Helper()
	if m == nil {
		return 0
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: expected Sum[int64], got %T", m.Name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			total += dp.Value
		}
	}
	return total
}

func TestMetrics_Requests(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordRequest(ctx, OutcomeOK, "svg")
	m.RecordRequest(ctx, OutcomeOK, "png")
	m.RecordRequest(ctx, OutcomeBadRequest, "")

	requests := findMetric(collect(t, reader), "preview.requests")
	if got := sumWhere(t, requests, "outcome", OutcomeOK); got != 2 {
		t.Errorf("ok requests = %d, want 2", got)
	}
	if got := sumWhere(t, requests, "outcome", OutcomeBadRequest); got != 1 {
		t.Errorf("bad requests = %d, want 1", got)
	}
}

func TestMetrics_CacheLookups(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordCacheLookup(ctx, true)
	m.RecordCacheLookup(ctx, true)
	m.RecordCacheLookup(ctx, false)

	lookups := findMetric(collect(t, reader), "preview.cache.lookups")
	if hits := sumWhere(t, lookups, "result", "hit"); hits != 2 {
		t.Errorf("hits = %d, want 2", hits)
	}
	if misses := sumWhere(t, lookups, "result", "miss"); misses != 1 {
		t.Errorf("misses = %d, want 1", misses)
	}
}

func TestMetrics_Renders(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()
	meta := RenderMeta{Format: "svg", ECL: "M", Width: 256}

	m.RecordRender(ctx, meta, 3*time.Millisecond, nil)
	m.RecordRender(ctx, meta, 5*time.Millisecond, errors.New("boom"))

	rm := collect(t, reader)
	if got := sumWhere(t, findMetric(rm, "preview.renders"), "format", "svg"); got != 2 {
		t.Errorf("renders = %d, want 2", got)
	}
	if got := sumWhere(t, findMetric(rm, "preview.render.errors"), "format", "svg"); got != 1 {
		t.Errorf("render errors = %d, want 1", got)
	}

	hist := findMetric(rm, "preview.render.duration_ms")
	if hist == nil {
		t.Fatal("duration histogram not found")
	}
	data, ok := hist.Data.(metricdata.Histogram[float64])
	if !ok || len(data.DataPoints) == 0 || data.DataPoints[0].Count != 2 {
		t.Errorf("histogram = %+v", hist.Data)
	}
}

func TestMetrics_ObserveCache(t *testing.T) {
	m, reader := newTestMetrics(t)
	snap := CacheSnapshot{Entries: 3, Bytes: 4096, Evictions: 7, Expirations: 1}
	if err := m.ObserveCache(func() CacheSnapshot { return snap }); err != nil {
		t.Fatalf("ObserveCache() error = %v", err)
	}

	rm := collect(t, reader)
	entries := findMetric(rm, "preview.cache.entries")
	if entries == nil {
		t.Fatal("entries gauge not found")
	}
	gauge, ok := entries.Data.(metricdata.Gauge[int64])
	if !ok || len(gauge.DataPoints) != 1 || gauge.DataPoints[0].Value != 3 {
		t.Errorf("entries gauge = %+v", entries.Data)
	}

	evictions := findMetric(rm, "preview.cache.evictions")
	if evictions == nil {
		t.Fatal("evictions counter not found")
	}
	sum, ok := evictions.Data.(metricdata.Sum[int64])
	if !ok || len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 7 {
		t.Errorf("evictions = %+v", evictions.Data)
	}
}

func TestNopMetrics(t *testing.T) {
	m := NopMetrics()
	m.RecordRequest(context.Background(), OutcomeOK, "svg")
	if err := m.ObserveCache(func() CacheSnapshot { return CacheSnapshot{} }); err != nil {
		t.Errorf("ObserveCache() error = %v", err)
	}
}
