// Package observe instruments the preview pipeline.
//
// It provides a JSON structured logger that redacts credentials and
// payloads, OpenTelemetry metrics for requests, cache lookups and renders,
// a tracer that opens one "preview.render" span per encoder call, and a
// Middleware that applies all three around a render function.
//
// An Observer owns the tracer and meter providers built from Config. When
// metrics use the Prometheus exporter, Observer.MetricsHandler serves the
// scrape endpoint.
package observe
