package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// RenderSpanName is the span opened around each encoder call.
const RenderSpanName = "preview.render"

// RenderMeta describes one render for telemetry. It never carries the
// content itself.
type RenderMeta struct {
	Format     string // svg|png
	ECL        string // L|M|Q|H
	Width      int
	Margin     int
	ContentLen int
	Key        string // cache key (optional)
}

// Attributes returns the span and metric attributes for the render.
func (m RenderMeta) Attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("preview.format", m.Format),
		attribute.String("preview.ecl", m.ECL),
		attribute.Int("preview.width", m.Width),
	}
	if m.Margin > 0 {
		attrs = append(attrs, attribute.Int("preview.margin", m.Margin))
	}
	return attrs
}

// LogFields returns the fields logged for the render.
func (m RenderMeta) LogFields() []Field {
	fields := []Field{
		F("format", m.Format),
		F("ecl", m.ECL),
		F("width", m.Width),
		F("margin", m.Margin),
		F("content_len", m.ContentLen),
	}
	if m.Key != "" {
		fields = append(fields, F("key", m.Key))
	}
	return fields
}

// Tracer opens spans around renders.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a render span.
	StartSpan(ctx context.Context, meta RenderMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

type otelTracer struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	if t == nil {
		return NopTracer()
	}
	return &otelTracer{tracer: t}
}

func (t *otelTracer) StartSpan(ctx context.Context, meta RenderMeta) (context.Context, trace.Span) {
	attrs := append(meta.Attributes(),
		attribute.Int("preview.content_len", meta.ContentLen),
		attribute.Bool("preview.error", false),
	)
	return t.tracer.Start(ctx, RenderSpanName,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (t *otelTracer) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("preview.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// NopTracer returns a tracer whose spans record nothing.
func NopTracer() Tracer {
	return &otelTracer{tracer: tracenoop.NewTracerProvider().Tracer("noop")}
}
