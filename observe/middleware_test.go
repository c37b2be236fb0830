package observe

import (
	"bytes"
	"context"
	"errors"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func TestMiddleware_Success(t *testing.T) {
	tracer, rec := newRecordingTracer()
	reader := sdkmetric.NewManualReader()
	metrics, _ := NewMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"))
	var logs bytes.Buffer

	mw := NewMiddleware(tracer, metrics, NewLoggerWithWriter("debug", &logs))
	render := mw.Wrap(func(ctx context.Context, meta RenderMeta) ([]byte, error) {
		return []byte("<svg/>"), nil
	})

	out, err := render(context.Background(), RenderMeta{Format: "svg", ECL: "M", Width: 256})
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	if string(out) != "<svg/>" {
		t.Errorf("artifact = %q", out)
	}

	if n := len(rec.Ended()); n != 1 {
		t.Errorf("spans = %d, want 1", n)
	}
	if got := sumWhere(t, findMetric(collect(t, reader), "preview.renders"), "format", "svg"); got != 1 {
		t.Errorf("renders = %d, want 1", got)
	}

	lines := decodeLines(t, &logs)
	if len(lines) != 1 || lines[0]["msg"] != "preview rendered" || lines[0]["bytes"] != float64(6) {
		t.Errorf("logs = %v", lines)
	}
}

func TestMiddleware_ErrorPropagates(t *testing.T) {
	var logs bytes.Buffer
	mw := NewMiddleware(nil, nil, NewLoggerWithWriter("info", &logs))
	want := errors.New("encoder failed")

	_, err := mw.Wrap(func(context.Context, RenderMeta) ([]byte, error) {
		return nil, want
	})(context.Background(), RenderMeta{Format: "png", ContentLen: 5})

	if !errors.Is(err, want) {
		t.Fatalf("error = %v, want %v", err, want)
	}
	lines := decodeLines(t, &logs)
	if len(lines) != 1 || lines[0]["level"] != "error" || lines[0]["content_len"] != float64(5) {
		t.Errorf("logs = %v", lines)
	}
}

func TestMiddleware_PassesSpanContext(t *testing.T) {
	tracer, _ := newRecordingTracer()
	mw := NewMiddleware(tracer, NopMetrics(), NopLogger())

	_, _ = mw.Wrap(func(ctx context.Context, _ RenderMeta) ([]byte, error) {
		if !traceSpanValid(ctx) {
			t.Error("render context should carry the span")
		}
		return nil, nil
	})(context.Background(), RenderMeta{})
}

func TestMiddlewareFromObserver(t *testing.T) {
	if _, err := MiddlewareFromObserver(nil); !errors.Is(err, ErrNilObserver) {
		t.Errorf("error = %v, want ErrNilObserver", err)
	}

	obs, err := NewObserver(context.Background(), Config{ServiceName: "test"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	mw, err := MiddlewareFromObserver(obs)
	if err != nil || mw == nil {
		t.Fatalf("MiddlewareFromObserver() = %v, %v", mw, err)
	}
	if mw.Metrics() == nil || mw.Logger() == nil {
		t.Error("middleware components should be set")
	}
}
