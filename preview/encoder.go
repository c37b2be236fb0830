package preview

import "context"

// Encoder turns content and options into an artifact: SVG markup for
// FormatSVG, PNG bytes or a base64 PNG data URL for FormatPNG.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: implementations should honor cancellation; the service
//   bounds each call with a timeout regardless.
// - Determinism: equal inputs should yield equivalent artifacts, since
//   only the first render for a key is ever served.
type Encoder interface {
	Encode(ctx context.Context, content string, opts RenderOptions) ([]byte, error)
}

// EncoderFunc adapts a function to Encoder.
type EncoderFunc func(ctx context.Context, content string, opts RenderOptions) ([]byte, error)

// Encode calls f.
func (f EncoderFunc) Encode(ctx context.Context, content string, opts RenderOptions) ([]byte, error) {
	return f(ctx, content, opts)
}

var _ Encoder = EncoderFunc(nil)
