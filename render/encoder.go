package render

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/jonwraymond/qrpreview/preview"
)

// ErrUnsupportedFormat is returned for formats other than svg and png.
var ErrUnsupportedFormat = errors.New("render: unsupported format")

// Config configures the encoder.
type Config struct {
	// PNGDataURL emits PNG output as a base64 data URL instead of raw bytes.
	PNGDataURL bool
}

// QREncoder implements preview.Encoder.
type QREncoder struct {
	config Config
}

// NewQREncoder creates an encoder.
func NewQREncoder(config Config) *QREncoder {
	return &QREncoder{config: config}
}

// Encode builds the symbol for content and paints it in opts.Format.
func (e *QREncoder) Encode(ctx context.Context, content string, opts preview.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q, err := qrcode.New(content, recoveryLevel(opts.ErrorCorrection))
	if err != nil {
		return nil, fmt.Errorf("render: encode: %w", err)
	}
	q.DisableBorder = true
	m := newMatrix(q.Bitmap(), opts.Margin)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch opts.Format {
	case preview.FormatSVG:
		return paintSVG(m, opts), nil
	case preview.FormatPNG:
		b, err := paintPNG(m, opts)
		if err != nil {
			return nil, err
		}
		if e.config.PNGDataURL {
			return dataURL("image/png", b), nil
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, opts.Format)
}

func recoveryLevel(ecl preview.ECL) qrcode.RecoveryLevel {
	switch ecl {
	case preview.ECLLow:
		return qrcode.Low
	case preview.ECLQuartile:
		return qrcode.High
	case preview.ECLHigh:
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

func dataURL(mediaType string, b []byte) []byte {
	prefix := "data:" + mediaType + ";base64,"
	out := make([]byte, len(prefix)+base64.StdEncoding.EncodedLen(len(b)))
	copy(out, prefix)
	base64.StdEncoding.Encode(out[len(prefix):], b)
	return out
}

var _ preview.Encoder = (*QREncoder)(nil)
