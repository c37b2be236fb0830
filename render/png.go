package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/jonwraymond/qrpreview/preview"
)

var pngEncoder = png.Encoder{CompressionLevel: png.BestSpeed}

// paintPNG paints m as a two-color paletted image opts.Width pixels wide,
// centered when the width is not a multiple of the module count.
func paintPNG(m matrix, opts preview.RenderOptions) ([]byte, error) {
	module, side := m.scale(opts.Width)
	offset := (side - module*m.size()) / 2

	img := image.NewPaletted(image.Rect(0, 0, side, side), color.Palette{
		rgba(opts.Light),
		rgba(opts.Dark),
	})
	// Index 0 is the light color, so the zeroed image is already background.

	size := m.size()
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if !m.dark(x, y) {
				continue
			}
			x0, y0 := offset+x*module, offset+y*module
			for py := y0; py < y0+module; py++ {
				row := img.Pix[py*img.Stride:]
				for px := x0; px < x0+module; px++ {
					row[px] = 1
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := pngEncoder.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("render: png: %w", err)
	}
	return buf.Bytes(), nil
}

func rgba(c preview.Color) color.RGBA {
	r, g, b := c.RGB()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
