package render

import (
	"strconv"
	"strings"

	"github.com/jonwraymond/qrpreview/preview"
)

// paintSVG paints m as a single path in a viewBox of one unit per module,
// scaled to opts.Width by the width and height attributes.
func paintSVG(m matrix, opts preview.RenderOptions) []byte {
	n := strconv.Itoa(m.size())
	w := strconv.Itoa(opts.Width)

	var b strings.Builder
	b.Grow(256 + m.symbolSize()*m.symbolSize()*4)

	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" version="1.1" width="`)
	b.WriteString(w)
	b.WriteString(`" height="`)
	b.WriteString(w)
	b.WriteString(`" viewBox="0 0 `)
	b.WriteString(n)
	b.WriteByte(' ')
	b.WriteString(n)
	b.WriteString(`" shape-rendering="crispEdges">`)

	b.WriteString(`<rect width="100%" height="100%" fill="#`)
	b.WriteString(string(opts.Light))
	b.WriteString(`"/><path fill="#`)
	b.WriteString(string(opts.Dark))
	b.WriteString(`" d="`)

	// One subpath per horizontal run of dark modules.
	size := m.size()
	for y := 0; y < size; y++ {
		for x := 0; x < size; {
			if !m.dark(x, y) {
				x++
				continue
			}
			run := 1
			for x+run < size && m.dark(x+run, y) {
				run++
			}
			b.WriteByte('M')
			b.WriteString(strconv.Itoa(x))
			b.WriteByte(' ')
			b.WriteString(strconv.Itoa(y))
			b.WriteByte('h')
			b.WriteString(strconv.Itoa(run))
			b.WriteString("v1h-")
			b.WriteString(strconv.Itoa(run))
			b.WriteByte('z')
			x += run
		}
	}

	b.WriteString(`"/></svg>`)
	return []byte(b.String())
}
