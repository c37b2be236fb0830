package render

// matrix is a square module grid with its quiet zone.
type matrix struct {
	bits   [][]bool
	margin int
}

func newMatrix(bits [][]bool, margin int) matrix {
	return matrix{bits: bits, margin: max(margin, 0)}
}

// symbolSize is the module count of one side, without the quiet zone.
func (m matrix) symbolSize() int {
	return len(m.bits)
}

// size is the module count of one side, including the quiet zone.
func (m matrix) size() int {
	return len(m.bits) + 2*m.margin
}

// dark reports whether the module at (x, y) in quiet-zone coordinates is set.
func (m matrix) dark(x, y int) bool {
	x -= m.margin
	y -= m.margin
	if y < 0 || y >= len(m.bits) || x < 0 || x >= len(m.bits[y]) {
		return false
	}
	return m.bits[y][x]
}

// scale returns the pixel size of one module for a target width and the
// resulting image side. Modules are at least one pixel, so a symbol that
// needs more pixels than width gets a larger image.
func (m matrix) scale(width int) (module, side int) {
	n := m.size()
	module = max(width/n, 1)
	side = max(width, module*n)
	return module, side
}
