//go:build !opencv

package vision

// externalBounds returns the bounding rects of the outermost 8-connected
// foreground regions, in row-major discovery order. Shapes inside holes of
// another region are absorbed by it, as with external-only contour
// retrieval.
func (m *mask) externalBounds() []Rect {
	filled := m.fillHoles()
	seen := make([]bool, len(filled.pix))
	var (
		out   []Rect
		stack []int
	)
	for start, on := range filled.pix {
		if !on || seen[start] {
			continue
		}
		minX, minY := m.w, m.h
		maxX, maxY := -1, -1
		seen[start] = true
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%m.w, i/m.w
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= m.w || ny >= m.h {
						continue
					}
					j := ny*m.w + nx
					if filled.pix[j] && !seen[j] {
						seen[j] = true
						stack = append(stack, j)
					}
				}
			}
		}
		out = append(out, Rect{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1})
	}
	return out
}

// fillHoles sets every background pixel that is not 4-connected to the
// image border.
func (m *mask) fillHoles() *mask {
	outside := make([]bool, len(m.pix))
	var stack []int
	push := func(x, y int) {
		i := y*m.w + x
		if !m.pix[i] && !outside[i] {
			outside[i] = true
			stack = append(stack, i)
		}
	}
	for x := 0; x < m.w; x++ {
		push(x, 0)
		push(x, m.h-1)
	}
	for y := 0; y < m.h; y++ {
		push(0, y)
		push(m.w-1, y)
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%m.w, i/m.w
		if x > 0 {
			push(x-1, y)
		}
		if x < m.w-1 {
			push(x+1, y)
		}
		if y > 0 {
			push(x, y-1)
		}
		if y < m.h-1 {
			push(x, y+1)
		}
	}
	out := newMask(m.w, m.h)
	for i := range out.pix {
		out.pix[i] = !outside[i]
	}
	return out
}
