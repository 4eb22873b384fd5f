//go:build !opencv

package vision

import "image"

// mask is a binary image stored row-major.
type mask struct {
	w, h int
	pix  []bool
}

func newMask(w, h int) *mask {
	return &mask{w: w, h: h, pix: make([]bool, w*h)}
}

// valueMask marks pixels whose HSV value, max(R,G,B), exceeds minValue.
func valueMask(img image.Image, minValue int) *mask {
	b := img.Bounds()
	m := newMask(b.Dx(), b.Dy())
	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < m.h; y++ {
			row := rgba.Pix[(y+b.Min.Y-rgba.Rect.Min.Y)*rgba.Stride+(b.Min.X-rgba.Rect.Min.X)*4:]
			for x := 0; x < m.w; x++ {
				p := row[x*4 : x*4+3]
				m.pix[y*m.w+x] = int(max(p[0], p[1], p[2])) > minValue
			}
		}
		return m
	}
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			m.pix[y*m.w+x] = int(max(r, g, bl)>>8) > minValue
		}
	}
	return m
}

// dilate and erode use a k x k rectangle anchored at its centre. Pixels
// outside the image are ignored, so the frame neither grows nor eats into
// regions.
func (m *mask) dilate(k int) *mask {
	return m.morph(k, func(count, span int) bool { return count > 0 })
}

func (m *mask) erode(k int) *mask {
	return m.morph(k, func(count, span int) bool { return count == span })
}

// morph applies a separable rectangle filter: keep decides a pixel from the
// number of set pixels in its in-image window and the window length.
func (m *mask) morph(k int, keep func(count, span int) bool) *mask {
	if k <= 1 {
		out := newMask(m.w, m.h)
		copy(out.pix, m.pix)
		return out
	}
	lo, hi := k/2, k-1-k/2

	tmp := newMask(m.w, m.h)
	prefix := make([]int, max(m.w, m.h)+1)
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			prefix[x+1] = prefix[x] + b2i(m.pix[y*m.w+x])
		}
		for x := 0; x < m.w; x++ {
			a, z := max(0, x-lo), min(m.w-1, x+hi)
			tmp.pix[y*m.w+x] = keep(prefix[z+1]-prefix[a], z-a+1)
		}
	}

	out := newMask(m.w, m.h)
	for x := 0; x < m.w; x++ {
		for y := 0; y < m.h; y++ {
			prefix[y+1] = prefix[y] + b2i(tmp.pix[y*m.w+x])
		}
		for y := 0; y < m.h; y++ {
			a, z := max(0, y-lo), min(m.h-1, y+hi)
			out.pix[y*m.w+x] = keep(prefix[z+1]-prefix[a], z-a+1)
		}
	}
	return out
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
