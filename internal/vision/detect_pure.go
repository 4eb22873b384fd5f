//go:build !opencv

package vision

import "image"

// candidates returns bounding rects of the external contours of the
// cleaned-up non-black mask.
func (d *Detector) candidates(img image.Image) []Rect {
	m := valueMask(img, d.Params.MinValue)
	k := d.Params.KernelSize
	// closing, then opening
	m = m.dilate(k).erode(k)
	m = m.erode(k).dilate(k)
	return m.externalBounds()
}
