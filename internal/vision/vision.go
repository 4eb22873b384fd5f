// Package vision finds video-player regions on screen.
//
// A region is a large, roughly rectangular area that is not near-black,
// separated from the screen's own framing by a border heuristic. The
// detector is a pure function of its input image.
package vision

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"voicescroll/internal/config"
)

// Rect is an axis-aligned rectangle in pixels.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Rectangle converts r to an image.Rectangle.
func (r Rect) Rectangle() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// Offset returns r translated by (dx, dy).
func (r Rect) Offset(dx, dy int) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.W, r.H)
}

// ParseRect parses "x,y,w,h".
func ParseRect(s string) (Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Rect{}, fmt.Errorf("region %q: want x,y,w,h", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Rect{}, fmt.Errorf("region %q: %w", s, err)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return Rect{}, fmt.Errorf("region %q: width and height must be positive", s)
	}
	return Rect{X: v[0], Y: v[1], W: v[2], H: v[3]}, nil
}

// Params are the detector thresholds.
type Params struct {
	MinValue       int     // mask keeps V > MinValue
	KernelSize     int     // square morphology kernel
	MinWidth       int     // keep w > MinWidth
	MinHeight      int     // keep h > MinHeight
	MinAspect      float64 // inclusive
	MaxAspect      float64 // inclusive
	BorderMargin   int     // distance from an edge that counts as touching it
	MaxAreaRatio   float64 // area/screen above this is a border
	MinBorderEdges int     // touching this many edges is a border
}

// DefaultParams returns the standard thresholds.
func DefaultParams() Params {
	return ParamsFromConfig(config.DefaultDetector())
}

// ParamsFromConfig maps the [detector] config section.
func ParamsFromConfig(c config.DetectorConfig) Params {
	return Params{
		MinValue:       c.MinValue,
		KernelSize:     c.KernelSize,
		MinWidth:       c.MinWidth,
		MinHeight:      c.MinHeight,
		MinAspect:      c.MinAspect,
		MaxAspect:      c.MaxAspect,
		BorderMargin:   c.BorderMargin,
		MaxAreaRatio:   c.MaxAreaRatio,
		MinBorderEdges: c.MinBorderEdges,
	}
}

// IsBorder reports whether r looks like screen framing in an imgW x imgH
// image: it touches MinBorderEdges or more edges, or covers more than
// MaxAreaRatio of the image.
func IsBorder(r Rect, imgW, imgH int, p Params) bool {
	edges := 0
	if r.X <= p.BorderMargin {
		edges++
	}
	if r.X+r.W >= imgW-p.BorderMargin {
		edges++
	}
	if r.Y <= p.BorderMargin {
		edges++
	}
	if r.Y+r.H >= imgH-p.BorderMargin {
		edges++
	}
	if edges >= p.MinBorderEdges {
		return true
	}
	if imgW <= 0 || imgH <= 0 {
		return true
	}
	return float64(r.W*r.H)/float64(imgW*imgH) > p.MaxAreaRatio
}

// Keep applies the size, aspect and border filters.
func Keep(r Rect, imgW, imgH int, p Params) bool {
	if r.W <= p.MinWidth || r.H <= p.MinHeight {
		return false
	}
	aspect := float64(r.W) / float64(r.H)
	if aspect < p.MinAspect || aspect > p.MaxAspect {
		return false
	}
	return !IsBorder(r, imgW, imgH, p)
}

// Detector finds video-player regions.
type Detector struct {
	Params Params
}

// NewDetector returns a Detector using p.
func NewDetector(p Params) *Detector {
	if p.KernelSize < 1 {
		p.KernelSize = 1
	}
	return &Detector{Params: p}
}

// Detect returns the kept regions of img, relative to its top-left corner.
// Order follows contour discovery and is not meaningful.
func (d *Detector) Detect(img image.Image) []Rect {
	b := img.Bounds()
	if b.Empty() {
		return nil
	}
	var out []Rect
	for _, r := range d.candidates(img) {
		if Keep(r, b.Dx(), b.Dy(), d.Params) {
			out = append(out, r)
		}
	}
	return out
}
