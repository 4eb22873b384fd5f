package vision

import (
	"errors"
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// ErrNoDisplay is returned when no active display can be captured.
var ErrNoDisplay = errors.New("no active display")

// Capture grabs region in screen coordinates, or the whole primary display
// when region is nil.
func Capture(region *Rect) (*image.RGBA, error) {
	if screenshot.NumActiveDisplays() < 1 {
		return nil, ErrNoDisplay
	}
	bounds := screenshot.GetDisplayBounds(0)
	if region != nil {
		if region.W <= 0 || region.H <= 0 {
			return nil, fmt.Errorf("capture: empty region %v", *region)
		}
		bounds = region.Rectangle()
	}
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("capture %v: %w", bounds, err)
	}
	return img, nil
}

// DisplayBounds returns the primary display bounds.
func DisplayBounds() (image.Rectangle, error) {
	if screenshot.NumActiveDisplays() < 1 {
		return image.Rectangle{}, ErrNoDisplay
	}
	return screenshot.GetDisplayBounds(0), nil
}
