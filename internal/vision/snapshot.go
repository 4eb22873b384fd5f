package vision

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var boxColor = color.RGBA{G: 255, A: 255}

const boxThickness = 2

// Annotate returns a copy of img with each rect outlined and a detection
// count caption in the top-left corner.
func Annotate(img image.Image, rects []Rect) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)

	fill := image.NewUniform(boxColor)
	for _, r := range rects {
		outer := r.Rectangle()
		inner := outer.Inset(boxThickness)
		for _, edge := range []image.Rectangle{
			image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, inner.Min.Y),
			image.Rect(outer.Min.X, inner.Max.Y, outer.Max.X, outer.Max.Y),
			image.Rect(outer.Min.X, outer.Min.Y, inner.Min.X, outer.Max.Y),
			image.Rect(inner.Max.X, outer.Min.Y, outer.Max.X, outer.Max.Y),
		} {
			draw.Draw(out, edge.Intersect(out.Bounds()), fill, image.Point{}, draw.Src)
		}
	}

	d := &font.Drawer{
		Dst:  out,
		Src:  fill,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(10, 30),
	}
	d.DrawString(fmt.Sprintf("Video Players Detected: %d", len(rects)))
	return out
}

// SnapshotName is the file name used for a snapshot taken at t.
func SnapshotName(t time.Time) string {
	return fmt.Sprintf("video_detection_%d.png", t.Unix())
}

// SaveSnapshot writes img as PNG into dir and returns the file path.
func SaveSnapshot(fs afero.Fs, dir string, img image.Image, t time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, SnapshotName(t))
	f, err := fs.Create(path)
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
