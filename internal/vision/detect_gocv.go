//go:build opencv

package vision

import (
	"image"
	"image/draw"

	"gocv.io/x/gocv"
)

// candidates runs the mask, morphology and contour steps in OpenCV.
func (d *Detector) candidates(img image.Image) []Rect {
	bgr, err := imageToMat(img)
	if err != nil {
		return nil
	}
	defer bgr.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(bgr, &hsv, gocv.ColorBGRToHSV)

	// inRange bounds are inclusive; +1 keeps V strictly above MinValue.
	mask := gocv.NewMat()
	defer mask.Close()
	lower := gocv.NewScalar(0, 0, float64(d.Params.MinValue+1), 0)
	upper := gocv.NewScalar(180, 255, 255, 0)
	gocv.InRangeWithScalar(hsv, lower, upper, &mask)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(d.Params.KernelSize, d.Params.KernelSize))
	defer kernel.Close()

	closed := gocv.NewMat()
	defer closed.Close()
	gocv.MorphologyEx(mask, &closed, gocv.MorphClose, kernel)
	opened := gocv.NewMat()
	defer opened.Close()
	gocv.MorphologyEx(closed, &opened, gocv.MorphOpen, kernel)

	contours := gocv.FindContours(opened, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	out := make([]Rect, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		br := gocv.BoundingRect(contours.At(i))
		out = append(out, Rect{X: br.Min.X, Y: br.Min.Y, W: br.Dx(), H: br.Dy()})
	}
	return out
}

// imageToMat converts img to a BGR Mat.
func imageToMat(img image.Image) (gocv.Mat, error) {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	mat, err := gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8UC4, rgba.Pix)
	if err != nil {
		return gocv.Mat{}, err
	}
	defer mat.Close()
	bgr := gocv.NewMat()
	gocv.CvtColor(mat, &bgr, gocv.ColorRGBAToBGR)
	return bgr, nil
}
