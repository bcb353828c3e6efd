package geometry

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/menta2k/landmark-pipeline/pkg/types"
)

// Rotate rotates the image counter-clockwise by the given angle in degrees
// about its center, filling exposed corners with black, and keeps the
// original width and height so the normalized coordinate frame survives.
// Box and landmarks are rotated about the same center with the standard 2D
// rotation matrix in pixel space and re-normalized; the box becomes the
// clamped axis-aligned hull of its rotated corners.
func Rotate(img *image.NRGBA, box types.Box, landmarks []types.Point, degrees float64) (*image.NRGBA, types.Box, []types.Point) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	rotated := imaging.Rotate(img, degrees, color.NRGBA{0, 0, 0, 255})
	rotated = imaging.CropCenter(rotated, w, h)
	if rotated.Bounds().Dx() != w || rotated.Bounds().Dy() != h {
		// Steep angles can shrink the rotated canvas below the source
		// extent; pad back out so the frame stays fixed.
		canvas := imaging.New(w, h, color.NRGBA{0, 0, 0, 255})
		rotated = imaging.PasteCenter(canvas, rotated)
	}

	sin, cos := math.Sincos(degrees * math.Pi / 180)
	cx, cy := float64(w)/2, float64(h)/2

	rotatePoint := func(p types.Point) types.Point {
		px := p.X*float64(w) - cx
		py := p.Y*float64(h) - cy
		// Counter-clockwise on screen; the y axis points down.
		qx := px*cos + py*sin
		qy := -px*sin + py*cos
		return types.Point{
			Y: (qy + cy) / float64(h),
			X: (qx + cx) / float64(w),
		}
	}

	out := make([]types.Point, len(landmarks))
	for i, p := range landmarks {
		out[i] = rotatePoint(p).Clamp()
	}

	corners := [4]types.Point{
		{Y: box.YMin, X: box.XMin},
		{Y: box.YMin, X: box.XMax},
		{Y: box.YMax, X: box.XMin},
		{Y: box.YMax, X: box.XMax},
	}
	hull := types.Box{YMin: math.Inf(1), XMin: math.Inf(1), YMax: math.Inf(-1), XMax: math.Inf(-1)}
	for _, c := range corners {
		q := rotatePoint(c)
		hull.YMin = math.Min(hull.YMin, q.Y)
		hull.XMin = math.Min(hull.XMin, q.X)
		hull.YMax = math.Max(hull.YMax, q.Y)
		hull.XMax = math.Max(hull.XMax, q.X)
	}

	return rotated, hull.Clamp(), out
}
