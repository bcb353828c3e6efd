// Package geometry implements the coordinate-preserving image transforms of
// the pipeline: margin cropping, resizing, rotation and flipping. Every
// transform that touches pixels applies the algebraically matching transform
// to the normalized box and landmark coordinates so that image and
// annotations never disagree.
package geometry

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/menta2k/landmark-pipeline/pkg/types"
)

// ErrDegenerateCrop reports a crop region that collapsed to zero width or
// height. The record decoder rejects such boxes before they reach the crop
// stage; hitting this error means an upstream validation was skipped.
var ErrDegenerateCrop = errors.New("geometry: degenerate crop region")

// Crop cuts the image down to the box plus a symmetric margin and rebases
// the landmarks into the cropped image's coordinate frame.
//
// The margin is fixed: half of the box dimension, half of which is added on
// each side, so the crop region is the box grown by 25% of its own size per
// side. The expanded region is clamped to the image bounds, then rounded to
// integer pixels; the same integer rectangle drives both the pixel crop and
// the landmark rebasing, so the two cannot drift apart.
//
// Precondition: the box must have strictly positive pixel extent after
// clamping (enforced by record.Decode).
func Crop(img *image.NRGBA, box types.Box, landmarks []types.Point) (*image.NRGBA, []types.Point, error) {
	bounds := img.Bounds()
	imageH := float64(bounds.Dy())
	imageW := float64(bounds.Dx())

	box = box.Clamp()
	ymin := box.YMin * imageH
	xmin := box.XMin * imageW
	ymax := box.YMax * imageH
	xmax := box.XMax * imageW

	h, w := ymax-ymin, xmax-xmin
	marginY, marginX := h/2, w/2

	ymin -= 0.5 * marginY
	xmin -= 0.5 * marginX
	ymax += 0.5 * marginY
	xmax += 0.5 * marginX
	if ymin < 0 {
		ymin = 0
	}
	if xmin < 0 {
		xmin = 0
	}
	if ymax > imageH {
		ymax = imageH
	}
	if xmax > imageW {
		xmax = imageW
	}

	y0, x0 := int(ymin), int(xmin)
	cropH, cropW := int(ymax-ymin), int(xmax-xmin)
	if cropH <= 0 || cropW <= 0 {
		return nil, nil, fmt.Errorf("%w: box %+v in %dx%d image", ErrDegenerateCrop, box, bounds.Dx(), bounds.Dy())
	}

	cropped := imaging.Crop(img, image.Rect(x0, y0, x0+cropW, y0+cropH))

	rebased := make([]types.Point, len(landmarks))
	for i, p := range landmarks {
		rebased[i] = types.Point{
			Y: (p.Y*imageH - float64(y0)) / float64(cropH),
			X: (p.X*imageW - float64(x0)) / float64(cropW),
		}
	}
	return cropped, rebased, nil
}

// Resize scales the image to the exact target size with a bilinear filter.
// Landmarks need no update: normalized coordinates are resize-invariant,
// only crop, rotation and flip invalidate them.
func Resize(img *image.NRGBA, width, height int) *image.NRGBA {
	return imaging.Resize(img, width, height, imaging.Linear)
}

// FlipH mirrors the image left-right and returns landmarks mirrored as
// x' = 1-x. Landmark identity order is preserved: index k still names the
// same anatomical point even though the face is now mirrored. Swapping
// symmetric pairs would need per-dataset knowledge of which indices pair up,
// so it is left to the consumer.
func FlipH(img *image.NRGBA, landmarks []types.Point) (*image.NRGBA, []types.Point) {
	flipped := imaging.FlipH(img)
	mirrored := make([]types.Point, len(landmarks))
	for i, p := range landmarks {
		mirrored[i] = types.Point{Y: p.Y, X: 1 - p.X}
	}
	return flipped, mirrored
}
