package types

import "image"

// Box represents a normalized bounding box with coordinates in [0,1] range.
// Coordinates are expressed as (ymin, xmin, ymax, xmax) fractions of the
// current image's height and width.
type Box struct {
	YMin float64 `json:"ymin"`
	XMin float64 `json:"xmin"`
	YMax float64 `json:"ymax"`
	XMax float64 `json:"xmax"`
}

// Clamp limits all box coordinates to the [0,1] range.
func (b Box) Clamp() Box {
	return Box{
		YMin: clamp(b.YMin, 0, 1),
		XMin: clamp(b.XMin, 0, 1),
		YMax: clamp(b.YMax, 0, 1),
		XMax: clamp(b.XMax, 0, 1),
	}
}

// Height returns the normalized box height.
func (b Box) Height() float64 { return b.YMax - b.YMin }

// Width returns the normalized box width.
func (b Box) Width() float64 { return b.XMax - b.XMin }

// Point represents one normalized (y, x) landmark coordinate.
// The index of a point within a landmark set is its anatomical identity
// and must never be permuted by any transform.
type Point struct {
	Y float64 `json:"y"`
	X float64 `json:"x"`
}

// Clamp limits both coordinates to the [0,1] range.
func (p Point) Clamp() Point {
	return Point{Y: clamp(p.Y, 0, 1), X: clamp(p.X, 0, 1)}
}

// Example is the (image, box, landmarks) tuple flowing through one pipeline
// invocation. Box and Landmarks are always normalized against the image the
// example currently holds; any transform that changes the image extent must
// update both in the same step. Box is consumed by the crop stage, after
// which only (Image, Landmarks) matter.
type Example struct {
	Image     *image.NRGBA
	Box       Box
	Landmarks []Point
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
