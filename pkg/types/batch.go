package types

import "image"

// Batch is a fixed-size collection of processed examples. Images are packed
// channel-first as float32 values in [0,1] with shape
// [Size, 3, Height, Width]; landmarks have shape [Size, NumLandmarks, 2]
// with each pair stored (y, x).
type Batch struct {
	Images    []float32
	Landmarks []float32

	Size         int
	Height       int
	Width        int
	NumLandmarks int
}

// NewBatch allocates an empty batch with the given dimensions.
func NewBatch(size, height, width, numLandmarks int) *Batch {
	return &Batch{
		Images:       make([]float32, size*3*height*width),
		Landmarks:    make([]float32, size*numLandmarks*2),
		Size:         size,
		Height:       height,
		Width:        width,
		NumLandmarks: numLandmarks,
	}
}

// ImageShape returns the image tensor shape [size, channels, height, width].
func (b *Batch) ImageShape() [4]int {
	return [4]int{b.Size, 3, b.Height, b.Width}
}

// LandmarkShape returns the landmark tensor shape [size, numLandmarks, 2].
func (b *Batch) LandmarkShape() [3]int {
	return [3]int{b.Size, b.NumLandmarks, 2}
}

// SetImage packs an NRGBA image into slot i, converting 8-bit channel values
// to [0,1] floats in channel-first order. The image must match the batch's
// height and width.
func (b *Batch) SetImage(i int, img *image.NRGBA) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	plane := b.Height * b.Width
	base := i * 3 * plane
	for y := 0; y < h && y < b.Height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w && x < b.Width; x++ {
			pos := y*b.Width + x
			b.Images[base+pos] = float32(row[x*4+0]) / 255
			b.Images[base+plane+pos] = float32(row[x*4+1]) / 255
			b.Images[base+2*plane+pos] = float32(row[x*4+2]) / 255
		}
	}
}

// SetLandmarks stores a landmark set into slot i.
func (b *Batch) SetLandmarks(i int, landmarks []Point) {
	base := i * b.NumLandmarks * 2
	for k, p := range landmarks {
		b.Landmarks[base+2*k] = float32(p.Y)
		b.Landmarks[base+2*k+1] = float32(p.X)
	}
}

// ImageAt unpacks slot i back into an NRGBA image with full alpha.
// Useful for previewing and debugging batch contents.
func (b *Batch) ImageAt(i int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	plane := b.Height * b.Width
	base := i * 3 * plane
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			pos := y*b.Width + x
			off := y*img.Stride + x*4
			img.Pix[off+0] = floatToByte(b.Images[base+pos])
			img.Pix[off+1] = floatToByte(b.Images[base+plane+pos])
			img.Pix[off+2] = floatToByte(b.Images[base+2*plane+pos])
			img.Pix[off+3] = 0xff
		}
	}
	return img
}

// LandmarksAt returns the landmark set stored in slot i.
func (b *Batch) LandmarksAt(i int) []Point {
	base := i * b.NumLandmarks * 2
	out := make([]Point, b.NumLandmarks)
	for k := range out {
		out[k] = Point{
			Y: float64(b.Landmarks[base+2*k]),
			X: float64(b.Landmarks[base+2*k+1]),
		}
	}
	return out
}

func floatToByte(v float32) uint8 {
	s := v*255 + 0.5
	if s < 0 {
		return 0
	}
	if s > 255 {
		return 255
	}
	return uint8(s)
}
