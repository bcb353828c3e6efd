// Package preview renders human-inspectable images of pipeline output:
// batch slots with their landmark annotations drawn on top. Meant for
// debugging shard contents and augmentation settings, not for training.
package preview

import (
	"image"
	"image/color"
	"math"
	"os"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/menta2k/landmark-pipeline/pkg/types"
)

// RenderBatchSlot unpacks slot i of a batch and draws its landmarks as red
// crosshairs with an image-center marker in blue.
func RenderBatchSlot(b *types.Batch, i int) *image.NRGBA {
	img := b.ImageAt(i)
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	red := color.NRGBA{255, 0, 0, 255}
	blue := color.NRGBA{0, 170, 255, 255}
	cross := int(math.Max(2, 0.02*float64(minInt(w, h))))

	for _, p := range b.LandmarksAt(i) {
		px := int(clamp(p.X, 0, 1)*float64(w) + 0.5)
		py := int(clamp(p.Y, 0, 1)*float64(h) + 0.5)
		drawHLine(img, py, px-cross, px+cross, red)
		drawVLine(img, px, py-cross, py+cross, red)
	}

	ix, iy := w/2, h/2
	drawHLine(img, iy, ix-3, ix+3, blue)
	drawVLine(img, ix, iy-3, iy+3, blue)

	return img
}

// DrawBox outlines a normalized box on the image in green.
func DrawBox(img *image.NRGBA, box types.Box, stroke int) {
	green := color.NRGBA{0, 255, 0, 255}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	x0, y0, x1, y1 := boxToPixels(box, w, h)
	for s := 0; s < stroke; s++ {
		drawHLine(img, y0+s, x0, x1, green)
		drawHLine(img, y1-1-s, x0, x1, green)
		drawVLine(img, x0+s, y0, y1, green)
		drawVLine(img, x1-1-s, y0, y1, green)
	}
}

// SaveImage saves an image to a file with the specified format and quality
func SaveImage(img image.Image, path, format string, quality int, lossless bool) error {
	switch strings.ToLower(format) {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		opts := &webp.Options{Lossless: lossless, Quality: float32(quality)}
		return webp.Encode(f, img, opts)
	case "png":
		return imaging.Save(img, path)
	default: // jpg/jpeg
		return imaging.Save(img, path, imaging.JPEGQuality(quality))
	}
}

// Helper functions
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func boxToPixels(box types.Box, w, h int) (int, int, int, int) {
	x0 := int(clamp(box.XMin, 0, 1)*float64(w) + 0.5)
	y0 := int(clamp(box.YMin, 0, 1)*float64(h) + 0.5)
	x1 := int(clamp(box.XMax, 0, 1)*float64(w) + 0.5)
	y1 := int(clamp(box.YMax, 0, 1)*float64(h) + 0.5)
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	return x0, y0, x1, y1
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}
