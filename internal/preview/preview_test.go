package preview

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/menta2k/landmark-pipeline/pkg/types"
)

func makeBatch(t *testing.T) *types.Batch {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.NRGBA{40, 40, 40, 255})
		}
	}
	b := types.NewBatch(1, 32, 32, 2)
	b.SetImage(0, img)
	b.SetLandmarks(0, []types.Point{{Y: 0.25, X: 0.25}, {Y: 0.75, X: 0.75}})
	return b
}

func TestRenderBatchSlotMarksLandmarks(t *testing.T) {
	b := makeBatch(t)
	out := RenderBatchSlot(b, 0)

	if out.Bounds().Dx() != 32 || out.Bounds().Dy() != 32 {
		t.Fatalf("Unexpected render size %v", out.Bounds())
	}

	// The crosshair center at (8, 8) must be pure red on the gray field.
	c := out.NRGBAAt(8, 8)
	if c.R != 255 || c.G != 0 || c.B != 0 {
		t.Errorf("Expected red crosshair at landmark, got %v", c)
	}
	// A pixel far from any marker keeps its original value.
	c = out.NRGBAAt(2, 28)
	if c.R != 40 || c.G != 40 || c.B != 40 {
		t.Errorf("Expected untouched background pixel, got %v", c)
	}
}

func TestDrawBoxOutline(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	DrawBox(img, types.Box{YMin: 0.25, XMin: 0.25, YMax: 0.75, XMax: 0.75}, 1)

	edge := img.NRGBAAt(20, 10)
	if edge.G != 255 {
		t.Errorf("Expected green top edge, got %v", edge)
	}
	inside := img.NRGBAAt(20, 20)
	if inside.G != 0 {
		t.Errorf("Expected untouched interior, got %v", inside)
	}
}

func TestSaveImageFormats(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	dir := t.TempDir()

	for _, tc := range []struct {
		name   string
		format string
	}{
		{"out.png", "png"},
		{"out.jpg", "jpg"},
		{"out.webp", "webp"},
	} {
		path := filepath.Join(dir, tc.name)
		if err := SaveImage(img, path, tc.format, 90, false); err != nil {
			t.Errorf("SaveImage %s failed: %v", tc.format, err)
			continue
		}
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			t.Errorf("Expected non-empty %s output", tc.format)
		}
	}
}
