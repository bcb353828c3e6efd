package types

import (
	"image"
	"image/color"
	"testing"
)

func TestBoxClamp(t *testing.T) {
	box := Box{YMin: -0.5, XMin: 0.2, YMax: 1.7, XMax: 0.9}
	clamped := box.Clamp()

	if clamped.YMin != 0 {
		t.Errorf("Expected YMin 0, got %f", clamped.YMin)
	}
	if clamped.YMax != 1 {
		t.Errorf("Expected YMax 1, got %f", clamped.YMax)
	}
	if clamped.XMin != 0.2 || clamped.XMax != 0.9 {
		t.Errorf("In-range coordinates must not move: %+v", clamped)
	}
}

func TestBoxDimensions(t *testing.T) {
	box := Box{YMin: 0.2, XMin: 0.1, YMax: 0.7, XMax: 0.4}
	if h := box.Height(); h < 0.499 || h > 0.501 {
		t.Errorf("Expected height 0.5, got %f", h)
	}
	if w := box.Width(); w < 0.299 || w > 0.301 {
		t.Errorf("Expected width 0.3, got %f", w)
	}
}

func TestPointClamp(t *testing.T) {
	p := Point{Y: 1.2, X: -0.1}.Clamp()
	if p.Y != 1 || p.X != 0 {
		t.Errorf("Expected (1, 0), got %+v", p)
	}
}

func TestBatchShapes(t *testing.T) {
	b := NewBatch(4, 32, 48, 5)

	if b.ImageShape() != [4]int{4, 3, 32, 48} {
		t.Errorf("Unexpected image shape %v", b.ImageShape())
	}
	if b.LandmarkShape() != [3]int{4, 5, 2} {
		t.Errorf("Unexpected landmark shape %v", b.LandmarkShape())
	}
	if len(b.Images) != 4*3*32*48 {
		t.Errorf("Unexpected image buffer length %d", len(b.Images))
	}
	if len(b.Landmarks) != 4*5*2 {
		t.Errorf("Unexpected landmark buffer length %d", len(b.Landmarks))
	}
}

func TestBatchImagePackUnpack(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.NRGBA{uint8(x * 30), uint8(y * 40), 77, 255})
		}
	}

	b := NewBatch(2, 6, 8, 1)
	b.SetImage(1, img)

	// Channel-first packing in [0,1].
	plane := 6 * 8
	base := 1 * 3 * plane
	got := b.Images[base+2*8+3] // red channel, y=2, x=3
	want := float32(3*30) / 255
	if got != want {
		t.Errorf("Expected packed red value %f, got %f", want, got)
	}

	back := b.ImageAt(1)
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			w := img.NRGBAAt(x, y)
			g := back.NRGBAAt(x, y)
			if w.R != g.R || w.G != g.G || w.B != g.B {
				t.Fatalf("Pixel (%d,%d) mismatch: want %v, got %v", x, y, w, g)
			}
		}
	}

	// Slot 0 untouched.
	if b.Images[0] != 0 {
		t.Errorf("Slot 0 should be zero, got %f", b.Images[0])
	}
}

func TestBatchLandmarkRoundTrip(t *testing.T) {
	b := NewBatch(2, 4, 4, 3)
	in := []Point{{Y: 0.1, X: 0.9}, {Y: 0.5, X: 0.5}, {Y: 0.25, X: 0.75}}
	b.SetLandmarks(0, in)

	out := b.LandmarksAt(0)
	if len(out) != 3 {
		t.Fatalf("Expected 3 landmarks, got %d", len(out))
	}
	for i := range in {
		if dy := out[i].Y - in[i].Y; dy > 1e-6 || dy < -1e-6 {
			t.Errorf("Landmark %d y mismatch: %f vs %f", i, in[i].Y, out[i].Y)
		}
		if dx := out[i].X - in[i].X; dx > 1e-6 || dx < -1e-6 {
			t.Errorf("Landmark %d x mismatch: %f vs %f", i, in[i].X, out[i].X)
		}
	}
}
