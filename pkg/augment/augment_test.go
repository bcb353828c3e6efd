package augment

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/menta2k/landmark-pipeline/pkg/types"
)

func createTestExample(width, height int) *types.Example {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{uint8(x * 2), uint8(y * 2), 128, 255})
		}
	}
	return &types.Example{
		Image: img,
		Box:   types.Box{YMin: 0.25, XMin: 0.25, YMax: 0.75, XMax: 0.75},
		Landmarks: []types.Point{
			{Y: 0.4, X: 0.4},
			{Y: 0.4, X: 0.6},
			{Y: 0.6, X: 0.5},
		},
	}
}

// quiet returns a config with every random stage disabled.
func quiet() Config {
	return Config{PixelScaleMin: 1, PixelScaleMax: 1}
}

func TestApplyResizesToTarget(t *testing.T) {
	a := New(48, 32, quiet())
	ex := createTestExample(120, 90)

	if err := a.Apply(ex, rand.New(rand.NewSource(1))); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if ex.Image.Bounds().Dx() != 48 || ex.Image.Bounds().Dy() != 32 {
		t.Errorf("Expected 48x32 output, got %dx%d", ex.Image.Bounds().Dx(), ex.Image.Bounds().Dy())
	}
}

func TestApplyAllStagesDisabledKeepsLandmarks(t *testing.T) {
	a := New(64, 64, quiet())
	ex := createTestExample(64, 64)
	before := append([]types.Point(nil), ex.Landmarks...)

	if err := a.Apply(ex, rand.New(rand.NewSource(7))); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	// With zero max rotation and every gate closed the geometric path is a
	// no-op on coordinates.
	for i := range before {
		if diff := before[i].Y - ex.Landmarks[i].Y; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("Landmark %d y moved: %f -> %f", i, before[i].Y, ex.Landmarks[i].Y)
		}
		if diff := before[i].X - ex.Landmarks[i].X; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("Landmark %d x moved: %f -> %f", i, before[i].X, ex.Landmarks[i].X)
		}
	}
}

func TestApplyForcedFlip(t *testing.T) {
	cfg := quiet()
	cfg.FlipProbability = 1
	a := New(64, 64, cfg)
	ex := createTestExample(64, 64)
	before := append([]types.Point(nil), ex.Landmarks...)

	if err := a.Apply(ex, rand.New(rand.NewSource(3))); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	for i := range before {
		want := 1 - before[i].X
		if diff := want - ex.Landmarks[i].X; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("Landmark %d not mirrored: want x=%f, got %f", i, want, ex.Landmarks[i].X)
		}
	}
}

func TestApplyDeterministicForEqualSeeds(t *testing.T) {
	cfg := Default()
	a := New(32, 32, cfg)

	ex1 := createTestExample(100, 100)
	ex2 := createTestExample(100, 100)

	if err := a.Apply(ex1, rand.New(rand.NewSource(99))); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if err := a.Apply(ex2, rand.New(rand.NewSource(99))); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if diff := cmp.Diff(ex1.Image.Pix, ex2.Image.Pix); diff != "" {
		t.Errorf("Equal seeds produced different pixels (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(ex1.Landmarks, ex2.Landmarks); diff != "" {
		t.Errorf("Equal seeds produced different landmarks (-first +second):\n%s", diff)
	}
}

func TestScalePixelsClips(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{200, 200, 200, 255})
	img.Set(1, 0, color.NRGBA{10, 10, 10, 255})

	scalePixels(img, 1.5)

	if img.Pix[0] != 255 {
		t.Errorf("Expected channel clipped to 255, got %d", img.Pix[0])
	}
	if img.Pix[4] != 15 {
		t.Errorf("Expected 10*1.5=15, got %d", img.Pix[4])
	}
	if img.Pix[3] != 255 {
		t.Errorf("Alpha must stay untouched, got %d", img.Pix[3])
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.MaxRotation != 30 {
		t.Errorf("Expected max rotation 30, got %f", cfg.MaxRotation)
	}
	if cfg.FlipProbability != 0.5 {
		t.Errorf("Expected flip probability 0.5, got %f", cfg.FlipProbability)
	}
	if cfg.BoxJitterProbability != 0 {
		t.Errorf("Box jitter must default to disabled, got %f", cfg.BoxJitterProbability)
	}
}
