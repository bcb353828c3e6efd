// Package augment composes the randomized transforms applied to training
// examples. Transforms run in a fixed order and each photometric or flip
// stage sits behind an independent Bernoulli gate drawn from the example's
// own random source, so a pipeline seeded the same way produces the same
// augmented stream.
package augment

import (
	"image"
	"math/rand"

	"github.com/disintegration/imaging"

	"github.com/menta2k/landmark-pipeline/pkg/geometry"
	"github.com/menta2k/landmark-pipeline/pkg/types"
)

// Config holds the augmentation hyperparameters. Zero probability disables
// the corresponding stage.
type Config struct {
	MaxRotation float64 `json:"max_rotation"` // degrees, drawn uniformly from [-max, +max]

	ColorProbability     float64 `json:"color_probability"`
	GrayscaleProbability float64 `json:"grayscale_probability"`

	PixelScaleMin         float64 `json:"pixel_scale_min"`
	PixelScaleMax         float64 `json:"pixel_scale_max"`
	PixelScaleProbability float64 `json:"pixel_scale_probability"`

	BlurSigma       float64 `json:"blur_sigma"`
	BlurProbability float64 `json:"blur_probability"`

	FlipProbability float64 `json:"flip_probability"`

	// Box jitter re-enables the box-based crop inside the augmented path:
	// when its gate fires, the box is jittered and the example is cropped to
	// it before resizing. The default probability of zero keeps the
	// rotate-then-direct-resize behavior, where the box is ignored after
	// rotation.
	BoxJitterRatio       float64 `json:"box_jitter_ratio"`
	BoxJitterProbability float64 `json:"box_jitter_probability"`
}

// Default returns the stock augmentation settings.
func Default() Config {
	return Config{
		MaxRotation:           30,
		ColorProbability:      0.15,
		GrayscaleProbability:  0.05,
		PixelScaleMin:         0.85,
		PixelScaleMax:         1.15,
		PixelScaleProbability: 0.15,
		BlurSigma:             1.5,
		BlurProbability:       0.3,
		FlipProbability:       0.5,
		BoxJitterRatio:        0.05,
		BoxJitterProbability:  0,
	}
}

// Augmenter applies the configured transform sequence to examples, producing
// images of a fixed target size.
type Augmenter struct {
	cfg    Config
	width  int
	height int
}

// New creates an Augmenter emitting width x height images.
func New(width, height int, cfg Config) *Augmenter {
	return &Augmenter{cfg: cfg, width: width, height: height}
}

// Apply runs the augmentation sequence on ex in place, using rng for every
// random draw. The order is fixed: rotation, optional box-jitter crop,
// resize, color, pixel scale, blur, flip.
func (a *Augmenter) Apply(ex *types.Example, rng *rand.Rand) error {
	angle := (2*rng.Float64() - 1) * a.cfg.MaxRotation
	ex.Image, ex.Box, ex.Landmarks = geometry.Rotate(ex.Image, ex.Box, ex.Landmarks, angle)

	if gate(rng, a.cfg.BoxJitterProbability) {
		ex.Box = geometry.JitterBox(ex.Box, ex.Landmarks, a.cfg.BoxJitterRatio, rng)
		img, landmarks, err := geometry.Crop(ex.Image, ex.Box, ex.Landmarks)
		if err != nil {
			return err
		}
		ex.Image, ex.Landmarks = img, landmarks
	}

	ex.Image = geometry.Resize(ex.Image, a.width, a.height)

	if gate(rng, a.cfg.ColorProbability) {
		ex.Image = randomColor(ex.Image, a.cfg.GrayscaleProbability, rng)
	}
	if gate(rng, a.cfg.PixelScaleProbability) {
		factor := a.cfg.PixelScaleMin + rng.Float64()*(a.cfg.PixelScaleMax-a.cfg.PixelScaleMin)
		scalePixels(ex.Image, factor)
	}
	if gate(rng, a.cfg.BlurProbability) {
		ex.Image = imaging.Blur(ex.Image, a.cfg.BlurSigma)
	}
	if gate(rng, a.cfg.FlipProbability) {
		ex.Image, ex.Landmarks = geometry.FlipH(ex.Image, ex.Landmarks)
	}
	return nil
}

// randomColor jitters brightness, contrast and saturation, each by a small
// random amount, occasionally dropping to grayscale.
func randomColor(img *image.NRGBA, grayscaleProbability float64, rng *rand.Rand) *image.NRGBA {
	img = imaging.AdjustBrightness(img, (2*rng.Float64()-1)*10)
	img = imaging.AdjustContrast(img, (2*rng.Float64()-1)*10)
	img = imaging.AdjustSaturation(img, (2*rng.Float64()-1)*30)
	if gate(rng, grayscaleProbability) {
		img = imaging.Grayscale(img)
	}
	return img
}

// scalePixels multiplies every color channel by factor, clipping back into
// the valid range. Alpha is untouched.
func scalePixels(img *image.NRGBA, factor float64) {
	for i := 0; i < len(img.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := float64(img.Pix[i+c]) * factor
			if v > 255 {
				v = 255
			}
			img.Pix[i+c] = uint8(v + 0.5)
		}
	}
}

func gate(rng *rand.Rand, probability float64) bool {
	return probability > 0 && rng.Float64() < probability
}
