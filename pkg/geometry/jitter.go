package geometry

import (
	"math"
	"math/rand"

	"github.com/menta2k/landmark-pipeline/pkg/types"
)

// JitterBox randomly perturbs each box edge by up to ratio times the box's
// corresponding dimension, then grows the result just enough to keep every
// landmark inside it. Only the box moves; image and landmarks are untouched,
// so this composes with Crop to randomize the crop window.
func JitterBox(box types.Box, landmarks []types.Point, ratio float64, rng *rand.Rand) types.Box {
	h, w := box.Height(), box.Width()
	jitter := func(dim float64) float64 {
		return (2*rng.Float64() - 1) * ratio * dim
	}

	out := types.Box{
		YMin: box.YMin + jitter(h),
		XMin: box.XMin + jitter(w),
		YMax: box.YMax + jitter(h),
		XMax: box.XMax + jitter(w),
	}

	for _, p := range landmarks {
		out.YMin = math.Min(out.YMin, p.Y)
		out.XMin = math.Min(out.XMin, p.X)
		out.YMax = math.Max(out.YMax, p.Y)
		out.XMax = math.Max(out.XMax, p.X)
	}
	return out.Clamp()
}
