package record

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/landmark-pipeline/pkg/types"
)

// Decode turns a raw record into an Example: the image payload is decoded
// and converted to NRGBA, the box and landmarks are clamped into [0,1].
//
// Records whose clamped box collapses to zero pixel height or width are
// rejected here so the crop stage never sees a degenerate region.
func Decode(raw *Raw) (*types.Example, error) {
	img, err := decodeImageFromBytes(raw.ImageBytes)
	if err != nil {
		return nil, &DecodeError{Shard: raw.Shard, Index: raw.Index, Err: err}
	}

	box := types.Box{
		YMin: float64(raw.Box[0]),
		XMin: float64(raw.Box[1]),
		YMax: float64(raw.Box[2]),
		XMax: float64(raw.Box[3]),
	}.Clamp()

	bounds := img.Bounds()
	h, w := float64(bounds.Dy()), float64(bounds.Dx())
	if box.Height()*h < 1 || box.Width()*w < 1 {
		return nil, &DecodeError{
			Shard: raw.Shard,
			Index: raw.Index,
			Err:   fmt.Errorf("degenerate box %+v for %dx%d image", box, bounds.Dx(), bounds.Dy()),
		}
	}

	landmarks := make([]types.Point, len(raw.Landmarks)/2)
	for i := range landmarks {
		landmarks[i] = types.Point{
			Y: float64(raw.Landmarks[2*i]),
			X: float64(raw.Landmarks[2*i+1]),
		}.Clamp()
	}

	return &types.Example{
		Image:     imaging.Clone(img),
		Box:       box,
		Landmarks: landmarks,
	}, nil
}

// decodeImageFromBytes decodes an image from byte data with WebP support.
func decodeImageFromBytes(data []byte) (image.Image, error) {
	// Try standard image.Decode first
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}

	// Try WebP decode
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}

	return nil, fmt.Errorf("image: unknown or unsupported format")
}
