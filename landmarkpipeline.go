// Package landmarkpipeline provides a training-time input pipeline for
// facial-landmark regression models.
//
// The pipeline reads sharded binary records of face images with bounding
// boxes and landmark annotations, applies geometric cropping/rescaling and
// optional randomized augmentation, and emits fixed-size batches of
// (image, landmark) tensors ready for model consumption.
//
// Basic usage:
//
//	package main
//
//	import (
//		"io"
//		"log"
//
//		landmarkpipeline "github.com/menta2k/landmark-pipeline"
//		"github.com/menta2k/landmark-pipeline/pkg/pipeline"
//	)
//
//	func main() {
//		p, err := landmarkpipeline.Open(pipeline.Config{
//			ShardPaths:   []string{"train-0.lmrd", "train-1.lmrd"},
//			BatchSize:    32,
//			ImageWidth:   64,
//			ImageHeight:  64,
//			NumLandmarks: 5,
//			Shuffle:      true,
//			Augment:      true,
//		})
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer p.Close()
//
//		for {
//			batch, err := p.Next()
//			if err == io.EOF {
//				break
//			}
//			if err != nil {
//				log.Fatal(err)
//			}
//			// batch.Images is [32, 3, 64, 64], batch.Landmarks is [32, 5, 2]
//			_ = batch
//		}
//	}
//
// The package consists of four main components:
//
// 1. Record (pkg/record): the .lmrd shard format, its reader/writer and the
// per-record decoder.
//
// 2. Geometry (pkg/geometry): margin cropping, resizing, rotation and
// flipping with matching landmark coordinate updates.
//
// 3. Augment (pkg/augment): the fixed-order randomized transform sequence
// applied per example.
//
// 4. Pipeline (pkg/pipeline): shard streaming, two-level shuffling, the
// decode/transform worker pool, batching and prefetch.
//
// All coordinates are normalized to [0,1] relative to the image currently
// held by an example; every transform that changes the image extent updates
// the coordinates in the same step.
package landmarkpipeline

import (
	"github.com/menta2k/landmark-pipeline/pkg/pipeline"
	"github.com/menta2k/landmark-pipeline/pkg/types"
)

// Version of the landmark pipeline library
const Version = "1.0.0"

// Config is the pipeline construction configuration.
type Config = pipeline.Config

// Batch is one fixed-size batch of packed (image, landmark) tensors.
type Batch = types.Batch

// Open validates the configuration and starts a pipeline over the given
// shards. The returned pipeline yields batches via Next until io.EOF.
func Open(cfg Config) (*pipeline.Pipeline, error) {
	return pipeline.New(cfg)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
