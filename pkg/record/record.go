// Package record implements the .lmrd shard format: sharded binary files of
// annotated face images used to feed the training pipeline. Each shard
// carries a small header followed by a contiguous run of records; a record
// holds one encoded image, a normalized bounding box and a fixed-length set
// of normalized landmark coordinates.
package record

import (
	"encoding/binary"
	"fmt"
)

// Shard file layout (all integers little-endian):
//
//	magic        [4]byte  "LMRD"
//	version      uint32
//	numLandmarks uint32
//
// followed by zero or more records:
//
//	imageLen  uint32
//	image     [imageLen]byte   encoded jpeg/png/webp
//	box       [4]float32       ymin, xmin, ymax, xmax, normalized
//	landmarks [2*N]float32     (y, x) pairs, row-major, normalized
const (
	Magic     = "LMRD"
	Version   = 1
	Extension = ".lmrd"
)

var byteOrder = binary.LittleEndian

// DecodeError reports a malformed record or shard. It identifies the shard
// and the zero-based record index at which decoding failed.
type DecodeError struct {
	Shard string
	Index int
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("record: shard %s: %v", e.Shard, e.Err)
	}
	return fmt.Sprintf("record: shard %s record %d: %v", e.Shard, e.Index, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
