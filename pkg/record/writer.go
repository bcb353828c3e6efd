package record

import (
	"bufio"
	"fmt"
	"math"
	"os"
)

// Writer appends records to a new shard file.
type Writer struct {
	f            *os.File
	bw           *bufio.Writer
	numLandmarks int
	count        int
}

// Create creates a shard file and writes its header. numLandmarks is fixed
// for the lifetime of the shard.
func Create(path string, numLandmarks int) (*Writer, error) {
	if numLandmarks <= 0 {
		return nil, fmt.Errorf("record: numLandmarks must be positive, got %d", numLandmarks)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("record: create shard: %w", err)
	}
	w := &Writer{f: f, bw: bufio.NewWriter(f), numLandmarks: numLandmarks}

	var hdr [12]byte
	copy(hdr[:4], Magic)
	byteOrder.PutUint32(hdr[4:8], Version)
	byteOrder.PutUint32(hdr[8:12], uint32(numLandmarks))
	if _, err := w.bw.Write(hdr[:]); err != nil {
		f.Close()
		return nil, fmt.Errorf("record: write header: %w", err)
	}
	return w, nil
}

// Append writes one record. imageBytes must be an encoded jpeg/png/webp
// payload; landmarks must hold exactly 2*numLandmarks scalars in (y, x)
// row-major order.
func (w *Writer) Append(imageBytes []byte, box [4]float32, landmarks []float32) error {
	if len(imageBytes) == 0 {
		return fmt.Errorf("record: empty image payload")
	}
	if len(landmarks) != 2*w.numLandmarks {
		return fmt.Errorf("record: got %d landmark scalars, want %d", len(landmarks), 2*w.numLandmarks)
	}

	var lenBuf [4]byte
	byteOrder.PutUint32(lenBuf[:], uint32(len(imageBytes)))
	if _, err := w.bw.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("record: write record: %w", err)
	}
	if _, err := w.bw.Write(imageBytes); err != nil {
		return fmt.Errorf("record: write record: %w", err)
	}

	scalars := make([]byte, 4*(4+len(landmarks)))
	for i, v := range box {
		byteOrder.PutUint32(scalars[4*i:], math.Float32bits(v))
	}
	for i, v := range landmarks {
		byteOrder.PutUint32(scalars[16+4*i:], math.Float32bits(v))
	}
	if _, err := w.bw.Write(scalars); err != nil {
		return fmt.Errorf("record: write record: %w", err)
	}
	w.count++
	return nil
}

// Count returns the number of records appended so far.
func (w *Writer) Count() int { return w.count }

// Close flushes and closes the shard file.
func (w *Writer) Close() error {
	if err := w.bw.Flush(); err != nil {
		w.f.Close()
		return fmt.Errorf("record: flush shard: %w", err)
	}
	return w.f.Close()
}
