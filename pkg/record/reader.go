package record

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// maxImageBytes caps a single record's image payload. Anything larger is
// treated as a corrupt length prefix rather than a legitimate image.
const maxImageBytes = 64 << 20

// Raw is one undecoded record as stored in a shard.
type Raw struct {
	Shard      string
	Index      int
	ImageBytes []byte
	Box        [4]float32
	Landmarks  []float32
}

// Reader iterates over the records of a single shard file.
type Reader struct {
	f            *os.File
	br           *bufio.Reader
	shard        string
	numLandmarks int
	index        int
}

// Open opens a shard and validates its header. numLandmarks must match the
// landmark count the shard was written with.
func Open(path string, numLandmarks int) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("record: open shard: %w", err)
	}
	r := &Reader{
		f:            f,
		br:           bufio.NewReader(f),
		shard:        path,
		numLandmarks: numLandmarks,
	}
	if err := r.readHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) readHeader() error {
	var hdr [12]byte
	if _, err := io.ReadFull(r.br, hdr[:]); err != nil {
		return &DecodeError{Shard: r.shard, Index: -1, Err: fmt.Errorf("short header: %w", err)}
	}
	if string(hdr[:4]) != Magic {
		return &DecodeError{Shard: r.shard, Index: -1, Err: errors.New("bad magic")}
	}
	if v := byteOrder.Uint32(hdr[4:8]); v != Version {
		return &DecodeError{Shard: r.shard, Index: -1, Err: fmt.Errorf("unsupported version %d", v)}
	}
	if n := int(byteOrder.Uint32(hdr[8:12])); n != r.numLandmarks {
		return &DecodeError{
			Shard: r.shard,
			Index: -1,
			Err:   fmt.Errorf("shard has %d landmarks per record, pipeline expects %d", n, r.numLandmarks),
		}
	}
	return nil
}

// Next reads the next raw record. It returns io.EOF exactly at the end of
// the shard; a record cut short mid-way is a DecodeError.
func (r *Reader) Next() (*Raw, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r.br, lenBuf[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, r.corrupt(fmt.Errorf("short image length: %w", err))
	}
	imgLen := byteOrder.Uint32(lenBuf[:])
	if imgLen == 0 || imgLen > maxImageBytes {
		return nil, r.corrupt(fmt.Errorf("implausible image length %d", imgLen))
	}

	raw := &Raw{
		Shard:      r.shard,
		Index:      r.index,
		ImageBytes: make([]byte, imgLen),
		Landmarks:  make([]float32, 2*r.numLandmarks),
	}
	if _, err := io.ReadFull(r.br, raw.ImageBytes); err != nil {
		return nil, r.corrupt(fmt.Errorf("short image payload: %w", err))
	}

	scalars := make([]byte, 4*(4+2*r.numLandmarks))
	if _, err := io.ReadFull(r.br, scalars); err != nil {
		return nil, r.corrupt(fmt.Errorf("short annotation block: %w", err))
	}
	for i := 0; i < 4; i++ {
		raw.Box[i] = float32FromBytes(scalars[4*i:])
	}
	for i := range raw.Landmarks {
		raw.Landmarks[i] = float32FromBytes(scalars[16+4*i:])
	}
	r.index++
	return raw, nil
}

func (r *Reader) corrupt(err error) error {
	return &DecodeError{Shard: r.shard, Index: r.index, Err: err}
}

// Close releases the underlying file.
func (r *Reader) Close() error { return r.f.Close() }

// Count returns the number of records in a shard, skipping image payloads
// instead of reading them.
func Count(path string, numLandmarks int) (int, error) {
	r, err := Open(path, numLandmarks)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	annotationLen := int64(4 * (4 + 2*numLandmarks))
	n := 0
	for {
		var lenBuf [4]byte
		if _, err := io.ReadFull(r.br, lenBuf[:]); err != nil {
			if err == io.EOF {
				return n, nil
			}
			return 0, r.corrupt(fmt.Errorf("short image length: %w", err))
		}
		imgLen := byteOrder.Uint32(lenBuf[:])
		if imgLen == 0 || imgLen > maxImageBytes {
			return 0, r.corrupt(fmt.Errorf("implausible image length %d", imgLen))
		}
		if _, err := r.br.Discard(int(imgLen) + int(annotationLen)); err != nil {
			return 0, r.corrupt(fmt.Errorf("truncated record: %w", err))
		}
		r.index++
		n++
	}
}

func float32FromBytes(b []byte) float32 {
	return math.Float32frombits(byteOrder.Uint32(b))
}
