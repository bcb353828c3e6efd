package pipeline

import (
	"errors"
	"fmt"

	"github.com/menta2k/landmark-pipeline/pkg/augment"
)

// Construction failure classes. Both are wrapped with detail by New, so use
// errors.Is to classify.
var (
	// ErrInvalidConfig reports unusable construction parameters.
	ErrInvalidConfig = errors.New("pipeline: invalid configuration")

	// ErrEmptyShard reports a shard that yields zero records. Silently
	// skipping such a shard would misrepresent the dataset size, so
	// construction fails before any batch is produced.
	ErrEmptyShard = errors.New("pipeline: shard contains no records")
)

// Config describes one pipeline instance. Buffer size and worker count are
// per-instance fields so several pipelines with different settings can
// share a process.
type Config struct {
	// ShardPaths lists the .lmrd shard files to read. Must be non-empty and
	// every shard must contain at least one record.
	ShardPaths []string

	BatchSize    int
	ImageWidth   int
	ImageHeight  int
	NumLandmarks int

	// Repeat loops over the dataset indefinitely. Shuffle enables both the
	// shard-order shuffle and the record-level shuffle buffer. Augment
	// switches from the deterministic crop path to the randomized
	// augmentation path.
	Repeat  bool
	Shuffle bool
	Augment bool

	// ShuffleBufferSize bounds the record-level shuffle lookahead.
	// Defaults to 10000.
	ShuffleBufferSize int

	// NumWorkers bounds the per-record decode/transform parallelism.
	// Defaults to 8.
	NumWorkers int

	// Seed drives every random decision: shard order, shuffle buffer and
	// per-example augmentation draws. Two pipelines built with equal
	// configs produce identical streams.
	Seed int64

	// Augmentation hyperparameters; the zero value means augment.Default().
	Augmentation augment.Config
}

const (
	defaultShuffleBufferSize = 10000
	defaultNumWorkers        = 8
)

// Validate checks the construction parameters.
func (c *Config) Validate() error {
	if len(c.ShardPaths) == 0 {
		return fmt.Errorf("%w: no shard paths", ErrInvalidConfig)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive, got %d", ErrInvalidConfig, c.BatchSize)
	}
	if c.ImageWidth <= 0 || c.ImageHeight <= 0 {
		return fmt.Errorf("%w: image size must be positive, got %dx%d", ErrInvalidConfig, c.ImageWidth, c.ImageHeight)
	}
	if c.NumLandmarks <= 0 {
		return fmt.Errorf("%w: landmark count must be positive, got %d", ErrInvalidConfig, c.NumLandmarks)
	}
	if c.ShuffleBufferSize < 0 {
		return fmt.Errorf("%w: shuffle buffer size must not be negative", ErrInvalidConfig)
	}
	if c.NumWorkers < 0 {
		return fmt.Errorf("%w: worker count must not be negative", ErrInvalidConfig)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.ShuffleBufferSize == 0 {
		c.ShuffleBufferSize = defaultShuffleBufferSize
	}
	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}
	if c.Augmentation == (augment.Config{}) {
		c.Augmentation = augment.Default()
	}
	return c
}
