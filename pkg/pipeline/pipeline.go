// Package pipeline assembles training batches from sharded landmark
// records. It drives the decode and transform stages over a stream of
// shards with optional two-level shuffling (shard order, then a bounded
// record buffer), optional indefinite repetition, bounded decode
// parallelism, and a single batch of prefetch.
package pipeline

import (
	"fmt"
	"io"
	"math/rand"
	"sync"

	"github.com/menta2k/landmark-pipeline/pkg/augment"
	"github.com/menta2k/landmark-pipeline/pkg/geometry"
	"github.com/menta2k/landmark-pipeline/pkg/record"
	"github.com/menta2k/landmark-pipeline/pkg/types"
)

// Pipeline yields fixed-size batches of (image, landmarks) tensors. A
// pipeline cannot be restarted; build a new one to re-read the dataset.
type Pipeline struct {
	cfg         Config
	augmenter   *augment.Augmenter
	numExamples int

	batches chan result
	done    chan struct{}
	once    sync.Once
}

type result struct {
	batch *types.Batch
	err   error
}

// item is one raw record with its global sequence number, which seeds the
// per-example random source.
type item struct {
	raw *record.Raw
	seq int64
}

// New validates the configuration, counts every shard's records up front,
// and starts the producer. Counting fails fast: a missing or empty shard is
// reported here, never mid-stream.
func New(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	numExamples := 0
	for _, path := range cfg.ShardPaths {
		n, err := record.Count(path, cfg.NumLandmarks)
		if err != nil {
			return nil, fmt.Errorf("pipeline: counting %s: %w", path, err)
		}
		if n == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyShard, path)
		}
		numExamples += n
	}

	p := &Pipeline{
		cfg:         cfg,
		numExamples: numExamples,
		batches:     make(chan result, 1),
		done:        make(chan struct{}),
	}
	if cfg.Augment {
		p.augmenter = augment.New(cfg.ImageWidth, cfg.ImageHeight, cfg.Augmentation)
	}
	go p.run()
	return p, nil
}

// NumExamples returns the total record count across all shards.
func (p *Pipeline) NumExamples() int { return p.numExamples }

// Next blocks for the next batch. It returns io.EOF once a non-repeating
// stream is exhausted (after exactly numExamples/batchSize full batches per
// epoch; the remainder is dropped). A record-level failure terminates the
// stream with the decode error.
func (p *Pipeline) Next() (*types.Batch, error) {
	res, ok := <-p.batches
	if !ok {
		return nil, io.EOF
	}
	if res.err != nil {
		return nil, res.err
	}
	return res.batch, nil
}

// Close stops the producer. Pending Next calls return io.EOF.
func (p *Pipeline) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}

// run is the producer: it owns the shuffle state and is the only goroutine
// mutating it. Completed batches go out through a channel with capacity
// one, which is the depth-1 prefetch: the next batch is assembled while the
// consumer still works on the current one.
func (p *Pipeline) run() {
	defer close(p.batches)

	rng := rand.New(rand.NewSource(p.cfg.Seed))
	pending := make([]item, 0, p.cfg.BatchSize)
	var seq int64

	emit := func(raw *record.Raw) bool {
		select {
		case <-p.done:
			return false
		default:
		}
		pending = append(pending, item{raw: raw, seq: seq})
		seq++
		if len(pending) < p.cfg.BatchSize {
			return true
		}
		batch, err := p.assemble(pending)
		pending = pending[:0]
		select {
		case p.batches <- result{batch: batch, err: err}:
			return err == nil
		case <-p.done:
			return false
		}
	}

	for {
		if !p.runEpoch(rng, emit) {
			return
		}
		if !p.cfg.Repeat {
			// Non-repeating streams drop the remainder that cannot fill a
			// batch and signal exhaustion by closing.
			return
		}
	}
}

// runEpoch streams every shard once, pushing records through the bounded
// shuffle buffer into emit. It returns false when the pipeline should stop.
func (p *Pipeline) runEpoch(rng *rand.Rand, emit func(*record.Raw) bool) bool {
	order := make([]int, len(p.cfg.ShardPaths))
	for i := range order {
		order[i] = i
	}
	if p.cfg.Shuffle {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	var buffer []*record.Raw
	if p.cfg.Shuffle {
		buffer = make([]*record.Raw, 0, p.cfg.ShuffleBufferSize)
	}

	// push routes a record through the shuffle buffer when shuffling;
	// otherwise it goes straight to emit.
	push := func(raw *record.Raw) bool {
		if !p.cfg.Shuffle || p.cfg.ShuffleBufferSize == 0 {
			return emit(raw)
		}
		if len(buffer) < p.cfg.ShuffleBufferSize {
			buffer = append(buffer, raw)
			return true
		}
		j := rng.Intn(len(buffer))
		out := buffer[j]
		buffer[j] = raw
		return emit(out)
	}

	for _, idx := range order {
		select {
		case <-p.done:
			return false
		default:
		}
		if !p.streamShard(p.cfg.ShardPaths[idx], push) {
			return false
		}
	}

	// Drain the shuffle buffer in random order at the end of the epoch.
	if len(buffer) > 0 {
		rng.Shuffle(len(buffer), func(i, j int) { buffer[i], buffer[j] = buffer[j], buffer[i] })
		for _, raw := range buffer {
			if !emit(raw) {
				return false
			}
		}
	}
	return true
}

func (p *Pipeline) streamShard(path string, push func(*record.Raw) bool) bool {
	r, err := record.Open(path, p.cfg.NumLandmarks)
	if err != nil {
		p.fail(err)
		return false
	}
	defer r.Close()

	for {
		raw, err := r.Next()
		if err == io.EOF {
			return true
		}
		if err != nil {
			p.fail(err)
			return false
		}
		if !push(raw) {
			return false
		}
	}
}

func (p *Pipeline) fail(err error) {
	select {
	case p.batches <- result{err: err}:
	case <-p.done:
	}
}

// assemble decodes and transforms one batch worth of records across the
// worker pool. Each example is handled start to finish by one worker and
// lands in its own slot, so batch order matches stream order without any
// cross-worker coordination.
func (p *Pipeline) assemble(items []item) (*types.Batch, error) {
	batch := types.NewBatch(len(items), p.cfg.ImageHeight, p.cfg.ImageWidth, p.cfg.NumLandmarks)

	workers := p.cfg.NumWorkers
	if workers > len(items) {
		workers = len(items)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	next := make(chan int)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				if err := p.prepare(batch, i, items[i]); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
				}
			}
		}()
	}
	for i := range items {
		next <- i
	}
	close(next)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return batch, nil
}

// prepare runs the full per-example path: decode, geometric transform
// (cropped or augmented), and packing into the batch slot.
func (p *Pipeline) prepare(batch *types.Batch, slot int, it item) error {
	ex, err := record.Decode(it.raw)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(p.cfg.Seed + it.seq))
	if p.augmenter != nil {
		if err := p.augmenter.Apply(ex, rng); err != nil {
			return fmt.Errorf("pipeline: augmenting shard %s record %d: %w", it.raw.Shard, it.raw.Index, err)
		}
	} else {
		img, landmarks, err := geometry.Crop(ex.Image, ex.Box, ex.Landmarks)
		if err != nil {
			return fmt.Errorf("pipeline: cropping shard %s record %d: %w", it.raw.Shard, it.raw.Index, err)
		}
		ex.Image = geometry.Resize(img, p.cfg.ImageWidth, p.cfg.ImageHeight)
		ex.Landmarks = landmarks
	}

	batch.SetImage(slot, ex.Image)
	batch.SetLandmarks(slot, ex.Landmarks)
	return nil
}
