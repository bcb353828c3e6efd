package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/menta2k/landmark-pipeline/internal/config"
	"github.com/menta2k/landmark-pipeline/internal/preview"
	"github.com/menta2k/landmark-pipeline/internal/utils"
	"github.com/menta2k/landmark-pipeline/pkg/pipeline"
	"github.com/menta2k/landmark-pipeline/pkg/record"
	"github.com/menta2k/landmark-pipeline/pkg/types"
)

// annotation is one entry of the -annotations JSON file used by -build:
// an image path with its normalized box and landmark coordinates.
type annotation struct {
	Image     string     `json:"image"`
	Box       [4]float32 `json:"box"`       // ymin, xmin, ymax, xmax
	Landmarks []float32  `json:"landmarks"` // y/x pairs, row-major
}

func main() {
	var cfgPath string
	var shardDir string
	var batchSize, width, height, landmarks int
	var repeat, shuffle, augment bool
	var seed int64
	var workers, bufferSize int
	var steps int
	var dumpDir string

	var buildSrc, buildAnnotations, buildOut string
	var shardSize int

	flag.StringVar(&cfgPath, "config", "", "JSON config file (flags override)")
	flag.StringVar(&shardDir, "shards", "", "directory containing .lmrd shard files")
	flag.IntVar(&batchSize, "batch", 32, "batch size")
	flag.IntVar(&width, "width", 64, "target image width")
	flag.IntVar(&height, "height", 64, "target image height")
	flag.IntVar(&landmarks, "landmarks", 5, "landmarks per record")
	flag.BoolVar(&repeat, "repeat", false, "repeat the dataset indefinitely")
	flag.BoolVar(&shuffle, "shuffle", false, "shuffle shards and records")
	flag.BoolVar(&augment, "augment", false, "apply randomized augmentation")
	flag.Int64Var(&seed, "seed", 0, "random seed")
	flag.IntVar(&workers, "workers", 0, "decode/transform workers (0 = default)")
	flag.IntVar(&bufferSize, "buffer", 0, "record shuffle buffer size (0 = default)")
	flag.IntVar(&steps, "steps", 0, "number of batches to draw (0 = until exhausted)")
	flag.StringVar(&dumpDir, "dump", "", "dump the first batch with landmark overlays to this directory")

	flag.StringVar(&buildSrc, "build", "", "build shards from a directory of images instead of running the pipeline")
	flag.StringVar(&buildAnnotations, "annotations", "", "JSON annotation file for -build")
	flag.StringVar(&buildOut, "out", "shards", "output directory for -build")
	flag.IntVar(&shardSize, "shard-size", 1000, "records per shard for -build")

	flag.Parse()

	if buildSrc != "" {
		if err := buildShards(buildSrc, buildAnnotations, buildOut, landmarks, shardSize); err != nil {
			log.Fatal(err)
		}
		return
	}

	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.LoadFromFile(cfgPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
		if err := cfg.Validate(); err != nil {
			log.Fatal(err)
		}
	}
	if shardDir != "" {
		cfg.Pipeline.ShardDir = shardDir
	}

	// Explicitly set flags override the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "batch":
			cfg.Pipeline.BatchSize = batchSize
		case "width":
			cfg.Pipeline.ImageWidth = width
		case "height":
			cfg.Pipeline.ImageHeight = height
		case "landmarks":
			cfg.Pipeline.NumLandmarks = landmarks
		case "repeat":
			cfg.Pipeline.Repeat = repeat
		case "shuffle":
			cfg.Pipeline.Shuffle = shuffle
		case "augment":
			cfg.Pipeline.Augment = augment
		case "seed":
			cfg.Pipeline.Seed = seed
		case "workers":
			cfg.Pipeline.NumWorkers = workers
		case "buffer":
			cfg.Pipeline.ShuffleBufferSize = bufferSize
		}
	})

	pcfg := pipeline.Config{
		BatchSize:         cfg.Pipeline.BatchSize,
		ImageWidth:        cfg.Pipeline.ImageWidth,
		ImageHeight:       cfg.Pipeline.ImageHeight,
		NumLandmarks:      cfg.Pipeline.NumLandmarks,
		Repeat:            cfg.Pipeline.Repeat,
		Shuffle:           cfg.Pipeline.Shuffle,
		Augment:           cfg.Pipeline.Augment,
		Seed:              cfg.Pipeline.Seed,
		NumWorkers:        cfg.Pipeline.NumWorkers,
		ShuffleBufferSize: cfg.Pipeline.ShuffleBufferSize,
		Augmentation:      cfg.Augmentation,
	}

	if !utils.DirExists(cfg.Pipeline.ShardDir) {
		log.Fatalf("shard directory %s does not exist", cfg.Pipeline.ShardDir)
	}
	paths, err := utils.ListShardFiles(cfg.Pipeline.ShardDir)
	if err != nil {
		log.Fatal(err)
	}
	pcfg.ShardPaths = paths

	var total int64
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil {
			total += info.Size()
		}
	}
	log.Printf("found %d shards (%s) in %s", len(paths), utils.FormatFileSize(total), cfg.Pipeline.ShardDir)

	p, err := pipeline.New(pcfg)
	if err != nil {
		log.Fatal(err)
	}
	defer p.Close()
	log.Printf("pipeline ready: %d examples, batch size %d", p.NumExamples(), pcfg.BatchSize)

	start := time.Now()
	n := 0
	for steps == 0 || n < steps {
		batch, err := p.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatal(err)
		}

		if n == 0 && dumpDir != "" {
			if err := dumpBatch(batch, dumpDir, cfg.Output); err != nil {
				log.Fatal(err)
			}
			log.Printf("dumped first batch to %s", dumpDir)
		}
		n++
	}

	elapsed := time.Since(start)
	examples := n * pcfg.BatchSize
	log.Printf("drew %d batches (%d examples) in %s (%.1f examples/s)",
		n, examples, elapsed.Round(time.Millisecond), float64(examples)/elapsed.Seconds())
}

func dumpBatch(batch *types.Batch, dir string, out config.OutputConfig) error {
	if err := utils.EnsureDir(dir); err != nil {
		return err
	}
	format := out.Format
	if format == "" {
		format = "jpg"
	}
	for i := 0; i < batch.Size; i++ {
		img := preview.RenderBatchSlot(batch, i)
		name := fmt.Sprintf("example_%03d.%s", i, format)
		if err := preview.SaveImage(img, filepath.Join(dir, name), format, out.Quality, out.Lossless); err != nil {
			return err
		}
	}
	return nil
}

// buildShards packs annotated images into .lmrd shard files.
func buildShards(srcDir, annotationsPath, outDir string, numLandmarks, shardSize int) error {
	if annotationsPath == "" {
		return fmt.Errorf("-build requires -annotations")
	}
	data, err := os.ReadFile(annotationsPath)
	if err != nil {
		return fmt.Errorf("read annotations: %w", err)
	}
	var entries []annotation
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse annotations: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("annotation file %s is empty", annotationsPath)
	}
	if err := utils.EnsureDir(outDir); err != nil {
		return err
	}

	var w *record.Writer
	shardIdx := 0
	written := 0
	for _, e := range entries {
		if len(e.Landmarks) != 2*numLandmarks {
			return fmt.Errorf("%s: got %d landmark scalars, want %d", e.Image, len(e.Landmarks), 2*numLandmarks)
		}
		imgPath := e.Image
		if !filepath.IsAbs(imgPath) {
			imgPath = filepath.Join(srcDir, imgPath)
		}
		if !utils.IsImageFile(imgPath) {
			return fmt.Errorf("%s: unsupported image extension", imgPath)
		}
		imgBytes, err := os.ReadFile(imgPath)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}

		if w == nil {
			name := fmt.Sprintf("train-%04d%s", shardIdx, record.Extension)
			w, err = record.Create(filepath.Join(outDir, name), numLandmarks)
			if err != nil {
				return err
			}
		}
		if err := w.Append(imgBytes, e.Box, e.Landmarks); err != nil {
			return err
		}
		written++

		if w.Count() >= shardSize {
			if err := w.Close(); err != nil {
				return err
			}
			w = nil
			shardIdx++
		}
	}
	if w != nil {
		if err := w.Close(); err != nil {
			return err
		}
		shardIdx++
	}

	log.Printf("wrote %d records across %d shards to %s", written, shardIdx, outDir)
	return nil
}
