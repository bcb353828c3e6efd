package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/menta2k/landmark-pipeline/pkg/augment"
)

// Config holds the application configuration
type Config struct {
	Pipeline     PipelineConfig `json:"pipeline"`
	Augmentation augment.Config `json:"augmentation"`
	Output       OutputConfig   `json:"output"`
}

// PipelineConfig holds configuration for the batch pipeline
type PipelineConfig struct {
	ShardDir          string `json:"shard_dir"`
	BatchSize         int    `json:"batch_size"`
	ImageWidth        int    `json:"image_width"`
	ImageHeight       int    `json:"image_height"`
	NumLandmarks      int    `json:"num_landmarks"`
	Repeat            bool   `json:"repeat"`
	Shuffle           bool   `json:"shuffle"`
	Augment           bool   `json:"augment"`
	ShuffleBufferSize int    `json:"shuffle_buffer_size"`
	NumWorkers        int    `json:"num_workers"`
	Seed              int64  `json:"seed"`
}

// OutputConfig holds configuration for batch preview dumps
type OutputConfig struct {
	Dir      string `json:"dir"`
	Format   string `json:"format"`
	Quality  int    `json:"quality"`
	Lossless bool   `json:"lossless"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			ShardDir:          "./shards",
			BatchSize:         32,
			ImageWidth:        64,
			ImageHeight:       64,
			NumLandmarks:      5,
			Repeat:            false,
			Shuffle:           true,
			Augment:           true,
			ShuffleBufferSize: 10000,
			NumWorkers:        8,
			Seed:              0,
		},
		Augmentation: augment.Default(),
		Output: OutputConfig{
			Dir:      "./preview",
			Format:   "jpg",
			Quality:  90,
			Lossless: false,
		},
	}
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Pipeline.BatchSize < 1 {
		return fmt.Errorf("pipeline.batch_size must be positive")
	}

	if c.Pipeline.ImageWidth < 1 || c.Pipeline.ImageHeight < 1 {
		return fmt.Errorf("pipeline.image_width and pipeline.image_height must be positive")
	}

	if c.Pipeline.NumLandmarks < 1 {
		return fmt.Errorf("pipeline.num_landmarks must be positive")
	}

	if c.Pipeline.ShuffleBufferSize < 0 {
		return fmt.Errorf("pipeline.shuffle_buffer_size must not be negative")
	}

	if c.Pipeline.NumWorkers < 0 {
		return fmt.Errorf("pipeline.num_workers must not be negative")
	}

	if c.Augmentation.MaxRotation < 0 || c.Augmentation.MaxRotation > 180 {
		return fmt.Errorf("augmentation.max_rotation must be between 0 and 180")
	}

	if c.Augmentation.PixelScaleMin > c.Augmentation.PixelScaleMax {
		return fmt.Errorf("augmentation.pixel_scale_min must not exceed augmentation.pixel_scale_max")
	}

	for name, p := range map[string]float64{
		"color_probability":       c.Augmentation.ColorProbability,
		"grayscale_probability":   c.Augmentation.GrayscaleProbability,
		"pixel_scale_probability": c.Augmentation.PixelScaleProbability,
		"blur_probability":        c.Augmentation.BlurProbability,
		"flip_probability":        c.Augmentation.FlipProbability,
		"box_jitter_probability":  c.Augmentation.BoxJitterProbability,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("augmentation.%s must be between 0 and 1", name)
		}
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "landmark-pipeline", "config.json")
}
