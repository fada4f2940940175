package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds the application configuration
type Config struct {
	Planner PlannerConfig `json:"planner"`
	Output  OutputConfig  `json:"output"`
	Log     LogConfig     `json:"log"`
}

// PlannerConfig holds configuration for aspect classification and padding
type PlannerConfig struct {
	ToleranceNum      int `json:"tolerance_num"`
	ToleranceDen      int `json:"tolerance_den"`
	MinPaddingDivisor int `json:"min_padding_divisor"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	TargetSize int    `json:"target_size"`
	Subdir     string `json:"subdir"`
	// Format overrides the input extension when set (png, jpg, webp).
	Format   string `json:"format"`
	Quality  int    `json:"quality"`
	Lossless bool   `json:"lossless"`
	Debug    bool   `json:"debug"`
}

// LogConfig holds configuration for the rotating log file
type LogConfig struct {
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Planner: PlannerConfig{
			ToleranceNum:      11,
			ToleranceDen:      10,
			MinPaddingDivisor: 20,
		},
		Output: OutputConfig{
			TargetSize: 512,
			Subdir:     "StickerPlaner",
			Format:     "",
			Quality:    90,
			Lossless:   true,
		},
		Log: LogConfig{
			MaxSizeMB:  10,
			MaxBackups: 2,
			MaxAgeDays: 28,
		},
	}
}

// LoadFromFile loads configuration from a JSON file on top of the defaults
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
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
	if c.Planner.ToleranceDen < 1 || c.Planner.ToleranceNum < c.Planner.ToleranceDen {
		return fmt.Errorf("planner tolerance must be a ratio of at least 1 (got %d/%d)",
			c.Planner.ToleranceNum, c.Planner.ToleranceDen)
	}

	if c.Planner.MinPaddingDivisor < 0 {
		return fmt.Errorf("planner.min_padding_divisor cannot be negative")
	}

	if c.Output.TargetSize < 1 {
		return fmt.Errorf("output.target_size must be positive")
	}

	if c.Output.Subdir == "" || strings.ContainsAny(c.Output.Subdir, `/\`) {
		return fmt.Errorf("output.subdir must be a single directory name")
	}

	switch strings.ToLower(c.Output.Format) {
	case "", "png", "jpg", "jpeg", "webp":
	default:
		return fmt.Errorf("output.format %q is not supported", c.Output.Format)
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	return nil
}
