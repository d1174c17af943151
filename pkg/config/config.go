// Package config provides configuration loading and management for framemedian.
// It handles loading job configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"framemedian/pkg/median"
)

// Config represents a job configuration loaded from YAML
type Config struct {
	// Filter parameters
	Filter struct {
		// Mode is one of median, temporalmedian or medianblend
		Mode string `yaml:"mode"`

		// Low and High are the trim counts used by medianblend
		Low  int `yaml:"low"`
		High int `yaml:"high"`

		// Radius is the temporal window half-width used by temporalmedian
		Radius int `yaml:"radius"`

		// Sync is the alignment search half-width; 0 disables it
		Sync int `yaml:"sync"`

		// Samples is the number of pixels compared per candidate frame
		Samples int `yaml:"samples"`

		// Planes lists the planes to filter; empty means all of them
		Planes []int `yaml:"planes"`

		// Debug attaches diagnostic properties to output frames
		Debug bool `yaml:"debug"`
	} `yaml:"filter"`

	// Input parameters
	Input struct {
		// Clips are image sequence directories, one per clip
		Clips []string `yaml:"clips"`
	} `yaml:"input"`

	// Output parameters
	Output struct {
		// Dir receives the filtered frames
		Dir string `yaml:"dir"`

		// First and Last bound the rendered range; a negative Last means the final frame
		First int `yaml:"first"`
		Last  int `yaml:"last"`
	} `yaml:"output"`

	// Processing parameters
	Processing struct {
		// Workers is the number of frames computed concurrently; 0 uses every core
		Workers int `yaml:"workers"`
	} `yaml:"processing"`

	// Logging parameters
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	opts := median.DefaultOptions(median.Median)
	cfg.Filter.Mode = "median"
	cfg.Filter.Low = opts.Low
	cfg.Filter.High = opts.High
	cfg.Filter.Radius = opts.Radius
	cfg.Filter.Sync = opts.Sync
	cfg.Filter.Samples = opts.Samples
	cfg.Filter.Planes = []int{}

	cfg.Input.Clips = []string{}

	cfg.Output.Dir = "out"
	cfg.Output.First = 0
	cfg.Output.Last = -1

	cfg.Processing.Workers = 0

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "console"

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

// FilterOptions converts the filter section into median options
func (c *Config) FilterOptions() (median.Options, error) {
	mode, err := median.ParseMode(c.Filter.Mode)
	if err != nil {
		return median.Options{}, fmt.Errorf("filter.mode: %w", err)
	}

	opts := median.DefaultOptions(mode)
	opts.Low = c.Filter.Low
	opts.High = c.Filter.High
	opts.Radius = c.Filter.Radius
	opts.Sync = c.Filter.Sync
	opts.Samples = c.Filter.Samples
	opts.Planes = append([]int(nil), c.Filter.Planes...)
	opts.Debug = c.Filter.Debug
	return opts, nil
}
