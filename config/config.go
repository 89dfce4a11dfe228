// Package config handles rtaccel configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds all build settings.
type Config struct {
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
	Build   BuildConfig   `yaml:"build" toml:"build"`
	Output  OutputConfig  `yaml:"output" toml:"output"`
	Watch   WatchConfig   `yaml:"watch" toml:"watch"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// BuildConfig holds the BLAS policy and post-build checks.
type BuildConfig struct {
	LeafThreshold   int     `yaml:"leaf_threshold" toml:"leaf_threshold"`
	Bins            int     `yaml:"bins" toml:"bins"`
	SplitAcceptance float32 `yaml:"split_acceptance" toml:"split_acceptance"`
	Validate        bool    `yaml:"validate" toml:"validate"`
}

// OutputConfig holds where build artefacts go.
type OutputConfig struct {
	Dir string `yaml:"dir" toml:"dir"`
}

// WatchConfig holds settings for the watch command.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" toml:"debounce"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Build: BuildConfig{
			LeafThreshold:   4,
			Bins:            8,
			SplitAcceptance: 0.8,
			Validate:        false,
		},
		Output: OutputConfig{
			Dir: "out",
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
	}
}

// LoadFile loads configuration with priority: defaults < file. The format
// follows the extension: .toml is TOML, anything else YAML. An empty path
// returns the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if err := loadFromFile(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	return cfg, nil
}

// loadFromFile loads config from a file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

// SaveTo writes the config to path in the format its extension selects.
func (c *Config) SaveTo(path string) error {
	// Create parent directory if needed
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var data []byte
	var err error
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		data, err = toml.Marshal(c)
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
