package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
)

// Config holds output paths, preview settings and engine switches.
type Config struct {
	// Paths
	OutputDir string `json:"output_dir"`

	// Engine
	ForceDefaults bool   `json:"force_defaults"`
	UpObject      string `json:"up_object"`

	// Preview settings
	Preview     bool    `json:"preview"`
	Format      string  `json:"format"`
	PreviewSize int     `json:"preview_size"`
	Supersample int     `json:"supersample"`
	Yaw         float64 `json:"yaw"`
	Pitch       float64 `json:"pitch"`

	Workers  int    `json:"workers"`
	LogLevel string `json:"log_level"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	OutputDir     string
	Format        string
	Size          int
	Workers       int
	LogLevel      string
	Preview       bool
	ForceDefaults bool
}

// Resolve applies flags and fills in defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Size > 0 {
		c.PreviewSize = flags.Size
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	c.Preview = c.Preview || flags.Preview
	c.ForceDefaults = c.ForceDefaults || flags.ForceDefaults

	if c.OutputDir == "" {
		c.OutputDir = "oriented"
	}
	if c.Format == "" {
		c.Format = "webp"
	}
	if c.PreviewSize <= 0 {
		c.PreviewSize = 256
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks the enumerated settings after Resolve.
func (c Config) Validate() error {
	switch c.Format {
	case "webp", "tga":
	default:
		return fmt.Errorf("config: unknown preview format %q", c.Format)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level maps LogLevel to a slog level.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}
