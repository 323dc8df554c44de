// Package config loads server settings from defaults, an optional YAML file,
// a .env file and PIXEL_MCP_* environment variables, in that order of
// increasing precedence.
package config

import (
	"fmt"
	"image/png"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/pixel-tools-mcp/internal/imaging"
	"github.com/ironsheep/pixel-tools-mcp/internal/logging"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "PIXEL_MCP_"

// EnvConfigFile names the variable holding the YAML config path.
const EnvConfigFile = EnvPrefix + "CONFIG"

// Defaults.
const (
	DefaultLogLevel       = "info"
	DefaultResampleFilter = "lanczos"
	DefaultCacheEntries   = 16
	DefaultPNGCompression = "default"
)

var pngCompressionLevels = map[string]png.CompressionLevel{
	"default": png.DefaultCompression,
	"none":    png.NoCompression,
	"fast":    png.BestSpeed,
	"best":    png.BestCompression,
}

// Config holds all runtime settings.
type Config struct {
	LogLevel        string  `yaml:"log_level"`
	LogFile         string  `yaml:"log_file"`
	AutoOrient      bool    `yaml:"auto_orient"`
	ResampleFilter  string  `yaml:"resample_filter"`
	SquareTolerance float64 `yaml:"square_tolerance"`
	CacheEntries    int     `yaml:"cache_entries"`
	MaxInputBytes   int     `yaml:"max_input_bytes"`
	MaxPixels       int     `yaml:"max_pixels"`
	PNGCompression  string  `yaml:"png_compression"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:        DefaultLogLevel,
		AutoOrient:      true,
		ResampleFilter:  DefaultResampleFilter,
		SquareTolerance: imaging.DefaultSquareTolerance,
		CacheEntries:    DefaultCacheEntries,
		MaxInputBytes:   imaging.DefaultMaxInputBytes,
		MaxPixels:       imaging.DefaultMaxPixels,
		PNGCompression:  DefaultPNGCompression,
	}
}

// Load builds the configuration.
//
// A .env file in the working directory is read first; it only sets variables
// that are not already in the environment. Then the YAML file named by
// PIXEL_MCP_CONFIG (if any) is applied over the defaults, and finally the
// individual PIXEL_MCP_* variables override single fields.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := lookup("LOG_FILE"); ok {
		c.LogFile = v
	}
	if v, ok := lookup("RESAMPLE_FILTER"); ok {
		c.ResampleFilter = v
	}
	if v, ok := lookup("PNG_COMPRESSION"); ok {
		c.PNGCompression = v
	}
	if v, ok := lookup("AUTO_ORIENT"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError("AUTO_ORIENT", v, err)
		}
		c.AutoOrient = b
	}
	if v, ok := lookup("SQUARE_TOLERANCE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return envError("SQUARE_TOLERANCE", v, err)
		}
		c.SquareTolerance = f
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"CACHE_ENTRIES", &c.CacheEntries},
		{"MAX_INPUT_BYTES", &c.MaxInputBytes},
		{"MAX_PIXELS", &c.MaxPixels},
	}
	for _, f := range ints {
		v, ok := lookup(f.name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError(f.name, v, err)
		}
		*f.dst = n
	}
	return nil
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func envError(name, value string, err error) error {
	return fmt.Errorf("invalid %s%s=%q: %w", EnvPrefix, name, value, err)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := imaging.ParseResampleFilter(c.ResampleFilter); err != nil {
		return err
	}
	if _, ok := pngCompressionLevels[strings.ToLower(c.PNGCompression)]; !ok {
		return fmt.Errorf("unknown png compression %q (want default, none, fast or best)", c.PNGCompression)
	}
	if c.SquareTolerance < 0 || c.SquareTolerance >= 1 {
		return fmt.Errorf("square tolerance must be in [0, 1), got %v", c.SquareTolerance)
	}
	if c.CacheEntries < 0 {
		return fmt.Errorf("cache entries must not be negative, got %d", c.CacheEntries)
	}
	if c.MaxInputBytes < 0 {
		return fmt.Errorf("max input bytes must not be negative, got %d", c.MaxInputBytes)
	}
	if c.MaxPixels < 0 {
		return fmt.Errorf("max pixels must not be negative, got %d", c.MaxPixels)
	}
	return nil
}

// CodecOptions converts the codec-related settings. c must be valid.
func (c *Config) CodecOptions() imaging.CodecOptions {
	return imaging.CodecOptions{
		AutoOrient:     c.AutoOrient,
		MaxInputBytes:  c.MaxInputBytes,
		MaxPixels:      c.MaxPixels,
		PNGCompression: pngCompressionLevels[strings.ToLower(c.PNGCompression)],
	}
}

// Filter returns the configured resample filter, falling back to the default
// for an invalid name.
func (c *Config) Filter() imaging.ResampleFilter {
	f, err := imaging.ParseResampleFilter(c.ResampleFilter)
	if err != nil {
		return imaging.DefaultResampleFilter
	}
	return f
}
