// Package config holds the runtime parameters of the list benchmark.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds runtime parameters for the benchmark.
// Zero values mean "unspecified" and are replaced by defaults in Merge.
type Config struct {
	DefaultCount int      `json:"default_count" yaml:"default_count" toml:"default_count"`
	MinCount     int      `json:"min_count" yaml:"min_count" toml:"min_count"`
	MaxCount     int      `json:"max_count" yaml:"max_count" toml:"max_count"`
	Settle       Duration `json:"settle" yaml:"settle" toml:"settle"`
	Workers      int      `json:"workers" yaml:"workers" toml:"workers"`
	Lazy         *bool    `json:"lazy" yaml:"lazy" toml:"lazy"`
	LogLevel     string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	Profile      string   `json:"profile" yaml:"profile" toml:"profile"`
	MetricsAddr  string   `json:"metrics_addr" yaml:"metrics_addr" toml:"metrics_addr"`
}

// Default returns the configuration used when nothing is specified.
func Default() Config {
	lazy := true
	return Config{
		DefaultCount: 10,
		MinCount:     10,
		MaxCount:     10000,
		Settle:       Duration(500 * time.Millisecond),
		Workers:      1,
		Lazy:         &lazy,
		LogLevel:     "info",
		Profile:      "none",
	}
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// Merge returns c with every unspecified field taken from base.
func (c Config) Merge(base Config) Config {
	if c.DefaultCount == 0 {
		c.DefaultCount = base.DefaultCount
	}
	if c.MinCount == 0 {
		c.MinCount = base.MinCount
	}
	if c.MaxCount == 0 {
		c.MaxCount = base.MaxCount
	}
	if c.Settle == 0 {
		c.Settle = base.Settle
	}
	if c.Workers == 0 {
		c.Workers = base.Workers
	}
	if c.Lazy == nil {
		c.Lazy = base.Lazy
	}
	if c.LogLevel == "" {
		c.LogLevel = base.LogLevel
	}
	if c.Profile == "" {
		c.Profile = base.Profile
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = base.MetricsAddr
	}
	return c
}

// Validate reports the first problem with c.
func (c Config) Validate() error {
	switch {
	case c.MinCount < 0:
		return fmt.Errorf("%w: min_count %d is negative", ErrInvalid, c.MinCount)
	case c.MaxCount < c.MinCount:
		return fmt.Errorf("%w: max_count %d below min_count %d", ErrInvalid, c.MaxCount, c.MinCount)
	case c.DefaultCount < c.MinCount || c.DefaultCount > c.MaxCount:
		return fmt.Errorf("%w: default_count %d outside [%d, %d]", ErrInvalid, c.DefaultCount, c.MinCount, c.MaxCount)
	case c.Settle <= 0:
		return fmt.Errorf("%w: settle must be positive", ErrInvalid)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers %d is negative", ErrInvalid, c.Workers)
	}
	return nil
}

// Clamp forces n into [MinCount, MaxCount].
func (c Config) Clamp(n int) int {
	if n < c.MinCount {
		return c.MinCount
	}
	if n > c.MaxCount {
		return c.MaxCount
	}
	return n
}

// LazyList reports whether the virtualized list is selected initially.
func (c Config) LazyList() bool {
	return c.Lazy == nil || *c.Lazy
}

// Duration is a time.Duration written as a string such as "500ms" in
// config files.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String formats d like time.Duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", b, err)
	}
	*d = Duration(v)
	return nil
}
