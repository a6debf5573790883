// Package config loads and validates the engine configuration file.
package config

import (
	"fmt"
	"os"
	"regexp"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFlagFormat matches the common CTF flag shape. Overridden per
// event via the flag_format setting.
const DefaultFlagFormat = `[A-Za-z0-9_]+\{[^}]*\}`

// Config is the full engine configuration.
type Config struct {
	// Workers is the dispatch pool size. Default: GOMAXPROCS.
	Workers int `yaml:"workers"`

	// FlagFormat is the regexp that promotes a result to a flag.
	FlagFormat string `yaml:"flag_format"`

	// OutputDir is the artifact sink root.
	OutputDir string `yaml:"output_dir"`

	// Database is the outcome store path. Empty disables persistence.
	Database string `yaml:"database"`

	// Timeout bounds how long solve waits for global idle.
	// Zero waits without bound.
	Timeout Duration `yaml:"timeout"`

	// MetricsAddr is the Prometheus listen address for long-running
	// commands. Empty disables the listener.
	MetricsAddr string `yaml:"metrics_addr"`

	// Units selects and tunes the catalog.
	Units UnitsConfig `yaml:"units"`

	// Watch configures the filesystem monitor.
	Watch WatchConfig `yaml:"watch"`
}

// UnitsConfig selects and tunes the unit catalog.
type UnitsConfig struct {
	// Include keeps only the named units. Empty keeps all.
	Include []string `yaml:"include"`

	// Exclude drops the named units, applied after Include.
	Exclude []string `yaml:"exclude"`

	// Priorities overrides per-unit queue priority (lower runs first).
	Priorities map[string]int `yaml:"priorities"`
}

// WatchConfig configures the filesystem monitor.
type WatchConfig struct {
	// Debounce is the quiet period before a changed file is queued.
	Debounce Duration `yaml:"debounce"`
}

// Duration is a time.Duration that unmarshals from YAML strings like
// "30s" or "100ms". Bare integers are taken as nanoseconds, matching
// time.Duration's underlying representation.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var asInt int64
	if err := value.Decode(&asInt); err == nil {
		*d = Duration(asInt)
		return nil
	}

	var asString string
	if err := value.Decode(&asString); err != nil {
		return fmt.Errorf("duration must be a string or integer: %w", err)
	}
	parsed, err := time.ParseDuration(asString)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", asString, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Workers:    runtime.GOMAXPROCS(0),
		FlagFormat: DefaultFlagFormat,
		OutputDir:  "artifacts",
		Watch: WatchConfig{
			Debounce: Duration(100 * time.Millisecond),
		},
	}
}

// Load reads a YAML configuration file over the defaults and validates
// the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field-level constraints.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.FlagFormat == "" {
		return fmt.Errorf("flag_format must not be empty")
	}
	if _, err := regexp.Compile(c.FlagFormat); err != nil {
		return fmt.Errorf("invalid flag_format: %w", err)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}

// FlagPattern compiles the flag format. Call after Validate.
func (c *Config) FlagPattern() *regexp.Regexp {
	return regexp.MustCompile(c.FlagFormat)
}
