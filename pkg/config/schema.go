package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for space-dns
type Config struct {
	// Listen is the UDP address the daemon binds to
	Listen string `yaml:"listen,omitempty" json:"listen,omitempty"`

	// Upstream is the resolver queries are forwarded to on a cache miss
	Upstream string `yaml:"upstream,omitempty" json:"upstream,omitempty"`

	// Cache configuration
	Cache CacheConfig `yaml:"cache,omitempty" json:"cache,omitempty"`

	// Log configuration
	Log LogConfig `yaml:"log,omitempty" json:"log,omitempty"`
}

// CacheConfig defines record cache settings
type CacheConfig struct {
	// Capacity is the maximum number of cached records.
	// Set a negative value to disable caching entirely.
	Capacity int `yaml:"capacity,omitempty" json:"capacity,omitempty"`

	// SweepInterval is how often expired records are swept out
	// (e.g., "30s", "1m")
	SweepInterval Duration `yaml:"sweep_interval,omitempty" json:"sweep_interval,omitempty"`
}

// LogConfig defines logging settings
type LogConfig struct {
	// Debug enables per-query debug logging
	Debug bool `yaml:"debug,omitempty" json:"debug,omitempty"`
}

// Duration is a time.Duration that reads from yaml either as a Go
// duration string ("30s", "1m") or as a bare number of seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("invalid duration value: %w", err)
	}

	// A bare number means seconds.
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(n) * time.Second)
		return nil
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Defaults returns a config with default values
func Defaults() *Config {
	return &Config{
		Listen:   "127.0.0.1:5353",
		Upstream: "1.1.1.1:53",
		Cache: CacheConfig{
			Capacity:      4096,
			SweepInterval: Duration(30 * time.Second),
		},
	}
}

// Merge merges another config into this one (other takes precedence)
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	merged := *c

	if other.Listen != "" {
		merged.Listen = other.Listen
	}
	if other.Upstream != "" {
		merged.Upstream = other.Upstream
	}
	if other.Cache.Capacity != 0 {
		merged.Cache.Capacity = other.Cache.Capacity
	}
	if other.Cache.SweepInterval != 0 {
		merged.Cache.SweepInterval = other.Cache.SweepInterval
	}
	if other.Log.Debug {
		merged.Log.Debug = other.Log.Debug
	}

	return &merged
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", c.Listen, err)
	}
	if _, _, err := net.SplitHostPort(c.Upstream); err != nil {
		return fmt.Errorf("invalid upstream address %q: %w", c.Upstream, err)
	}
	if c.Cache.SweepInterval <= 0 {
		return fmt.Errorf("cache sweep_interval must be positive, got %s", time.Duration(c.Cache.SweepInterval))
	}
	return nil
}
