// Package config loads the YAML application configuration for the demo and
// tooling binaries. The core packages never read configuration themselves;
// values are passed in explicitly.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// LoggingConfig selects log verbosity and encoding.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// MetricsConfig controls the optional Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr" validate:"omitempty,hostname_port"`
}

// OccupancyConfig carries the domain parameters.
type OccupancyConfig struct {
	// BufferRateMPerS is the outward footprint expansion rate applied per
	// second of comms loss.
	BufferRateMPerS float64 `yaml:"bufferRateMPerS" validate:"gte=0"`
	// ZoneFile is the GeoJSON file the zones are loaded from.
	ZoneFile string `yaml:"zoneFile" validate:"required"`
}

// Config is the root application configuration.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Occupancy OccupancyConfig `yaml:"occupancy"`
}

// Load reads, validates and defaults the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates raw YAML configuration bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	applyDefaults(&cfg)

	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = "localhost:9464"
	}
	if cfg.Occupancy.BufferRateMPerS == 0 {
		cfg.Occupancy.BufferRateMPerS = 3.0
	}
}
