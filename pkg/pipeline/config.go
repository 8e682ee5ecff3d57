package pipeline

import (
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// validate is a singleton validator instance
var validate = validator.New()

// Config carries the tunable parameters of a coordination run. All distances
// are meters.
type Config struct {
	// MinClearance is the required vertical gap between stacked elements
	MinClearance float64 `yaml:"min_clearance" validate:"gte=0"`
	// CellSize is the horizontal proximity grid cell for separation
	CellSize float64 `yaml:"cell_size" validate:"gte=0"`
	// CascadeCeiling flags elements nudged further than this for manual review
	CascadeCeiling float64 `yaml:"cascade_ceiling" validate:"gte=0"`
	// SearchRadius bounds device-to-corridor projection during routing
	SearchRadius float64 `yaml:"search_radius" validate:"gte=0"`
	// Workers sets the fan-out width for per-bucket work; 0 or 1 runs serially
	Workers int `yaml:"workers" validate:"gte=0"`
}

// DefaultConfig returns the standard coordination parameters
func DefaultConfig() Config {
	return Config{
		MinClearance:   0.15,
		CellSize:       1.0,
		CascadeCeiling: 1.0,
		SearchRadius:   10.0,
		Workers:        0,
	}
}

// Validate checks the configuration fields
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("pipeline config: %w", err)
	}
	return nil
}

// LoadConfig reads a pipeline configuration from YAML, applying defaults
// for omitted fields
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()

	data, err := io.ReadAll(r)
	if err != nil {
		return cfg, fmt.Errorf("failed to read pipeline config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse pipeline config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
