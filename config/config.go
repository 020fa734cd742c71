// Package config loads the service configuration from a YAML or JSON file
// with optional environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/openfleet/dispatchsim/core/metrics"
	"github.com/openfleet/dispatchsim/core/optimization"
)

type Config struct {
	Simulation   SimulationConfig    `json:"simulation"`
	Optimization optimization.Config `json:"optimization"`
	Data         DataConfig          `json:"data"`
	Metrics      metrics.Config      `json:"metrics"`
	Logging      LoggingConfig       `json:"logging"`
}

// DataConfig locates the input files of a run.
type DataConfig struct {
	VehiclesFile    string `json:"vehicles_file"`
	TripsFile       string `json:"trips_file"`
	TravelTimesFile string `json:"travel_times_file"`
}

// Validate checks that the mandatory input files are set.
func (c *DataConfig) Validate() error {
	if c.VehiclesFile == "" {
		return fmt.Errorf("data: vehicles_file is required")
	}
	if c.TripsFile == "" {
		return fmt.Errorf("data: trips_file is required")
	}
	return nil
}

// Load reads the configuration file at path. Environment variables prefixed
// with DS_ override file values, with __ separating nesting levels
// (DS_SIMULATION__MAX_TIME_SECONDS overrides simulation.max_time_seconds).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("DS_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "ds_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Logging.SetDefaults()
	cfg.Simulation.SetDefaults()
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Simulation.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Data.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
