package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	"gait-analysis/gait"
)

// Config is the process configuration, parsed from the environment. The
// analyzer thresholds exposed here are the operationally tunable subset;
// everything else keeps the defaults from the gait package.
type Config struct {
	Port        string `env:"PORT" envDefault:"5000"`
	Protocol    string `env:"PROTO" envDefault:"http" validate:"oneof=http https"`
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9091"`

	SequenceDir      string `env:"SEQUENCE_DIR" envDefault:"storage/sequences"`
	HistoryPath      string `env:"HISTORY_PATH" envDefault:"storage/history.json"`
	PersistSequences bool   `env:"PERSIST_SEQUENCES" envDefault:"true"`

	EstimatorServiceURL  string `env:"ESTIMATOR_SERVICE_URL" envDefault:"http://localhost:5002"`
	ReferenceProfilePath string `env:"REFERENCE_PROFILE_PATH"`

	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"24h"`

	MinConfidence       float64 `env:"GAIT_MIN_CONFIDENCE" envDefault:"0.3" validate:"gte=0,lte=1"`
	CoverageFloor       float64 `env:"GAIT_COVERAGE_FLOOR" envDefault:"0.5" validate:"gte=0,lte=1"`
	MinEventSeparation  float64 `env:"GAIT_MIN_EVENT_SEPARATION" envDefault:"0.3" validate:"gt=0"`
	TopJoints           int     `env:"GAIT_TOP_JOINTS" envDefault:"3" validate:"gt=0"`
	ScaleMetersPerPixel float64 `env:"GAIT_SCALE_M_PER_PX" envDefault:"0" validate:"gte=0"`
}

// Load parses and validates the environment configuration.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("error parsing environment: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// GaitConfig maps the tunable environment knobs onto the analyzer
// configuration. The result still goes through gait.Config.Validate when
// the analyzer is constructed.
func (c *Config) GaitConfig() gait.Config {
	gc := gait.DefaultConfig()
	gc.AcceptanceConfidence = c.MinConfidence
	gc.CoverageFloor = c.CoverageFloor
	gc.MinEventSeparation = c.MinEventSeparation
	gc.TopJoints = c.TopJoints
	gc.ScaleMetersPerPixel = c.ScaleMetersPerPixel
	return gc
}
