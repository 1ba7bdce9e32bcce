package gait

import (
	"fmt"
	"hash/fnv"

	"github.com/go-playground/validator/v10"
)

// ConfigError marks an invalid threshold configuration. It is raised at
// analyzer construction, before any sequence is processed.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid gait configuration: " + e.Reason
}

// Config is the tuning surface of the pipeline. All cut points are defaults
// calibrated for pixel-space coordinates; callers may override any of them
// per analyzer without code changes.
type Config struct {
	// AcceptanceConfidence gates keypoints: landmarks below it contribute no
	// measurements.
	AcceptanceConfidence float64 `validate:"gte=0,lte=1"`
	// CoverageFloor is the minimum fraction of frames that must yield a valid
	// measurement before a metric's aggregate is reported.
	CoverageFloor float64 `validate:"gte=0,lte=1"`
	// MinEventSeparation rejects heel-strike candidates closer than this to
	// the previous event of the same foot (seconds).
	MinEventSeparation float64 `validate:"gt=0"`

	// Symmetry classification cut points on the asymmetry scale.
	SymmetryMildCut     float64 `validate:"gt=0"`
	SymmetryModerateCut float64 `validate:"gt=0"`
	SymmetrySevereCut   float64 `validate:"gt=0"`
	// Per-joint severity tags use the mild/moderate cuts.

	// Cadence bands in steps per minute.
	CadenceSlowBelow float64 `validate:"gt=0"`
	CadenceFastAbove float64 `validate:"gt=0"`

	// Stability index cut points (lower index = more stable).
	StabilityHighCut float64 `validate:"gt=0"`
	StabilityLowCut  float64 `validate:"gt=0"`

	// Velocity consistency (coefficient of variation) cut points.
	ConsistencyGoodCut float64 `validate:"gt=0"`
	ConsistencyPoorCut float64 `validate:"gt=0"`

	// Smoothness (mean jerk magnitude) cut points, in the input coordinate
	// scale per second cubed.
	SmoothnessSmoothCut float64 `validate:"gt=0"`
	SmoothnessJerkyCut  float64 `validate:"gt=0"`

	// TopJoints is how many joints the symmetry ranking reports.
	TopJoints int `validate:"gt=0"`

	// ScaleMetersPerPixel converts step/stride lengths to meters when known;
	// zero leaves lengths in pixel units.
	ScaleMetersPerPixel float64 `validate:"gte=0"`

	// RuleVersion selects the clinical rule table.
	RuleVersion string `validate:"required"`
}

// DefaultConfig returns the calibrated defaults.
func DefaultConfig() Config {
	return Config{
		AcceptanceConfidence: 0.3,
		CoverageFloor:        0.5,
		MinEventSeparation:   0.3,
		SymmetryMildCut:      0.10,
		SymmetryModerateCut:  0.20,
		SymmetrySevereCut:    0.30,
		CadenceSlowBelow:     100,
		CadenceFastAbove:     130,
		StabilityHighCut:     0.15,
		StabilityLowCut:      0.30,
		ConsistencyGoodCut:   0.30,
		ConsistencyPoorCut:   0.60,
		SmoothnessSmoothCut:  100,
		SmoothnessJerkyCut:   300,
		TopJoints:            3,
		RuleVersion:          RuleTableVersion,
	}
}

var configValidator = validator.New()

// Validate rejects out-of-range values and non-monotonic cut points.
func (c Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return &ConfigError{Reason: err.Error()}
	}
	if !(c.SymmetryMildCut < c.SymmetryModerateCut && c.SymmetryModerateCut < c.SymmetrySevereCut) {
		return &ConfigError{Reason: fmt.Sprintf(
			"symmetry cut points must increase: %g, %g, %g",
			c.SymmetryMildCut, c.SymmetryModerateCut, c.SymmetrySevereCut)}
	}
	if c.CadenceSlowBelow >= c.CadenceFastAbove {
		return &ConfigError{Reason: fmt.Sprintf(
			"cadence slow bound %g must be below fast bound %g",
			c.CadenceSlowBelow, c.CadenceFastAbove)}
	}
	if c.StabilityHighCut >= c.StabilityLowCut {
		return &ConfigError{Reason: fmt.Sprintf(
			"stability high cut %g must be below low cut %g",
			c.StabilityHighCut, c.StabilityLowCut)}
	}
	if c.ConsistencyGoodCut >= c.ConsistencyPoorCut {
		return &ConfigError{Reason: fmt.Sprintf(
			"consistency good cut %g must be below poor cut %g",
			c.ConsistencyGoodCut, c.ConsistencyPoorCut)}
	}
	if c.SmoothnessSmoothCut >= c.SmoothnessJerkyCut {
		return &ConfigError{Reason: fmt.Sprintf(
			"smoothness smooth cut %g must be below jerky cut %g",
			c.SmoothnessSmoothCut, c.SmoothnessJerkyCut)}
	}
	if c.RuleVersion != RuleTableVersion {
		return &ConfigError{Reason: fmt.Sprintf(
			"unknown rule table version %q (have %q)", c.RuleVersion, RuleTableVersion)}
	}
	return nil
}

// Fingerprint returns a stable hash of the configuration, used by the result
// cache so overridden thresholds never collide with default-config results.
func (c Config) Fingerprint() string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%g|%g|%g|%g|%g|%g|%g|%g|%g|%g|%g|%g|%g|%g|%d|%g|%s",
		c.AcceptanceConfidence, c.CoverageFloor, c.MinEventSeparation,
		c.SymmetryMildCut, c.SymmetryModerateCut, c.SymmetrySevereCut,
		c.CadenceSlowBelow, c.CadenceFastAbove,
		c.StabilityHighCut, c.StabilityLowCut,
		c.ConsistencyGoodCut, c.ConsistencyPoorCut,
		c.SmoothnessSmoothCut, c.SmoothnessJerkyCut,
		c.TopJoints, c.ScaleMetersPerPixel, c.RuleVersion)
	return fmt.Sprintf("%016x", h.Sum64())
}
