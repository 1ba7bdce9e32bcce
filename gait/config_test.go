package gait

import "testing"

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestConfigValidateRejectsBadCutPoints(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"confidence above one", func(c *Config) { c.AcceptanceConfidence = 1.5 }},
		{"zero event separation", func(c *Config) { c.MinEventSeparation = 0 }},
		{"non-monotonic symmetry cuts", func(c *Config) { c.SymmetryModerateCut = 0.05 }},
		{"inverted cadence band", func(c *Config) { c.CadenceSlowBelow = 140 }},
		{"inverted stability cuts", func(c *Config) { c.StabilityHighCut = 0.5 }},
		{"inverted consistency cuts", func(c *Config) { c.ConsistencyGoodCut = 0.9 }},
		{"inverted smoothness cuts", func(c *Config) { c.SmoothnessSmoothCut = 500 }},
		{"zero top joints", func(c *Config) { c.TopJoints = 0 }},
		{"unknown rule version", func(c *Config) { c.RuleVersion = "1999.9" }},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}
}

func TestConfigFingerprint(t *testing.T) {
	t.Parallel()

	base := DefaultConfig()
	same := DefaultConfig()
	if base.Fingerprint() != same.Fingerprint() {
		t.Error("identical configs produce different fingerprints")
	}

	changed := DefaultConfig()
	changed.CoverageFloor = 0.6
	if base.Fingerprint() == changed.Fingerprint() {
		t.Error("changed threshold did not change the fingerprint")
	}
}
