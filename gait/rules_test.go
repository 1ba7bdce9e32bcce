package gait

import (
	"strings"
	"testing"
)

func cleanSnapshot() assessmentSnapshot {
	return assessmentSnapshot{
		Symmetry:    Symmetric,
		Cadence:     CadenceNormal,
		Stability:   StabilityHigh,
		Consistency: ConsistencyGood,
		Smoothness:  MovementSmooth,
		Coverage:    0.95,
		CyclesLeft:  3,
		CyclesRight: 3,
	}
}

func TestCleanAssessmentIsGoodAndConfident(t *testing.T) {
	t.Parallel()

	overall := evaluateRules(cleanSnapshot())
	if overall.Level != OverallGood {
		t.Errorf("level = %s, want %s", overall.Level, OverallGood)
	}
	if overall.Confidence != ConfidenceHigh {
		t.Errorf("confidence = %s, want %s", overall.Confidence, ConfidenceHigh)
	}
	if len(overall.Recommendations) != 0 {
		t.Errorf("clean walk fired %d recommendations", len(overall.Recommendations))
	}
}

func TestSeverityPointBanding(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*assessmentSnapshot)
		want   OverallLevel
	}{
		{
			"single mild finding stays good",
			func(s *assessmentSnapshot) { s.Symmetry = MildlyAsymmetric },
			OverallGood,
		},
		{
			"moderate asymmetry alone is moderate",
			func(s *assessmentSnapshot) { s.Symmetry = ModeratelyAsymmetric },
			OverallModerate,
		},
		{
			"severe asymmetry alone is moderate",
			func(s *assessmentSnapshot) { s.Symmetry = SeverelyAsymmetric },
			OverallModerate,
		},
		{
			"severe asymmetry plus slow cadence is poor",
			func(s *assessmentSnapshot) {
				s.Symmetry = SeverelyAsymmetric
				s.Cadence = CadenceSlow
			},
			OverallPoor,
		},
		{
			"three degraded channels are poor",
			func(s *assessmentSnapshot) {
				s.Stability = StabilityLow
				s.Consistency = ConsistencyPoor
				s.Smoothness = MovementJerky
			},
			OverallPoor,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := cleanSnapshot()
			tc.mutate(&s)
			if got := evaluateRules(s).Level; got != tc.want {
				t.Errorf("level = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestThreeUnknownChannelsYieldUnknown(t *testing.T) {
	t.Parallel()

	s := cleanSnapshot()
	s.Symmetry = SymmetryUnknown
	s.Cadence = CadenceUnknown
	s.Stability = StabilityUnknown

	overall := evaluateRules(s)
	if overall.Level != OverallUnknown {
		t.Errorf("level = %s, want %s", overall.Level, OverallUnknown)
	}
	if overall.Confidence != ConfidenceLow {
		t.Errorf("confidence = %s, want %s", overall.Confidence, ConfidenceLow)
	}
}

func TestConfidenceLadder(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*assessmentSnapshot)
		want   ConfidenceLevel
	}{
		{"clean is high", func(s *assessmentSnapshot) {}, ConfidenceHigh},
		{"one unknown channel is medium",
			func(s *assessmentSnapshot) { s.Smoothness = SmoothnessUnknown }, ConfidenceMedium},
		{"coverage below 0.8 is medium",
			func(s *assessmentSnapshot) { s.Coverage = 0.7 }, ConfidenceMedium},
		{"one thin side is medium",
			func(s *assessmentSnapshot) { s.CyclesRight = 1 }, ConfidenceMedium},
		{"coverage below 0.5 is low",
			func(s *assessmentSnapshot) { s.Coverage = 0.4 }, ConfidenceLow},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := cleanSnapshot()
			tc.mutate(&s)
			if got := evaluateRules(s).Confidence; got != tc.want {
				t.Errorf("confidence = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestFiredRulesCarryEvidence(t *testing.T) {
	t.Parallel()

	s := cleanSnapshot()
	s.Symmetry = SeverelyAsymmetric
	s.Stability = StabilityLow

	overall := evaluateRules(s)
	if len(overall.Recommendations) != 2 {
		t.Fatalf("fired %d recommendations, want 2", len(overall.Recommendations))
	}
	for _, rec := range overall.Recommendations {
		if rec.Text == "" || rec.ClinicalThreshold == "" || rec.EvidenceLevel == "" {
			t.Errorf("recommendation missing fields: %+v", rec)
		}
		if rec.PrimarySource == nil {
			t.Errorf("recommendation %q has no primary source", rec.Text)
		}
	}
}

func TestRecommendationsAreDeduplicated(t *testing.T) {
	t.Parallel()

	s := cleanSnapshot()
	s.CyclesLeft = 0
	s.CyclesRight = 0
	s.Coverage = 0.3

	overall := evaluateRules(s)
	seen := make(map[string]bool)
	for _, rec := range overall.Recommendations {
		if seen[rec.Text] {
			t.Fatalf("duplicate recommendation: %q", rec.Text)
		}
		seen[rec.Text] = true
	}
}

func TestQualityRulesMentionRecording(t *testing.T) {
	t.Parallel()

	s := cleanSnapshot()
	s.CyclesLeft = 1

	overall := evaluateRules(s)
	found := false
	for _, rec := range overall.Recommendations {
		if strings.Contains(rec.Text, "longer walking bout") {
			found = true
		}
	}
	if !found {
		t.Error("thin cycle support did not recommend a longer recording")
	}
}

func TestCycleCountsPerSide(t *testing.T) {
	t.Parallel()

	seq := synthSequence(t, nil)
	cycles := DetectCycles(seq, DefaultConfig())
	left, right := cycleCountsPerSide(cycles)
	if left+right != len(cycles) {
		t.Errorf("side counts %d+%d do not sum to %d cycles", left, right, len(cycles))
	}
}
