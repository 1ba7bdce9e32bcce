package gait

// Clinical Rule Table
//
// The overall level, confidence and recommendations come from an explicit,
// versioned rule table instead of scattered conditionals. Evaluation is
// deterministic: every rule whose predicate matches fires, and the resulting
// recommendations accumulate, deduplicated by text. The overall level is a
// severity-point band over the classification channels; confidence is
// derived from upstream data quality and never from the rules themselves.
//
// Changing a threshold, recommendation or evidence link is a table edit and
// a version bump, so cached results from older tables never masquerade as
// current ones.

import "gait-analysis/pose"

// RuleTableVersion identifies the active rule table. It is embedded in every
// result and in cache keys.
const RuleTableVersion = "2024.1"

// assessmentSnapshot is the rule-layer view of one analysis.
type assessmentSnapshot struct {
	Symmetry      SymmetryLevel
	SymmetryScore Metric
	Cadence       CadenceLevel
	Stability     StabilityLevel
	Consistency   ConsistencyLevel
	Smoothness    SmoothnessLevel
	Coverage      float64
	CyclesLeft    int
	CyclesRight   int
}

type clinicalRule struct {
	name           string
	threshold      string
	evidenceLevel  string
	evidenceKey    string
	recommendation string
	applies        func(assessmentSnapshot) bool
}

var clinicalRules = []clinicalRule{
	{
		name:           "severe_asymmetry",
		threshold:      "symmetry_score > 0.30",
		evidenceLevel:  "strong",
		evidenceKey:    "asymmetry_stroke",
		recommendation: "Marked left-right asymmetry detected; refer for clinical gait assessment to rule out unilateral impairment.",
		applies: func(s assessmentSnapshot) bool {
			return s.Symmetry == SeverelyAsymmetric
		},
	},
	{
		name:           "moderate_asymmetry",
		threshold:      "symmetry_score > 0.20",
		evidenceLevel:  "strong",
		evidenceKey:    "asymmetry_stroke",
		recommendation: "Moderate bilateral asymmetry observed; consider targeted strength and balance exercises for the weaker side.",
		applies: func(s assessmentSnapshot) bool {
			return s.Symmetry == ModeratelyAsymmetric
		},
	},
	{
		name:           "slow_cadence",
		threshold:      "cadence < 100 steps/min",
		evidenceLevel:  "strong",
		evidenceKey:    "cadence_norms",
		recommendation: "Walking cadence is below the typical adult range; assess for pain, fatigue or fear of falling as limiting factors.",
		applies: func(s assessmentSnapshot) bool {
			return s.Cadence == CadenceSlow
		},
	},
	{
		name:           "fast_cadence",
		threshold:      "cadence > 130 steps/min",
		evidenceLevel:  "moderate",
		evidenceKey:    "cadence_norms",
		recommendation: "Walking cadence is above the typical range; short hurried steps can indicate compensation for instability.",
		applies: func(s assessmentSnapshot) bool {
			return s.Cadence == CadenceFast
		},
	},
	{
		name:           "low_stability",
		threshold:      "stability_index > 0.30",
		evidenceLevel:  "moderate",
		evidenceKey:    "postural_stability",
		recommendation: "Lateral center-of-mass control is reduced; balance training and a falls-risk review are advisable.",
		applies: func(s assessmentSnapshot) bool {
			return s.Stability == StabilityLow
		},
	},
	{
		name:           "poor_consistency",
		threshold:      "velocity_cv > 0.60",
		evidenceLevel:  "strong",
		evidenceKey:    "gait_variability",
		recommendation: "Stride-to-stride speed varies widely; high gait variability is associated with elevated fall risk.",
		applies: func(s assessmentSnapshot) bool {
			return s.Consistency == ConsistencyPoor
		},
	},
	{
		name:           "jerky_movement",
		threshold:      "mean_jerk > 300",
		evidenceLevel:  "moderate",
		evidenceKey:    "movement_smoothness",
		recommendation: "Movement smoothness is reduced; jerky progression can reflect impaired motor control and warrants follow-up.",
		applies: func(s assessmentSnapshot) bool {
			return s.Smoothness == MovementJerky
		},
	},
	{
		name:           "thin_cycle_support",
		threshold:      "cycles_per_side < 2",
		evidenceLevel:  "limited",
		evidenceKey:    "screening_quality",
		recommendation: "Too few complete gait cycles were captured for a reliable screen; record a longer walking bout.",
		applies: func(s assessmentSnapshot) bool {
			return s.CyclesLeft < 2 || s.CyclesRight < 2
		},
	},
	{
		name:           "low_coverage",
		threshold:      "valid_frame_fraction < 0.50",
		evidenceLevel:  "limited",
		evidenceKey:    "screening_quality",
		recommendation: "Keypoint tracking quality was low for much of the recording; improve lighting and camera placement and re-record.",
		applies: func(s assessmentSnapshot) bool {
			return s.Coverage < 0.50
		},
	},
}

// evaluateRules maps the classification snapshot to the overall level,
// confidence and accumulated recommendations.
func evaluateRules(s assessmentSnapshot) OverallAssessment {
	recommendations := []ClinicalRecommendation{}
	seen := make(map[string]bool)
	for _, rule := range clinicalRules {
		if !rule.applies(s) || seen[rule.recommendation] {
			continue
		}
		seen[rule.recommendation] = true
		primary, supporting := evidenceFor(rule.evidenceKey)
		recommendations = append(recommendations, ClinicalRecommendation{
			Text:               rule.recommendation,
			ClinicalThreshold:  rule.threshold,
			EvidenceLevel:      rule.evidenceLevel,
			PrimarySource:      primary,
			SupportingEvidence: supporting,
		})
	}

	return OverallAssessment{
		Level:           overallLevel(s),
		Confidence:      overallConfidence(s),
		Recommendations: recommendations,
	}
}

// overallLevel bands the severity points accumulated across the channels.
// Unknown channels contribute nothing: a sparse recording degrades the
// confidence, not the level.
func overallLevel(s assessmentSnapshot) OverallLevel {
	unknown := 0
	points := 0

	switch s.Symmetry {
	case SymmetryUnknown:
		unknown++
	case MildlyAsymmetric:
		points++
	case ModeratelyAsymmetric:
		points += 2
	case SeverelyAsymmetric:
		points += 3
	}
	switch s.Cadence {
	case CadenceUnknown:
		unknown++
	case CadenceFast:
		points++
	case CadenceSlow:
		points += 2
	}
	switch s.Stability {
	case StabilityUnknown:
		unknown++
	case StabilityMedium:
		points++
	case StabilityLow:
		points += 2
	}
	switch s.Consistency {
	case ConsistencyUnknown:
		unknown++
	case ConsistencyModerate:
		points++
	case ConsistencyPoor:
		points += 2
	}
	switch s.Smoothness {
	case SmoothnessUnknown:
		unknown++
	case MovementModerate:
		points++
	case MovementJerky:
		points += 2
	}

	if unknown >= 3 {
		return OverallUnknown
	}
	switch {
	case points <= 1:
		return OverallGood
	case points <= 4:
		return OverallModerate
	default:
		return OverallPoor
	}
}

// overallConfidence reflects upstream data quality: feature coverage, cycle
// support and how many channels degraded to unknown.
func overallConfidence(s assessmentSnapshot) ConfidenceLevel {
	unknown := 0
	if s.Symmetry == SymmetryUnknown {
		unknown++
	}
	if s.Cadence == CadenceUnknown {
		unknown++
	}
	if s.Stability == StabilityUnknown {
		unknown++
	}
	if s.Consistency == ConsistencyUnknown {
		unknown++
	}
	if s.Smoothness == SmoothnessUnknown {
		unknown++
	}

	switch {
	case unknown >= 3 || s.Coverage < 0.5:
		return ConfidenceLow
	case unknown > 0 || s.Coverage < 0.8 || s.CyclesLeft < 2 || s.CyclesRight < 2:
		return ConfidenceMedium
	default:
		return ConfidenceHigh
	}
}

func cycleCountsPerSide(cycles []GaitCycle) (left, right int) {
	for _, c := range cycles {
		switch c.Side {
		case pose.SideLeft:
			left++
		case pose.SideRight:
			right++
		}
	}
	return left, right
}
