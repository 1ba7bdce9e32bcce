package gait

// Bilateral Symmetry Analysis
//
// For each bilaterally tracked joint the analysis compares peak flexion per
// gait cycle between sides:
//
//	asymmetry = |left - right| / ((left + right) / 2)
//
// Peak flexion within a cycle is 180 degrees minus the minimum joint angle
// over the cycle's frames, so a joint that stays extended scores near zero on
// both sides. Per-joint asymmetries are averaged across the available cycle
// pairs; a temporal channel applies the same formula to mean cycle duration.
// The symmetry score is the mean over the available channels, so increasing
// any single channel never lowers the score.
//
// A joint below the coverage floor on either side contributes no channel.
// Fewer than one complete bilateral cycle pair yields the unknown
// classification with an empty ranking, never a default "symmetric".

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"gait-analysis/pose"
)

// AnalyzeSymmetry compares left/right kinematics across the detected cycles.
func AnalyzeSymmetry(features *FeatureSet, cycles []GaitCycle, cfg Config) SymmetryAssessment {
	assessment := SymmetryAssessment{
		Score:             InvalidMetric(),
		Classification:    SymmetryUnknown,
		TemporalAsymmetry: InvalidMetric(),
		Joints:            []JointAsymmetry{},
	}

	left := cyclesOfSide(cycles, pose.SideLeft)
	right := cyclesOfSide(cycles, pose.SideRight)
	pairs := len(left)
	if len(right) < pairs {
		pairs = len(right)
	}
	if pairs < 1 || features == nil || len(features.Frames) == 0 {
		return assessment
	}

	var channels []float64
	var ranked []JointAsymmetry

	for _, pair := range BilateralJoints() {
		if features.Summary.JointCoverage[pair.Left] < cfg.CoverageFloor ||
			features.Summary.JointCoverage[pair.Right] < cfg.CoverageFloor {
			continue
		}

		var samples []float64
		for i := 0; i < pairs; i++ {
			l, okL := peakFlexion(features, left[i], pair.Left)
			r, okR := peakFlexion(features, right[i], pair.Right)
			if !okL || !okR {
				continue
			}
			samples = append(samples, normalizedDifference(l, r))
		}
		if len(samples) == 0 {
			continue
		}

		mean, err := stats.Mean(samples)
		if err != nil {
			continue
		}
		channels = append(channels, mean)
		ranked = append(ranked, JointAsymmetry{
			Joint:     pair.Name,
			Magnitude: mean,
			Severity:  severityFor(mean, cfg),
		})
	}

	if temporal, ok := temporalAsymmetry(left, right); ok {
		assessment.TemporalAsymmetry = ValidMetric(temporal)
		channels = append(channels, temporal)
	}

	if len(channels) == 0 {
		return assessment
	}

	score, err := stats.Mean(channels)
	if err != nil {
		return assessment
	}
	assessment.Score = ValidMetric(score)
	assessment.Classification = classifySymmetry(score, cfg)

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Magnitude != ranked[j].Magnitude {
			return ranked[i].Magnitude > ranked[j].Magnitude
		}
		return ranked[i].Joint < ranked[j].Joint
	})
	if len(ranked) > cfg.TopJoints {
		ranked = ranked[:cfg.TopJoints]
	}
	assessment.Joints = ranked

	return assessment
}

// peakFlexion is 180 degrees minus the minimum joint angle over the cycle's
// frames. False when the cycle contains no valid angle sample for the joint.
func peakFlexion(features *FeatureSet, cycle GaitCycle, joint Joint) (float64, bool) {
	minAngle := math.Inf(1)
	found := false
	for i := range features.Frames {
		f := &features.Frames[i]
		if f.FrameNumber < cycle.StartFrame || f.FrameNumber > cycle.EndFrame {
			continue
		}
		if m := f.Angles[joint]; m.Valid && m.Value < minAngle {
			minAngle = m.Value
			found = true
		}
	}
	if !found {
		return 0, false
	}
	return 180 - minAngle, true
}

// normalizedDifference is the bilateral asymmetry formula. Two near-zero
// values mean both sides agree, not an undefined ratio.
func normalizedDifference(left, right float64) float64 {
	mean := (left + right) / 2
	if math.Abs(mean) < 1e-9 {
		return 0
	}
	return math.Abs(left-right) / math.Abs(mean)
}

func temporalAsymmetry(left, right []GaitCycle) (float64, bool) {
	meanDuration := func(cycles []GaitCycle) (float64, bool) {
		if len(cycles) == 0 {
			return 0, false
		}
		var sum float64
		for _, c := range cycles {
			sum += c.Duration
		}
		return sum / float64(len(cycles)), true
	}
	l, okL := meanDuration(left)
	r, okR := meanDuration(right)
	if !okL || !okR {
		return 0, false
	}
	return normalizedDifference(l, r), true
}

func classifySymmetry(score float64, cfg Config) SymmetryLevel {
	switch {
	case score < cfg.SymmetryMildCut:
		return Symmetric
	case score < cfg.SymmetryModerateCut:
		return MildlyAsymmetric
	case score <= cfg.SymmetrySevereCut:
		return ModeratelyAsymmetric
	default:
		return SeverelyAsymmetric
	}
}

func severityFor(magnitude float64, cfg Config) AsymmetrySeverity {
	switch {
	case magnitude < cfg.SymmetryMildCut:
		return AsymmetryLow
	case magnitude < cfg.SymmetryModerateCut:
		return AsymmetryModerate
	default:
		return AsymmetryHigh
	}
}

func cyclesOfSide(cycles []GaitCycle, side pose.Side) []GaitCycle {
	var out []GaitCycle
	for _, c := range cycles {
		if c.Side == side {
			out = append(out, c)
		}
	}
	return out
}
