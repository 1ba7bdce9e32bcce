package gait

import (
	"math"
	"testing"

	"gait-analysis/pose"
)

func analyzeSymmetryOf(t *testing.T, mutate func(*pose.SynthConfig)) SymmetryAssessment {
	t.Helper()

	seq := synthSequence(t, mutate)
	cfg := DefaultConfig()
	features := ExtractFeatures(seq, cfg)
	cycles := DetectCycles(seq, cfg)
	return AnalyzeSymmetry(features, cycles, cfg)
}

func TestSymmetricWalkScoresSymmetric(t *testing.T) {
	t.Parallel()

	assessment := analyzeSymmetryOf(t, nil)
	if !assessment.Score.Valid {
		t.Fatal("symmetry score unavailable on a clean walk")
	}
	if assessment.Score.Value >= 0.05 {
		t.Errorf("symmetry score = %g, want below 0.05 on identical feet", assessment.Score.Value)
	}
	if assessment.Classification != Symmetric {
		t.Errorf("classification = %s, want %s", assessment.Classification, Symmetric)
	}
	if !assessment.TemporalAsymmetry.Valid || assessment.TemporalAsymmetry.Value > 1e-9 {
		t.Errorf("temporal asymmetry = %+v, want 0", assessment.TemporalAsymmetry)
	}
}

func TestAsymmetricLegClassifiedModerate(t *testing.T) {
	t.Parallel()

	// Half the right lift amplitude.
	assessment := analyzeSymmetryOf(t, func(cfg *pose.SynthConfig) {
		cfg.RightLift = 6
	})
	if !assessment.Score.Valid {
		t.Fatal("symmetry score unavailable")
	}
	if assessment.Classification != ModeratelyAsymmetric {
		t.Errorf("classification = %s (score %g), want %s",
			assessment.Classification, assessment.Score.Value, ModeratelyAsymmetric)
	}
	if len(assessment.Joints) == 0 {
		t.Fatal("no joint ranking produced")
	}
	// The reduced lift halves the right knee's flexion range, so the knee
	// channel dominates the ranking.
	if assessment.Joints[0].Joint != "knee" {
		t.Errorf("top joint = %s, want knee", assessment.Joints[0].Joint)
	}
	if assessment.Joints[0].Severity != AsymmetryHigh {
		t.Errorf("top joint severity = %s, want %s", assessment.Joints[0].Severity, AsymmetryHigh)
	}
	if len(assessment.Joints) > DefaultConfig().TopJoints {
		t.Errorf("ranking has %d joints, config allows %d", len(assessment.Joints), DefaultConfig().TopJoints)
	}
}

func TestSymmetryScoreGrowsWithAsymmetry(t *testing.T) {
	t.Parallel()

	var prev float64 = -1
	for _, lift := range []float64{12, 6, 4, 2} {
		lift := lift
		assessment := analyzeSymmetryOf(t, func(cfg *pose.SynthConfig) {
			cfg.RightLift = lift
		})
		if !assessment.Score.Valid {
			t.Fatalf("score unavailable at right lift %g", lift)
		}
		if assessment.Score.Value <= prev {
			t.Fatalf("score %g at right lift %g did not grow past %g",
				assessment.Score.Value, lift, prev)
		}
		prev = assessment.Score.Value
	}
}

func TestGatedJointContributesNoChannel(t *testing.T) {
	t.Parallel()

	seq := synthSequence(t, func(cfg *pose.SynthConfig) {
		cfg.RightLift = 6
	})
	// Drop both knees below the acceptance threshold on 60% of the frames.
	// Every triplet touching a knee lands under the coverage floor, so the
	// leg asymmetry must not leak into the score through any of them.
	gatedFrames := int(float64(seq.FrameCount()) * 0.6)
	for i := 0; i < gatedFrames; i++ {
		for j := range seq.Frames[i].Keypoints {
			kp := &seq.Frames[i].Keypoints[j]
			if kp.ID == pose.LeftKnee || kp.ID == pose.RightKnee {
				kp.Confidence = 0.1
			}
		}
	}

	cfg := DefaultConfig()
	features := ExtractFeatures(seq, cfg)
	cycles := DetectCycles(seq, cfg)
	assessment := AnalyzeSymmetry(features, cycles, cfg)

	if !assessment.Score.Valid {
		t.Fatal("score should still be available from the ungated channels")
	}
	for _, ja := range assessment.Joints {
		if ja.Joint == "knee" || ja.Joint == "hip" || ja.Joint == "ankle" {
			t.Errorf("joint %s below the coverage floor appears in the ranking", ja.Joint)
		}
	}
	if assessment.Score.Value >= cfg.SymmetryMildCut {
		t.Errorf("score = %g, want the gated leg channels excluded", assessment.Score.Value)
	}
	if assessment.Classification != Symmetric {
		t.Errorf("classification = %s, want %s from the remaining channels",
			assessment.Classification, Symmetric)
	}
}

func TestSymmetryUnknownWithoutCyclePairs(t *testing.T) {
	t.Parallel()

	seq := synthSequence(t, func(cfg *pose.SynthConfig) {
		cfg.Frames = 50 // one left cycle at most, no bilateral pair after pairing
	})
	cfg := DefaultConfig()
	features := ExtractFeatures(seq, cfg)

	assessment := AnalyzeSymmetry(features, nil, cfg)
	if assessment.Score.Valid {
		t.Error("score should be unavailable with no cycles")
	}
	if assessment.Classification != SymmetryUnknown {
		t.Errorf("classification = %s, want %s", assessment.Classification, SymmetryUnknown)
	}
	if len(assessment.Joints) != 0 {
		t.Errorf("joint ranking should be empty, got %d entries", len(assessment.Joints))
	}
}

func TestNormalizedDifference(t *testing.T) {
	t.Parallel()

	if got := normalizedDifference(10, 10); got != 0 {
		t.Errorf("equal sides = %g, want 0", got)
	}
	if got := normalizedDifference(0, 0); got != 0 {
		t.Errorf("both near zero = %g, want 0", got)
	}
	want := math.Abs(30.0-10.0) / 20.0
	if got := normalizedDifference(30, 10); math.Abs(got-want) > 1e-12 {
		t.Errorf("normalizedDifference(30, 10) = %g, want %g", got, want)
	}
}

func TestClassifySymmetryCutPoints(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cases := []struct {
		score float64
		want  SymmetryLevel
	}{
		{0.0, Symmetric},
		{0.09, Symmetric},
		{0.10, MildlyAsymmetric},
		{0.19, MildlyAsymmetric},
		{0.20, ModeratelyAsymmetric},
		{0.30, ModeratelyAsymmetric},
		{0.31, SeverelyAsymmetric},
	}
	for _, tc := range cases {
		if got := classifySymmetry(tc.score, cfg); got != tc.want {
			t.Errorf("classifySymmetry(%g) = %s, want %s", tc.score, got, tc.want)
		}
	}
}
