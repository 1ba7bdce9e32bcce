package gait

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"gait-analysis/pose"
)

func newTestAnalyzer(t *testing.T, opts ...Option) *Analyzer {
	t.Helper()

	analyzer, err := NewAnalyzer(DefaultConfig(), opts...)
	if err != nil {
		t.Fatalf("NewAnalyzer returned error: %v", err)
	}
	return analyzer
}

func TestAnalyzeCleanWalk(t *testing.T) {
	t.Parallel()

	seq := synthSequence(t, nil)
	result, err := newTestAnalyzer(t).Analyze(context.Background(), seq)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	if result.AnalysisID == "" {
		t.Error("missing analysis id")
	}
	if result.RuleTableVersion != RuleTableVersion {
		t.Errorf("rule table version = %s, want %s", result.RuleTableVersion, RuleTableVersion)
	}
	if result.FrameCount != 120 || result.FPS != 30 {
		t.Errorf("frame metadata = %d @ %g fps", result.FrameCount, result.FPS)
	}
	if len(result.Cycles) != 5 {
		t.Fatalf("cycle count = %d, want 5", len(result.Cycles))
	}

	if !result.Cadence.StepsPerMinute.Valid {
		t.Fatal("cadence unavailable")
	}
	if math.Abs(result.Cadence.StepsPerMinute.Value-100) > 1e-9 {
		t.Errorf("cadence = %g, want exactly 100", result.Cadence.StepsPerMinute.Value)
	}
	if result.Cadence.Level != CadenceNormal {
		t.Errorf("cadence level = %s, want %s", result.Cadence.Level, CadenceNormal)
	}

	if result.Symmetry.Classification != Symmetric {
		t.Errorf("symmetry = %s, want %s", result.Symmetry.Classification, Symmetric)
	}
	if result.Stability.Level != StabilityHigh {
		t.Errorf("stability = %s, want %s", result.Stability.Level, StabilityHigh)
	}
	if result.Quality.Consistency != ConsistencyGood {
		t.Errorf("consistency = %s, want %s", result.Quality.Consistency, ConsistencyGood)
	}
	if result.Quality.Smoothness != MovementSmooth {
		t.Errorf("smoothness = %s, want %s", result.Quality.Smoothness, MovementSmooth)
	}
	if result.Overall.Level != OverallGood {
		t.Errorf("overall = %s, want %s", result.Overall.Level, OverallGood)
	}
	if result.Overall.Confidence != ConfidenceHigh {
		t.Errorf("confidence = %s, want %s", result.Overall.Confidence, ConfidenceHigh)
	}
	if !result.Performance.Periodicity.Valid || result.Performance.Periodicity.Value < 0.5 {
		t.Errorf("periodicity = %+v, want > 0.5", result.Performance.Periodicity)
	}
	if result.Performance.QualityScore < 0.8 {
		t.Errorf("quality score = %g, want high on a clean walk", result.Performance.QualityScore)
	}
	if result.Normative != nil {
		t.Error("normative comparison present without a reference set")
	}
}

func TestAnalyzeScenarioBattery(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name           string
		mutate         func(*pose.SynthConfig)
		wantSymmetry   SymmetryLevel
		wantStability  StabilityLevel
		wantOverall    OverallLevel
		wantConfidence ConfidenceLevel
	}{
		{
			name:           "right lift halved",
			mutate:         func(cfg *pose.SynthConfig) { cfg.RightLift = 6 },
			wantSymmetry:   ModeratelyAsymmetric,
			wantStability:  StabilityHigh,
			wantOverall:    OverallModerate,
			wantConfidence: ConfidenceHigh,
		},
		{
			name:           "unstable sway",
			mutate:         func(cfg *pose.SynthConfig) { cfg.SwayAmplitude = 60 },
			wantSymmetry:   Symmetric,
			wantStability:  StabilityLow,
			wantOverall:    OverallPoor,
			wantConfidence: ConfidenceHigh,
		},
		{
			name:           "low confidence tracking",
			mutate:         func(cfg *pose.SynthConfig) { cfg.Confidence = 0.1 },
			wantSymmetry:   SymmetryUnknown,
			wantStability:  StabilityUnknown,
			wantOverall:    OverallUnknown,
			wantConfidence: ConfidenceLow,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			seq := synthSequence(t, tc.mutate)
			result, err := newTestAnalyzer(t).Analyze(context.Background(), seq)
			if err != nil {
				t.Fatalf("Analyze returned error: %v", err)
			}

			if result.Symmetry.Classification != tc.wantSymmetry {
				t.Errorf("symmetry = %s, want %s", result.Symmetry.Classification, tc.wantSymmetry)
			}
			if result.Stability.Level != tc.wantStability {
				t.Errorf("stability = %s, want %s", result.Stability.Level, tc.wantStability)
			}
			if result.Overall.Level != tc.wantOverall {
				t.Errorf("overall = %s, want %s", result.Overall.Level, tc.wantOverall)
			}
			if result.Overall.Confidence != tc.wantConfidence {
				t.Errorf("confidence = %s, want %s", result.Overall.Confidence, tc.wantConfidence)
			}
		})
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	t.Parallel()

	seq := synthSequence(t, nil)
	analyzer := newTestAnalyzer(t)

	first, err := analyzer.Analyze(context.Background(), seq)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := analyzer.Analyze(context.Background(), seq)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if first.AnalysisID == second.AnalysisID {
		t.Error("analysis ids should differ between runs")
	}
	first.AnalysisID, second.AnalysisID = "", ""
	first.Performance.ProcessingMs, second.Performance.ProcessingMs = 0, 0

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(a) != string(b) {
		t.Error("repeated analyses of the same sequence disagree")
	}
}

func TestAnalyzeRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	analyzer := newTestAnalyzer(t)

	var inputErr *pose.InputError
	if _, err := analyzer.Analyze(context.Background(), nil); !errors.As(err, &inputErr) {
		t.Errorf("nil sequence: got %v, want InputError", err)
	}

	bad := &pose.PoseSequence{
		Frames: []pose.Frame{{Number: 0}},
		FPS:    -1,
	}
	if _, err := analyzer.Analyze(context.Background(), bad); !errors.As(err, &inputErr) {
		t.Errorf("negative fps: got %v, want InputError", err)
	}
}

func TestAnalyzeSingleFrameDegradesToUnknown(t *testing.T) {
	t.Parallel()

	seq, err := pose.NewPoseSequence([]pose.Frame{{Number: 0}}, 30)
	if err != nil {
		t.Fatalf("NewPoseSequence returned error: %v", err)
	}

	result, err := newTestAnalyzer(t).Analyze(context.Background(), seq)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if result.Overall.Level != OverallUnknown {
		t.Errorf("overall = %s, want %s", result.Overall.Level, OverallUnknown)
	}
	if result.Overall.Confidence != ConfidenceLow {
		t.Errorf("confidence = %s, want %s", result.Overall.Confidence, ConfidenceLow)
	}
	if len(result.Cycles) != 0 {
		t.Errorf("cycles = %d, want 0", len(result.Cycles))
	}
}

func TestAnalyzeHonorsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	seq := synthSequence(t, nil)
	if _, err := newTestAnalyzer(t).Analyze(ctx, seq); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestAnalyzeReportsStageOrder(t *testing.T) {
	t.Parallel()

	var stages []Stage
	progress := func(stage Stage) { stages = append(stages, stage) }

	seq := synthSequence(t, nil)
	if _, err := newTestAnalyzer(t).AnalyzeWithProgress(context.Background(), seq, progress); err != nil {
		t.Fatalf("AnalyzeWithProgress returned error: %v", err)
	}

	want := []Stage{
		StagePending,
		StageExtractingFeatures,
		StageDetectingCycles,
		StageAnalyzing,
		StageScoring,
		StageComplete,
	}
	if len(stages) != len(want) {
		t.Fatalf("stages = %v, want %v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Fatalf("stage %d = %s, want %s", i, stages[i], want[i])
		}
	}
}

func TestAnalyzeWithReferenceSet(t *testing.T) {
	t.Parallel()

	rs, err := NewReferenceSet(testProfiles())
	if err != nil {
		t.Fatalf("NewReferenceSet returned error: %v", err)
	}
	analyzer := newTestAnalyzer(t, WithReferenceSet(rs))
	if analyzer.ReferenceProfileCount() != 3 {
		t.Errorf("profile count = %d, want 3", analyzer.ReferenceProfileCount())
	}

	seq := synthSequence(t, nil)
	result, err := analyzer.Analyze(context.Background(), seq)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if result.Normative == nil {
		t.Fatal("no normative comparison on a complete result")
	}
	if result.Normative.Profile == "" {
		t.Error("normative comparison has no profile label")
	}
}

func TestNewAnalyzerRejectsBadConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.SymmetryMildCut = 0.5 // above the moderate cut

	var cfgErr *ConfigError
	if _, err := NewAnalyzer(cfg); !errors.As(err, &cfgErr) {
		t.Errorf("got %v, want ConfigError", err)
	}
}
