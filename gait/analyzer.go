package gait

// Analysis Orchestration
//
// The analyzer sequences the pipeline stages over one pose sequence:
//
//	pending -> extracting_features -> detecting_cycles -> analyzing
//	        -> scoring -> complete
//
// with failed as the terminal stage for unrecoverable input errors. The
// symmetry and stability analyses depend only on the feature and cycle
// outputs and run concurrently. Apart from the analysis id and the wall-clock
// performance metrics, the same sequence under the same configuration always
// produces the same result: the pipeline performs no I/O and keeps no state
// between invocations, so one analyzer may serve concurrent callers.

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"gait-analysis/pose"
	"gait-analysis/utils"
)

// Stage names one step of the analysis state machine.
type Stage string

const (
	StagePending            Stage = "pending"
	StageExtractingFeatures Stage = "extracting_features"
	StageDetectingCycles    Stage = "detecting_cycles"
	StageAnalyzing          Stage = "analyzing"
	StageScoring            Stage = "scoring"
	StageComplete           Stage = "complete"
	StageFailed             Stage = "failed"
)

// ProgressFunc observes stage transitions, e.g. to forward progress events
// to a client.
type ProgressFunc func(stage Stage)

// Analyzer is the orchestrator. Construct once, use for any number of
// concurrent analyses.
type Analyzer struct {
	cfg     Config
	refs    *ReferenceSet
	onStage ProgressFunc
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithReferenceSet enables normative profile matching on every result.
func WithReferenceSet(rs *ReferenceSet) Option {
	return func(a *Analyzer) { a.refs = rs }
}

// WithProgress sets a default stage observer for Analyze.
func WithProgress(fn ProgressFunc) Option {
	return func(a *Analyzer) { a.onStage = fn }
}

// NewAnalyzer validates the configuration and builds an analyzer. A
// ConfigError here means no sequence will ever be processed with these
// thresholds.
func NewAnalyzer(cfg Config, opts ...Option) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &Analyzer{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Config returns the analyzer's configuration.
func (a *Analyzer) Config() Config {
	return a.cfg
}

// ReferenceProfileCount reports the size of the configured reference set.
func (a *Analyzer) ReferenceProfileCount() int {
	return a.refs.ProfileCount()
}

// Analyze runs the full pipeline with the analyzer's default progress
// observer.
func (a *Analyzer) Analyze(ctx context.Context, seq *pose.PoseSequence) (*PoseAnalysisResult, error) {
	return a.AnalyzeWithProgress(ctx, seq, a.onStage)
}

// AnalyzeWithProgress runs the full pipeline, reporting stage transitions to
// the supplied observer. Cancellation is advisory: the context is checked
// between stages only, since no stage blocks or performs I/O.
func (a *Analyzer) AnalyzeWithProgress(ctx context.Context, seq *pose.PoseSequence, progress ProgressFunc) (*PoseAnalysisResult, error) {
	logger := utils.GetLogger()
	started := time.Now()

	report := func(stage Stage) {
		if progress != nil {
			progress(stage)
		}
	}
	report(StagePending)

	if seq == nil {
		report(StageFailed)
		return nil, &pose.InputError{Reason: "sequence is nil"}
	}
	if err := seq.Validate(); err != nil {
		report(StageFailed)
		return nil, err
	}

	report(StageExtractingFeatures)
	features := ExtractFeatures(seq, a.cfg)
	if err := ctx.Err(); err != nil {
		report(StageFailed)
		return nil, err
	}

	report(StageDetectingCycles)
	cycles := DetectCycles(seq, a.cfg)
	if err := ctx.Err(); err != nil {
		report(StageFailed)
		return nil, err
	}

	report(StageAnalyzing)
	var symmetry SymmetryAssessment
	var stability StabilityAssessment
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		symmetry = AnalyzeSymmetry(features, cycles, a.cfg)
	}()
	go func() {
		defer wg.Done()
		stability = AnalyzeStability(features, a.cfg)
	}()
	wg.Wait()
	if err := ctx.Err(); err != nil {
		report(StageFailed)
		return nil, err
	}

	report(StageScoring)
	cadence := a.assessCadence(cycles, seq.FPS)
	quality := a.assessQuality(features)
	periodicity := StridePeriodicity(seq, a.cfg)

	left, right := cycleCountsPerSide(cycles)
	overall := evaluateRules(assessmentSnapshot{
		Symmetry:      symmetry.Classification,
		SymmetryScore: symmetry.Score,
		Cadence:       cadence.Level,
		Stability:     stability.Level,
		Consistency:   quality.Consistency,
		Smoothness:    quality.Smoothness,
		Coverage:      features.Summary.ValidFrameFraction,
		CyclesLeft:    left,
		CyclesRight:   right,
	})

	result := &PoseAnalysisResult{
		AnalysisID:       uuid.NewString(),
		DatasetID:        seq.DatasetID,
		SequenceID:       seq.SequenceID,
		FrameCount:       seq.FrameCount(),
		FPS:              seq.FPS,
		DurationSeconds:  seq.Duration,
		RuleTableVersion: a.cfg.RuleVersion,
		FeatureSummary:   features.Summary,
		Cycles:           cycles,
		Symmetry:         symmetry,
		Cadence:          cadence,
		Stability:        stability,
		Quality:          quality,
		Overall:          overall,
	}
	result.Performance = PerformanceMetrics{
		ProcessingMs: float64(time.Since(started).Microseconds()) / 1000,
		QualityScore: qualityScore(features.Summary.ValidFrameFraction, left+right, periodicity),
		Periodicity:  periodicity,
	}
	result.Normative = a.refs.Match(result)

	report(StageComplete)
	logger.Info("analysis complete",
		slog.String("analysisID", result.AnalysisID),
		slog.Int("frames", result.FrameCount),
		slog.Int("cycles", len(cycles)),
		slog.String("overall", string(overall.Level)),
		slog.String("confidence", string(overall.Confidence)),
		slog.Float64("processingMs", result.Performance.ProcessingMs),
	)
	return result, nil
}

// assessCadence computes steps per minute over the time the detected cycles
// cover. Each cycle is one stride, i.e. two steps. Summing spans in whole
// frames keeps the arithmetic exact for regularly sampled sequences.
func (a *Analyzer) assessCadence(cycles []GaitCycle, fps float64) CadenceAssessment {
	if len(cycles) == 0 || fps <= 0 {
		return CadenceAssessment{StepsPerMinute: InvalidMetric(), Level: CadenceUnknown}
	}

	totalFrames := 0
	for _, c := range cycles {
		totalFrames += c.EndFrame - c.StartFrame
	}
	if totalFrames <= 0 {
		return CadenceAssessment{StepsPerMinute: InvalidMetric(), Level: CadenceUnknown}
	}

	seconds := float64(totalFrames) / fps
	steps := float64(len(cycles) * 2)
	spm := steps * 60 / seconds

	level := CadenceNormal
	switch {
	case spm < a.cfg.CadenceSlowBelow:
		level = CadenceSlow
	case spm > a.cfg.CadenceFastAbove:
		level = CadenceFast
	}
	return CadenceAssessment{StepsPerMinute: ValidMetric(spm), Level: level}
}

func (a *Analyzer) assessQuality(features *FeatureSet) MovementQuality {
	quality := MovementQuality{
		VelocityCV:  features.Summary.VelocityCV,
		Consistency: ConsistencyUnknown,
		MeanJerk:    features.Summary.MeanJerk,
		Smoothness:  SmoothnessUnknown,
	}
	if quality.VelocityCV.Valid {
		switch {
		case quality.VelocityCV.Value < a.cfg.ConsistencyGoodCut:
			quality.Consistency = ConsistencyGood
		case quality.VelocityCV.Value <= a.cfg.ConsistencyPoorCut:
			quality.Consistency = ConsistencyModerate
		default:
			quality.Consistency = ConsistencyPoor
		}
	}
	if quality.MeanJerk.Valid {
		switch {
		case quality.MeanJerk.Value < a.cfg.SmoothnessSmoothCut:
			quality.Smoothness = MovementSmooth
		case quality.MeanJerk.Value <= a.cfg.SmoothnessJerkyCut:
			quality.Smoothness = MovementModerate
		default:
			quality.Smoothness = MovementJerky
		}
	}
	return quality
}

// qualityScore blends the data-quality signals into a single [0, 1] figure
// for the performance metadata.
func qualityScore(coverage float64, cycleCount int, periodicity Metric) float64 {
	cycleTerm := float64(cycleCount) / 4
	if cycleTerm > 1 {
		cycleTerm = 1
	}
	periodTerm := 0.0
	if periodicity.Valid {
		periodTerm = periodicity.Value
	}
	return 0.5*coverage + 0.3*cycleTerm + 0.2*periodTerm
}
