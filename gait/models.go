package gait

import (
	"encoding/json"

	"gait-analysis/pose"
)

// Metric is a scored quantity that is either a valid number or explicitly
// unavailable. Confidence gating produces unavailable metrics; consumers must
// handle both cases instead of treating missing data as zero.
type Metric struct {
	Value float64
	Valid bool
}

// ValidMetric wraps a computed value.
func ValidMetric(v float64) Metric {
	return Metric{Value: v, Valid: true}
}

// InvalidMetric marks a quantity as unavailable.
func InvalidMetric() Metric {
	return Metric{}
}

type metricJSON struct {
	Value *float64 `json:"value,omitempty"`
	Valid bool     `json:"valid"`
}

func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return json.Marshal(metricJSON{Valid: false})
	}
	v := m.Value
	return json.Marshal(metricJSON{Value: &v, Valid: true})
}

func (m *Metric) UnmarshalJSON(data []byte) error {
	var raw metricJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Valid = raw.Valid && raw.Value != nil
	if m.Valid {
		m.Value = *raw.Value
	} else {
		m.Value = 0
	}
	return nil
}

// Joint identifies one tracked joint angle, e.g. "left_knee".
type Joint string

const (
	LeftKneeJoint      Joint = "left_knee"
	RightKneeJoint     Joint = "right_knee"
	LeftHipJoint       Joint = "left_hip"
	RightHipJoint      Joint = "right_hip"
	LeftAnkleJoint     Joint = "left_ankle"
	RightAnkleJoint    Joint = "right_ankle"
	LeftShoulderJoint  Joint = "left_shoulder"
	RightShoulderJoint Joint = "right_shoulder"
	LeftElbowJoint     Joint = "left_elbow"
	RightElbowJoint    Joint = "right_elbow"
)

// JointPair binds the left and right instance of a bilaterally tracked joint.
type JointPair struct {
	Name  string
	Left  Joint
	Right Joint
}

// BilateralJoints lists the joint pairs compared by the symmetry analysis,
// in a fixed order for deterministic iteration.
func BilateralJoints() []JointPair {
	return []JointPair{
		{Name: "hip", Left: LeftHipJoint, Right: RightHipJoint},
		{Name: "knee", Left: LeftKneeJoint, Right: RightKneeJoint},
		{Name: "ankle", Left: LeftAnkleJoint, Right: RightAnkleJoint},
		{Name: "shoulder", Left: LeftShoulderJoint, Right: RightShoulderJoint},
		{Name: "elbow", Left: LeftElbowJoint, Right: RightElbowJoint},
	}
}

// PointMetric is a 2-D position that may be unavailable.
type PointMetric struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Valid bool    `json:"valid"`
}

// FeatureFrame holds the per-frame kinematic quantities derived from a pose
// frame and its neighbours. Produced by ExtractFeatures; read-only downstream.
type FeatureFrame struct {
	FrameNumber int              `json:"frame_number"`
	Timestamp   float64          `json:"timestamp"`
	Angles      map[Joint]Metric `json:"angles"`
	COM         PointMetric      `json:"com"`
	COMVelocity Metric           `json:"com_velocity"`
	COMAccel    Metric           `json:"com_acceleration"`
	COMJerk     Metric           `json:"com_jerk"`
	HipWidth    Metric           `json:"hip_width"`
}

// FeatureSummary aggregates the feature stream across the whole sequence.
// Aggregates cover only the frames where the underlying metric was valid; a
// metric whose coverage falls below the configured floor is unavailable.
type FeatureSummary struct {
	MeanVelocity       Metric            `json:"mean_velocity"`
	VelocityCV         Metric            `json:"velocity_cv"`
	MeanJerk           Metric            `json:"mean_jerk"`
	JointCoverage      map[Joint]float64 `json:"joint_coverage"`
	COMCoverage        float64           `json:"com_coverage"`
	ValidFrameFraction float64           `json:"valid_frame_fraction"`
}

// FeatureSet is the output of feature extraction for one sequence.
type FeatureSet struct {
	Frames  []FeatureFrame `json:"frames"`
	Summary FeatureSummary `json:"summary"`
	FPS     float64        `json:"fps"`
}

// FootEvent is one detected gait event (heel strike or toe-off) for a foot.
type FootEvent struct {
	Side      pose.Side `json:"side"`
	Type      EventType `json:"type"`
	Frame     int       `json:"frame"`
	Timestamp float64   `json:"timestamp"`
}

// EventType labels a foot event.
type EventType string

const (
	HeelStrike EventType = "heel_strike"
	ToeOff     EventType = "toe_off"
)

// GaitCycle spans one heel strike to the next heel strike of the same foot.
// Cycles of the same side never overlap.
type GaitCycle struct {
	Side           pose.Side `json:"side"`
	StartFrame     int       `json:"start_frame"`
	EndFrame       int       `json:"end_frame"`
	Duration       float64   `json:"duration_seconds"`
	StanceFraction Metric    `json:"stance_fraction"`
	SwingFraction  Metric    `json:"swing_fraction"`
	StepLength     Metric    `json:"step_length"`
	StrideLength   Metric    `json:"stride_length"`
	LengthUnit     string    `json:"length_unit,omitempty"`
}

// JointAsymmetry is one joint's bilateral difference, normalized by the side
// mean. Zero means the sides match.
type JointAsymmetry struct {
	Joint     string            `json:"joint"`
	Magnitude float64           `json:"magnitude"`
	Severity  AsymmetrySeverity `json:"severity"`
}

// SymmetryAssessment is the bilateral comparison result.
type SymmetryAssessment struct {
	Score             Metric           `json:"symmetry_score"`
	Classification    SymmetryLevel    `json:"symmetry_classification"`
	TemporalAsymmetry Metric           `json:"temporal_asymmetry"`
	Joints            []JointAsymmetry `json:"joint_asymmetries"`
}

// CadenceAssessment reports steps per minute over the detected cycles.
type CadenceAssessment struct {
	StepsPerMinute Metric       `json:"steps_per_minute"`
	Level          CadenceLevel `json:"cadence_level"`
}

// StabilityAssessment reports the center-of-mass control index.
type StabilityAssessment struct {
	Index Metric         `json:"stability_index"`
	Level StabilityLevel `json:"stability_level"`
}

// MovementQuality combines velocity consistency and smoothness.
type MovementQuality struct {
	VelocityCV  Metric           `json:"velocity_cv"`
	Consistency ConsistencyLevel `json:"velocity_consistency"`
	MeanJerk    Metric           `json:"mean_jerk"`
	Smoothness  SmoothnessLevel  `json:"movement_smoothness"`
}

// ResearchSource is one citation from the static evidence table.
type ResearchSource struct {
	Title      string `json:"title"`
	Authors    string `json:"authors"`
	Venue      string `json:"venue"`
	Year       int    `json:"year"`
	KeyFinding string `json:"key_finding"`
}

// ClinicalRecommendation is emitted by a fired clinical rule. It carries the
// threshold that triggered it and its evidence citations; it is derived
// entirely from assessment inputs and never stored as user data.
type ClinicalRecommendation struct {
	Text               string           `json:"recommendation"`
	ClinicalThreshold  string           `json:"clinical_threshold"`
	EvidenceLevel      string           `json:"evidence_level"`
	PrimarySource      *ResearchSource  `json:"primary_source,omitempty"`
	SupportingEvidence []ResearchSource `json:"supporting_evidence,omitempty"`
}

// OverallAssessment is the headline result of the clinical rule layer.
type OverallAssessment struct {
	Level           OverallLevel             `json:"overall_level"`
	Confidence      ConfidenceLevel          `json:"overall_confidence"`
	Recommendations []ClinicalRecommendation `json:"recommendations"`
}

// NormativeComparison is the closest reference profile, when a reference set
// is configured.
type NormativeComparison struct {
	Profile    string  `json:"profile"`
	Similarity float64 `json:"similarity"`
}

// PerformanceMetrics records processing telemetry. It never influences the
// analysis outcome.
type PerformanceMetrics struct {
	ProcessingMs float64 `json:"processing_ms"`
	QualityScore float64 `json:"quality_score"`
	Periodicity  Metric  `json:"stride_periodicity"`
}

// PoseAnalysisResult is the immutable output aggregate of one analysis
// invocation.
type PoseAnalysisResult struct {
	AnalysisID       string               `json:"analysis_id"`
	DatasetID        string               `json:"dataset_id,omitempty"`
	SequenceID       string               `json:"sequence_id,omitempty"`
	FrameCount       int                  `json:"frame_count"`
	FPS              float64              `json:"fps"`
	DurationSeconds  float64              `json:"duration_seconds"`
	RuleTableVersion string               `json:"rule_table_version"`
	FeatureSummary   FeatureSummary       `json:"feature_summary"`
	Cycles           []GaitCycle          `json:"gait_cycles"`
	Symmetry         SymmetryAssessment   `json:"symmetry"`
	Cadence          CadenceAssessment    `json:"cadence"`
	Stability        StabilityAssessment  `json:"stability"`
	Quality          MovementQuality      `json:"movement_quality"`
	Overall          OverallAssessment    `json:"overall"`
	Normative        *NormativeComparison `json:"normative_comparison,omitempty"`
	Performance      PerformanceMetrics   `json:"performance"`
}
