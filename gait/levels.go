package gait

// Classification Vocabulary
//
// Every scored quantity maps to a closed set of discrete levels. The levels
// are typed string constants so the serialized field values match the
// vocabulary used by the presentation layer, and each type carries an
// explicit rank so "better/worse" comparisons never dispatch on raw strings.
// Rank 0 is always the unknown level; among known levels a higher rank is
// worse.

// SymmetryLevel classifies the bilateral symmetry score.
type SymmetryLevel string

const (
	SymmetryUnknown      SymmetryLevel = "unknown"
	Symmetric            SymmetryLevel = "symmetric"
	MildlyAsymmetric     SymmetryLevel = "mildly_asymmetric"
	ModeratelyAsymmetric SymmetryLevel = "moderately_asymmetric"
	SeverelyAsymmetric   SymmetryLevel = "severely_asymmetric"
)

// Rank orders symmetry levels from best (1) to worst; unknown is 0.
func (l SymmetryLevel) Rank() int {
	switch l {
	case Symmetric:
		return 1
	case MildlyAsymmetric:
		return 2
	case ModeratelyAsymmetric:
		return 3
	case SeverelyAsymmetric:
		return 4
	}
	return 0
}

// AsymmetrySeverity tags an individual joint's asymmetry magnitude.
type AsymmetrySeverity string

const (
	AsymmetryLow      AsymmetrySeverity = "low"
	AsymmetryModerate AsymmetrySeverity = "moderate"
	AsymmetryHigh     AsymmetrySeverity = "high"
)

// CadenceLevel classifies steps per minute.
type CadenceLevel string

const (
	CadenceUnknown CadenceLevel = "unknown"
	CadenceNormal  CadenceLevel = "normal"
	CadenceSlow    CadenceLevel = "slow"
	CadenceFast    CadenceLevel = "fast"
)

func (l CadenceLevel) Rank() int {
	switch l {
	case CadenceNormal:
		return 1
	case CadenceFast:
		return 2
	case CadenceSlow:
		return 3
	}
	return 0
}

// StabilityLevel classifies the center-of-mass stability index.
type StabilityLevel string

const (
	StabilityUnknown StabilityLevel = "unknown"
	StabilityHigh    StabilityLevel = "high"
	StabilityMedium  StabilityLevel = "medium"
	StabilityLow     StabilityLevel = "low"
)

func (l StabilityLevel) Rank() int {
	switch l {
	case StabilityHigh:
		return 1
	case StabilityMedium:
		return 2
	case StabilityLow:
		return 3
	}
	return 0
}

// ConsistencyLevel classifies velocity consistency (coefficient of variation).
type ConsistencyLevel string

const (
	ConsistencyUnknown  ConsistencyLevel = "unknown"
	ConsistencyGood     ConsistencyLevel = "good"
	ConsistencyModerate ConsistencyLevel = "moderate"
	ConsistencyPoor     ConsistencyLevel = "poor"
)

func (l ConsistencyLevel) Rank() int {
	switch l {
	case ConsistencyGood:
		return 1
	case ConsistencyModerate:
		return 2
	case ConsistencyPoor:
		return 3
	}
	return 0
}

// SmoothnessLevel classifies movement smoothness from mean jerk magnitude.
type SmoothnessLevel string

const (
	SmoothnessUnknown SmoothnessLevel = "unknown"
	MovementSmooth    SmoothnessLevel = "smooth"
	MovementModerate  SmoothnessLevel = "moderate"
	MovementJerky     SmoothnessLevel = "jerky"
)

func (l SmoothnessLevel) Rank() int {
	switch l {
	case MovementSmooth:
		return 1
	case MovementModerate:
		return 2
	case MovementJerky:
		return 3
	}
	return 0
}

// OverallLevel is the headline assessment.
type OverallLevel string

const (
	OverallUnknown  OverallLevel = "unknown"
	OverallGood     OverallLevel = "good"
	OverallModerate OverallLevel = "moderate"
	OverallPoor     OverallLevel = "poor"
)

func (l OverallLevel) Rank() int {
	switch l {
	case OverallGood:
		return 1
	case OverallModerate:
		return 2
	case OverallPoor:
		return 3
	}
	return 0
}

// ConfidenceLevel expresses how much the overall assessment can be trusted
// given upstream data quality.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

func (l ConfidenceLevel) Rank() int {
	switch l {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	}
	return 0
}
