package gait

// Normative Reference Profiles
//
// A reference set holds labelled feature vectors summarising known gait
// populations (e.g. "healthy_adult", "antalgic", "parkinsonian"). The set
// fits a z-score scaler over its own profiles so no single dimension
// dominates, and matches an analysis result to its nearest profile by cosine
// similarity in the scaled space. Matching is optional and purely
// informational: the comparison rides on the result, never changes it.

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/montanaflynn/stats"
)

// ReferenceProfile is one labelled normative feature vector.
type ReferenceProfile struct {
	Label          string  `json:"label"`
	Cadence        float64 `json:"cadence"`
	StanceFraction float64 `json:"stance_fraction"`
	SymmetryScore  float64 `json:"symmetry_score"`
	StabilityIndex float64 `json:"stability_index"`
	VelocityCV     float64 `json:"velocity_cv"`
	MeanJerk       float64 `json:"mean_jerk"`
	Periodicity    float64 `json:"periodicity"`
}

func (p ReferenceProfile) vector() []float64 {
	return []float64{
		p.Cadence,
		p.StanceFraction,
		p.SymmetryScore,
		p.StabilityIndex,
		p.VelocityCV,
		p.MeanJerk,
		p.Periodicity,
	}
}

// profileScaler standardizes each profile dimension to mean 0 and stddev 1,
// computed over the profile set itself.
type profileScaler struct {
	mean   []float64
	stddev []float64
}

func fitScaler(profiles []ReferenceProfile) (*profileScaler, error) {
	if len(profiles) == 0 {
		return nil, fmt.Errorf("no profiles provided")
	}
	dims := len(profiles[0].vector())
	columns := make([][]float64, dims)
	for _, p := range profiles {
		for d, v := range p.vector() {
			columns[d] = append(columns[d], v)
		}
	}

	scaler := &profileScaler{
		mean:   make([]float64, dims),
		stddev: make([]float64, dims),
	}
	for d, col := range columns {
		mean, err := stats.Mean(col)
		if err != nil {
			return nil, err
		}
		sd, err := stats.StandardDeviation(col)
		if err != nil {
			return nil, err
		}
		if sd < 1e-10 {
			sd = 1.0
		}
		scaler.mean[d] = mean
		scaler.stddev[d] = sd
	}
	return scaler, nil
}

func (s *profileScaler) transform(vector []float64) []float64 {
	scaled := make([]float64, len(vector))
	for i, v := range vector {
		scaled[i] = (v - s.mean[i]) / s.stddev[i]
	}
	return scaled
}

// ReferenceSet matches analysis results against normative profiles.
type ReferenceSet struct {
	profiles []ReferenceProfile
	scaler   *profileScaler
}

// NewReferenceSet fits the scaler and builds a matcher over the profiles.
func NewReferenceSet(profiles []ReferenceProfile) (*ReferenceSet, error) {
	if len(profiles) < 2 {
		return nil, fmt.Errorf("reference set needs at least 2 profiles, got %d", len(profiles))
	}
	scaler, err := fitScaler(profiles)
	if err != nil {
		return nil, err
	}
	return &ReferenceSet{profiles: profiles, scaler: scaler}, nil
}

// LoadReferenceSet reads a profile file from disk.
func LoadReferenceSet(path string) (*ReferenceSet, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read reference profiles: %w", err)
	}
	var profiles []ReferenceProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse reference profiles: %w", err)
	}
	return NewReferenceSet(profiles)
}

// Profiles returns a copy of the loaded profiles.
func (rs *ReferenceSet) Profiles() []ReferenceProfile {
	if rs == nil {
		return nil
	}
	out := make([]ReferenceProfile, len(rs.profiles))
	copy(out, rs.profiles)
	return out
}

// ProfileCount exposes the number of loaded profiles.
func (rs *ReferenceSet) ProfileCount() int {
	if rs == nil {
		return 0
	}
	return len(rs.profiles)
}

// Match returns the nearest profile to the result, or nil when the result
// lacks the metrics a comparison needs.
func (rs *ReferenceSet) Match(result *PoseAnalysisResult) *NormativeComparison {
	if rs == nil || result == nil {
		return nil
	}
	profile, ok := ProfileFromResult("", result)
	if !ok {
		return nil
	}
	target := rs.scaler.transform(profile.vector())

	best := -1
	bestSim := -2.0
	for i, p := range rs.profiles {
		sim := cosineSimilarity(target, rs.scaler.transform(p.vector()))
		if sim > bestSim {
			bestSim = sim
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	return &NormativeComparison{
		Profile:    rs.profiles[best].Label,
		Similarity: bestSim,
	}
}

// ProfileFromResult flattens a result into a profile vector. False when the
// core metrics are unavailable.
func ProfileFromResult(label string, r *PoseAnalysisResult) (ReferenceProfile, bool) {
	if !r.Cadence.StepsPerMinute.Valid || !r.Symmetry.Score.Valid || !r.Stability.Index.Valid {
		return ReferenceProfile{}, false
	}

	var stanceSum float64
	stanceCount := 0
	for _, c := range r.Cycles {
		if c.StanceFraction.Valid {
			stanceSum += c.StanceFraction.Value
			stanceCount++
		}
	}
	stance := 0.0
	if stanceCount > 0 {
		stance = stanceSum / float64(stanceCount)
	}

	profile := ReferenceProfile{
		Label:          label,
		Cadence:        r.Cadence.StepsPerMinute.Value,
		StanceFraction: stance,
		SymmetryScore:  r.Symmetry.Score.Value,
		StabilityIndex: r.Stability.Index.Value,
		Periodicity:    r.Performance.Periodicity.Value,
	}
	if r.Quality.VelocityCV.Valid {
		profile.VelocityCV = r.Quality.VelocityCV.Value
	}
	if r.Quality.MeanJerk.Valid {
		profile.MeanJerk = r.Quality.MeanJerk.Value
	}
	return profile, true
}

// SaveProfiles writes a profile file to disk.
func SaveProfiles(path string, profiles []ReferenceProfile) error {
	if len(profiles) == 0 {
		return fmt.Errorf("no profiles to save")
	}
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create profile directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return -1
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return -1
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
