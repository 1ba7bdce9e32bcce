package gait

// Kinematic Feature Extraction
//
// This file derives per-frame kinematic features from a pose sequence:
//
// Joint Angles:
//   - For each tracked triplet (proximal, joint, distal) the angle at the
//     joint landmark between the two limb vectors, in degrees. 180 degrees is
//     a fully extended joint.
//
// Center-of-Mass Trajectory:
//   - The hip midpoint serves as the body-center proxy; the shoulder midpoint
//     substitutes when a hip is gated. Velocity, acceleration and jerk of the
//     trajectory are estimated with central differences, so the first and
//     last frames (and deeper margins for higher derivatives) carry no
//     derivative values.
//
// Confidence Gating:
//   - A measurement whose contributing landmarks fall below the acceptance
//     threshold is marked unavailable, never zero. Sequence aggregates cover
//     only valid samples; a metric with coverage below the configured floor
//     is reported unavailable rather than approximated.
//
// A sequence with fewer than 2 frames yields an empty feature stream and
// all-unavailable aggregates. That is a reported condition, not an error:
// every downstream stage degrades to "unknown" on an empty stream.

import (
	"math"

	"github.com/montanaflynn/stats"

	"gait-analysis/pose"
)

// jointTriplet defines the landmarks whose vectors form a tracked angle.
type jointTriplet struct {
	joint    Joint
	proximal pose.Landmark
	vertex   pose.Landmark
	distal   pose.Landmark
}

var jointTriplets = []jointTriplet{
	{LeftHipJoint, pose.LeftShoulder, pose.LeftHip, pose.LeftKnee},
	{RightHipJoint, pose.RightShoulder, pose.RightHip, pose.RightKnee},
	{LeftKneeJoint, pose.LeftHip, pose.LeftKnee, pose.LeftAnkle},
	{RightKneeJoint, pose.RightHip, pose.RightKnee, pose.RightAnkle},
	{LeftAnkleJoint, pose.LeftKnee, pose.LeftAnkle, pose.LeftFootIndex},
	{RightAnkleJoint, pose.RightKnee, pose.RightAnkle, pose.RightFootIndex},
	{LeftShoulderJoint, pose.LeftElbow, pose.LeftShoulder, pose.LeftHip},
	{RightShoulderJoint, pose.RightElbow, pose.RightShoulder, pose.RightHip},
	{LeftElbowJoint, pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist},
	{RightElbowJoint, pose.RightShoulder, pose.RightElbow, pose.RightWrist},
}

// ExtractFeatures derives the per-frame feature stream and its aggregates.
func ExtractFeatures(seq *pose.PoseSequence, cfg Config) *FeatureSet {
	set := &FeatureSet{FPS: seq.FPS}
	set.Summary.JointCoverage = make(map[Joint]float64, len(jointTriplets))

	if len(seq.Frames) < 2 {
		return set
	}

	// Interior frames only: central differences need both neighbours.
	frames := make([]FeatureFrame, 0, len(seq.Frames)-2)
	for i := 1; i < len(seq.Frames)-1; i++ {
		frame := &seq.Frames[i]
		ff := FeatureFrame{
			FrameNumber: frame.Number,
			Timestamp:   frame.Timestamp,
			Angles:      make(map[Joint]Metric, len(jointTriplets)),
		}
		for _, t := range jointTriplets {
			ff.Angles[t.joint] = jointAngle(frame, t, cfg.AcceptanceConfidence)
		}
		ff.COM = centerOfMass(frame, cfg.AcceptanceConfidence)
		ff.HipWidth = hipWidth(frame, cfg.AcceptanceConfidence)
		frames = append(frames, ff)
	}

	attachDerivatives(seq, frames, cfg.AcceptanceConfidence)
	set.Frames = frames
	set.Summary = summarize(frames, cfg)
	return set
}

// jointAngle computes the vector angle at the vertex landmark, in degrees.
// Unavailable when any contributing landmark is gated.
func jointAngle(frame *pose.Frame, t jointTriplet, minConf float64) Metric {
	prox, okP := confidentKeypoint(frame, t.proximal, minConf)
	vert, okV := confidentKeypoint(frame, t.vertex, minConf)
	dist, okD := confidentKeypoint(frame, t.distal, minConf)
	if !okP || !okV || !okD {
		return InvalidMetric()
	}

	ax, ay := prox.X-vert.X, prox.Y-vert.Y
	bx, by := dist.X-vert.X, dist.Y-vert.Y
	na := math.Hypot(ax, ay)
	nb := math.Hypot(bx, by)
	if na == 0 || nb == 0 {
		return InvalidMetric()
	}

	cos := (ax*bx + ay*by) / (na * nb)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return ValidMetric(math.Acos(cos) * 180 / math.Pi)
}

// centerOfMass is the hip midpoint, falling back to the shoulder midpoint
// when either hip is gated.
func centerOfMass(frame *pose.Frame, minConf float64) PointMetric {
	lh, okL := confidentKeypoint(frame, pose.LeftHip, minConf)
	rh, okR := confidentKeypoint(frame, pose.RightHip, minConf)
	if okL && okR {
		return PointMetric{X: (lh.X + rh.X) / 2, Y: (lh.Y + rh.Y) / 2, Valid: true}
	}
	ls, okL := confidentKeypoint(frame, pose.LeftShoulder, minConf)
	rs, okR := confidentKeypoint(frame, pose.RightShoulder, minConf)
	if okL && okR {
		return PointMetric{X: (ls.X + rs.X) / 2, Y: (ls.Y + rs.Y) / 2, Valid: true}
	}
	return PointMetric{}
}

func hipWidth(frame *pose.Frame, minConf float64) Metric {
	lh, okL := confidentKeypoint(frame, pose.LeftHip, minConf)
	rh, okR := confidentKeypoint(frame, pose.RightHip, minConf)
	if !okL || !okR {
		return InvalidMetric()
	}
	return ValidMetric(math.Hypot(lh.X-rh.X, lh.Y-rh.Y))
}

func confidentKeypoint(frame *pose.Frame, id pose.Landmark, minConf float64) (pose.Keypoint, bool) {
	kp, ok := frame.Keypoint(id)
	if !ok || kp.Confidence < minConf {
		return pose.Keypoint{}, false
	}
	return kp, true
}

// attachDerivatives estimates COM velocity, acceleration and jerk magnitudes
// by repeated central differencing over the original (possibly irregular)
// frame timestamps.
type vec struct {
	x, y  float64
	valid bool
}

func attachDerivatives(seq *pose.PoseSequence, frames []FeatureFrame, minConf float64) {
	// Velocity of the COM at interior frame i uses the raw pose frames i-1
	// and i+1, which exist for every FeatureFrame by construction.
	coms := make([]vec, len(seq.Frames))
	for i := range seq.Frames {
		com := centerOfMass(&seq.Frames[i], minConf)
		coms[i] = vec{x: com.X, y: com.Y, valid: com.Valid}
	}

	velocity := centralDifference(coms, seq.Frames)
	accel := centralDifference(velocity, seq.Frames)
	jerk := centralDifference(accel, seq.Frames)

	for fi := range frames {
		i := fi + 1 // index into the raw frame arrays
		if velocity[i].valid {
			frames[fi].COMVelocity = ValidMetric(math.Hypot(velocity[i].x, velocity[i].y))
		}
		if accel[i].valid {
			frames[fi].COMAccel = ValidMetric(math.Hypot(accel[i].x, accel[i].y))
		}
		if jerk[i].valid {
			frames[fi].COMJerk = ValidMetric(math.Hypot(jerk[i].x, jerk[i].y))
		}
	}
}

func centralDifference(series []vec, frames []pose.Frame) []vec {
	out := make([]vec, len(series))
	for i := 1; i < len(series)-1; i++ {
		prev, next := series[i-1], series[i+1]
		if !prev.valid || !next.valid {
			continue
		}
		dt := frames[i+1].Timestamp - frames[i-1].Timestamp
		if dt <= 0 {
			continue
		}
		out[i].x = (next.x - prev.x) / dt
		out[i].y = (next.y - prev.y) / dt
		out[i].valid = true
	}
	return out
}

// summarize aggregates the valid samples of the stream. Metrics whose
// coverage falls below the floor are reported unavailable.
func summarize(frames []FeatureFrame, cfg Config) FeatureSummary {
	summary := FeatureSummary{JointCoverage: make(map[Joint]float64, len(jointTriplets))}
	if len(frames) == 0 {
		return summary
	}
	total := float64(len(frames))

	for _, t := range jointTriplets {
		valid := 0
		for i := range frames {
			if frames[i].Angles[t.joint].Valid {
				valid++
			}
		}
		summary.JointCoverage[t.joint] = float64(valid) / total
	}

	var speeds, jerks []float64
	comValid, frameValid := 0, 0
	for i := range frames {
		if frames[i].COM.Valid {
			comValid++
		}
		if frames[i].COMVelocity.Valid {
			speeds = append(speeds, frames[i].COMVelocity.Value)
		}
		if frames[i].COMJerk.Valid {
			jerks = append(jerks, frames[i].COMJerk.Value)
		}
		if frames[i].COM.Valid && anyAngleValid(frames[i].Angles) {
			frameValid++
		}
	}
	summary.COMCoverage = float64(comValid) / total
	summary.ValidFrameFraction = float64(frameValid) / total

	if float64(len(speeds))/total >= cfg.CoverageFloor {
		if mean, err := stats.Mean(speeds); err == nil {
			summary.MeanVelocity = ValidMetric(mean)
			if sd, err := stats.StandardDeviation(speeds); err == nil && mean > 0 {
				summary.VelocityCV = ValidMetric(sd / mean)
			}
		}
	}
	if float64(len(jerks))/total >= cfg.CoverageFloor {
		if mean, err := stats.Mean(jerks); err == nil {
			summary.MeanJerk = ValidMetric(mean)
		}
	}

	return summary
}

func anyAngleValid(angles map[Joint]Metric) bool {
	for _, m := range angles {
		if m.Valid {
			return true
		}
	}
	return false
}
