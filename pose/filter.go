package pose

// Trajectory Pre-processing
//
// Keypoint streams from video pose estimation are noisy: single-frame
// dropouts where a limb was occluded, and frame-to-frame jitter from the
// detector. This package cleans a sequence before analysis:
//
// 1. Gap interpolation: short dropouts of a landmark are filled linearly
//    between the confident endpoints. Filled points carry a reduced
//    confidence so downstream gating still knows they are synthetic.
// 2. Smoothing: a confidence-weighted moving average over each landmark
//    trajectory suppresses jitter without displacing genuine motion.
//
// Both steps build a new sequence; the input is never mutated. Processing
// is deterministic, so a preprocessed sequence analyses identically on
// every run.

// PreprocessConfig holds configuration for sequence preprocessing.
type PreprocessConfig struct {
	EnableInterpolation bool
	MaxGapFrames        int     // longest dropout that will be filled, default 5
	EnableSmoothing     bool
	SmoothingWindow     int     // moving-average width, odd, default 5
	MinConfidence       float64 // points below this neither anchor gaps nor join averages, default 0.3
}

// DefaultPreprocessConfig returns a sensible default configuration.
func DefaultPreprocessConfig() PreprocessConfig {
	return PreprocessConfig{
		EnableInterpolation: true,
		MaxGapFrames:        5,
		EnableSmoothing:     true,
		SmoothingWindow:     5,
		MinConfidence:       0.3,
	}
}

const interpolatedConfidenceScale = 0.8

// Preprocess applies the configured cleaning steps and returns a new
// sequence. The input sequence is left untouched.
func Preprocess(seq *PoseSequence, config PreprocessConfig) *PoseSequence {
	if seq == nil || len(seq.Frames) == 0 {
		return seq
	}

	out := &PoseSequence{
		Frames:     make([]Frame, len(seq.Frames)),
		FPS:        seq.FPS,
		Duration:   seq.Duration,
		DatasetID:  seq.DatasetID,
		SequenceID: seq.SequenceID,
	}
	for i, frame := range seq.Frames {
		kps := make([]Keypoint, len(frame.Keypoints))
		copy(kps, frame.Keypoints)
		out.Frames[i] = Frame{Number: frame.Number, Timestamp: frame.Timestamp, Keypoints: kps}
	}

	for id := Landmark(0); int(id) < LandmarkCount; id++ {
		track := collectTrack(out, id)
		if len(track) == 0 {
			continue
		}
		if config.EnableInterpolation {
			interpolateGaps(out, id, track, config)
			track = collectTrack(out, id)
		}
		if config.EnableSmoothing {
			smoothTrack(out, id, track, config)
		}
	}

	return out
}

// trackPoint records where a landmark appears within the sequence.
type trackPoint struct {
	frameIdx int
	kpIdx    int
}

func collectTrack(seq *PoseSequence, id Landmark) []trackPoint {
	var track []trackPoint
	for fi := range seq.Frames {
		for ki, kp := range seq.Frames[fi].Keypoints {
			if kp.ID == id {
				track = append(track, trackPoint{frameIdx: fi, kpIdx: ki})
				break
			}
		}
	}
	return track
}

// interpolateGaps fills dropouts of up to MaxGapFrames frames where both
// surrounding detections are confident. The fill is linear in frame number,
// so irregular sampling interpolates correctly.
func interpolateGaps(seq *PoseSequence, id Landmark, track []trackPoint, config PreprocessConfig) {
	if config.MaxGapFrames <= 0 {
		return
	}

	for t := 1; t < len(track); t++ {
		prev := track[t-1]
		cur := track[t]
		gap := cur.frameIdx - prev.frameIdx - 1
		if gap == 0 || gap > config.MaxGapFrames {
			continue
		}

		start := seq.Frames[prev.frameIdx].Keypoints[prev.kpIdx]
		end := seq.Frames[cur.frameIdx].Keypoints[cur.kpIdx]
		if start.Confidence < config.MinConfidence || end.Confidence < config.MinConfidence {
			continue
		}

		startNum := seq.Frames[prev.frameIdx].Number
		endNum := seq.Frames[cur.frameIdx].Number
		span := float64(endNum - startNum)
		conf := start.Confidence
		if end.Confidence < conf {
			conf = end.Confidence
		}
		conf *= interpolatedConfidenceScale

		for fi := prev.frameIdx + 1; fi < cur.frameIdx; fi++ {
			frac := float64(seq.Frames[fi].Number-startNum) / span
			filled := Keypoint{
				ID:         id,
				X:          start.X + frac*(end.X-start.X),
				Y:          start.Y + frac*(end.Y-start.Y),
				Confidence: conf,
			}
			seq.Frames[fi].Keypoints = append(seq.Frames[fi].Keypoints, filled)
		}
	}
}

// smoothTrack replaces each confident detection with the confidence-weighted
// average of its neighbourhood. Low-confidence points are left as they are;
// they are gated downstream anyway.
func smoothTrack(seq *PoseSequence, id Landmark, track []trackPoint, config PreprocessConfig) {
	window := config.SmoothingWindow
	if window < 3 {
		return
	}
	if window%2 == 0 {
		window++
	}
	half := window / 2

	type sample struct {
		x, y, conf float64
		valid      bool
	}
	samples := make([]sample, len(track))
	for i, tp := range track {
		kp := seq.Frames[tp.frameIdx].Keypoints[tp.kpIdx]
		samples[i] = sample{x: kp.X, y: kp.Y, conf: kp.Confidence, valid: kp.Confidence >= config.MinConfidence}
	}

	for i, tp := range track {
		if !samples[i].valid {
			continue
		}
		var sumX, sumY, sumW float64
		for j := i - half; j <= i+half; j++ {
			if j < 0 || j >= len(samples) || !samples[j].valid {
				continue
			}
			w := samples[j].conf
			sumX += samples[j].x * w
			sumY += samples[j].y * w
			sumW += w
		}
		if sumW == 0 {
			continue
		}
		kp := &seq.Frames[tp.frameIdx].Keypoints[tp.kpIdx]
		kp.X = sumX / sumW
		kp.Y = sumY / sumW
	}
}
