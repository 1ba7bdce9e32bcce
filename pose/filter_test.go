package pose

import (
	"math"
	"testing"
)

// seqWithTrack builds a sequence where one landmark follows the given x
// positions at y=0; a NaN x marks a dropped frame.
func seqWithTrack(t *testing.T, id Landmark, xs []float64, conf float64) *PoseSequence {
	t.Helper()

	frames := make([]Frame, len(xs))
	for i, x := range xs {
		frames[i] = Frame{Number: i}
		if !math.IsNaN(x) {
			frames[i].Keypoints = []Keypoint{{ID: id, X: x, Y: 0, Confidence: conf}}
		}
	}
	seq, err := NewPoseSequence(frames, 30)
	if err != nil {
		t.Fatalf("NewPoseSequence returned error: %v", err)
	}
	return seq
}

func TestPreprocessInterpolatesShortGaps(t *testing.T) {
	t.Parallel()

	gap := math.NaN()
	seq := seqWithTrack(t, LeftHeel, []float64{0, 10, gap, gap, 40, 50}, 0.9)

	cfg := DefaultPreprocessConfig()
	cfg.EnableSmoothing = false
	out := Preprocess(seq, cfg)

	for i, want := range []float64{20, 30} {
		frame := &out.Frames[2+i]
		kp, ok := frame.Keypoint(LeftHeel)
		if !ok {
			t.Fatalf("frame %d: gap not filled", frame.Number)
		}
		if math.Abs(kp.X-want) > 1e-9 {
			t.Errorf("frame %d: x = %g, want %g", frame.Number, kp.X, want)
		}
		if kp.Confidence >= 0.9 {
			t.Errorf("frame %d: interpolated confidence %g should be below the anchors' 0.9",
				frame.Number, kp.Confidence)
		}
	}

	// The input must be untouched.
	if _, ok := seq.Frames[2].Keypoint(LeftHeel); ok {
		t.Error("preprocessing mutated the input sequence")
	}
}

func TestPreprocessLeavesLongGapsOpen(t *testing.T) {
	t.Parallel()

	gap := math.NaN()
	xs := []float64{0, 10, gap, gap, gap, gap, gap, gap, 80, 90}
	seq := seqWithTrack(t, LeftHeel, xs, 0.9)

	cfg := DefaultPreprocessConfig()
	cfg.EnableSmoothing = false
	cfg.MaxGapFrames = 5
	out := Preprocess(seq, cfg)

	for i := 2; i <= 7; i++ {
		if _, ok := out.Frames[i].Keypoint(LeftHeel); ok {
			t.Fatalf("frame %d: a 6-frame gap was filled with MaxGapFrames=5", i)
		}
	}
}

func TestPreprocessSkipsLowConfidenceAnchors(t *testing.T) {
	t.Parallel()

	gap := math.NaN()
	seq := seqWithTrack(t, LeftHeel, []float64{0, 10, gap, 30}, 0.1)

	out := Preprocess(seq, DefaultPreprocessConfig())
	if _, ok := out.Frames[2].Keypoint(LeftHeel); ok {
		t.Error("gap anchored by gated keypoints was filled")
	}
}

func TestPreprocessSmoothingReducesJitter(t *testing.T) {
	t.Parallel()

	// A straight-line trajectory with alternating +-2px jitter.
	xs := make([]float64, 30)
	for i := range xs {
		xs[i] = float64(i * 10)
		if i%2 == 0 {
			xs[i] += 2
		} else {
			xs[i] -= 2
		}
	}
	seq := seqWithTrack(t, LeftHeel, xs, 0.9)

	cfg := DefaultPreprocessConfig()
	cfg.EnableInterpolation = false
	out := Preprocess(seq, cfg)

	// Interior points should land closer to the underlying line than the
	// jittered input.
	for i := 5; i < 25; i++ {
		kp, ok := out.Frames[i].Keypoint(LeftHeel)
		if !ok {
			t.Fatalf("frame %d: keypoint missing after smoothing", i)
		}
		wantLine := float64(i * 10)
		smoothedErr := math.Abs(kp.X - wantLine)
		if smoothedErr > 1.5 {
			t.Errorf("frame %d: smoothed error %g exceeds the raw jitter", i, smoothedErr)
		}
	}
}

func TestPreprocessNilAndEmptyPassThrough(t *testing.T) {
	t.Parallel()

	if out := Preprocess(nil, DefaultPreprocessConfig()); out != nil {
		t.Error("nil sequence should pass through unchanged")
	}
}
