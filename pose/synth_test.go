package pose

import (
	"math"
	"testing"
)

func TestSynthesizeProducesFullSkeleton(t *testing.T) {
	t.Parallel()

	seq, err := Synthesize(DefaultSynthConfig())
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}

	if seq.FrameCount() != 120 {
		t.Fatalf("frame count = %d, want 120", seq.FrameCount())
	}
	if seq.DatasetID != "synthetic" || seq.SequenceID != "walker" {
		t.Errorf("ids = %s/%s, want synthetic/walker", seq.DatasetID, seq.SequenceID)
	}

	for i := range seq.Frames {
		if len(seq.Frames[i].Keypoints) != LandmarkCount {
			t.Fatalf("frame %d has %d keypoints, want %d",
				i, len(seq.Frames[i].Keypoints), LandmarkCount)
		}
		for _, kp := range seq.Frames[i].Keypoints {
			if kp.Confidence != 0.9 {
				t.Fatalf("frame %d keypoint %s confidence = %g, want 0.9",
					i, kp.ID, kp.Confidence)
			}
		}
	}
}

func TestSynthesizeHeelPhases(t *testing.T) {
	t.Parallel()

	seq, err := Synthesize(DefaultSynthConfig())
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}

	// The left heel grounds where its lift sine bottoms out: frames 27, 63,
	// 99 with the default 36-frame period. The right foot runs half a period
	// ahead: frames 9, 45, 81, 117.
	heelY := func(frame int, id Landmark) float64 {
		kp, ok := seq.Frames[frame].Keypoint(id)
		if !ok {
			t.Fatalf("frame %d: heel missing", frame)
		}
		return kp.Y
	}

	for _, ground := range []int{27, 63, 99} {
		grounded := heelY(ground, LeftHeel)
		lifted := heelY(ground-18, LeftHeel)
		if !(grounded > lifted) {
			t.Errorf("left heel at frame %d (y=%g) should sit lower than mid-swing (y=%g)",
				ground, grounded, lifted)
		}
	}
	for _, ground := range []int{9, 45, 81} {
		grounded := heelY(ground, RightHeel)
		lifted := heelY(ground+18, RightHeel)
		if !(grounded > lifted) {
			t.Errorf("right heel at frame %d (y=%g) should sit lower than mid-swing (y=%g)",
				ground, grounded, lifted)
		}
	}
}

func TestSynthesizeDeterministicForSeed(t *testing.T) {
	t.Parallel()

	cfg := DefaultSynthConfig()
	cfg.Noise = 1.5
	cfg.Seed = 42

	a, err := Synthesize(cfg)
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	b, err := Synthesize(cfg)
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}

	for i := range a.Frames {
		for j := range a.Frames[i].Keypoints {
			ka, kb := a.Frames[i].Keypoints[j], b.Frames[i].Keypoints[j]
			if ka != kb {
				t.Fatalf("frame %d keypoint %d differs between runs: %+v vs %+v", i, j, ka, kb)
			}
		}
	}
}

func TestSynthesizeAppliesSway(t *testing.T) {
	t.Parallel()

	cfg := DefaultSynthConfig()
	cfg.SwayAmplitude = 60
	seq, err := Synthesize(cfg)
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}

	var minY, maxY float64 = math.Inf(1), math.Inf(-1)
	for i := range seq.Frames {
		kp, ok := seq.Frames[i].Keypoint(LeftHip)
		if !ok {
			t.Fatalf("frame %d: left hip missing", i)
		}
		if kp.Y < minY {
			minY = kp.Y
		}
		if kp.Y > maxY {
			maxY = kp.Y
		}
	}
	if maxY-minY < 100 {
		t.Errorf("hip sway range = %g, want about twice the 60px amplitude", maxY-minY)
	}
}

func TestSynthesizeRejectsBadConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultSynthConfig()
	cfg.Frames = 0
	if _, err := Synthesize(cfg); err == nil {
		t.Error("zero frames accepted")
	}

	cfg = DefaultSynthConfig()
	cfg.PeriodFrames = 0
	if _, err := Synthesize(cfg); err == nil {
		t.Error("zero stride period accepted")
	}
}

func TestToUploadRoundTrip(t *testing.T) {
	t.Parallel()

	seq, err := Synthesize(DefaultSynthConfig())
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}

	upload := ToUpload(seq)
	back, err := FromUpload(upload)
	if err != nil {
		t.Fatalf("FromUpload returned error: %v", err)
	}

	if back.FrameCount() != seq.FrameCount() {
		t.Fatalf("frame count = %d, want %d", back.FrameCount(), seq.FrameCount())
	}
	if back.DatasetID != seq.DatasetID || back.SequenceID != seq.SequenceID {
		t.Errorf("ids = %s/%s, want %s/%s", back.DatasetID, back.SequenceID, seq.DatasetID, seq.SequenceID)
	}
	for i := range seq.Frames {
		if len(back.Frames[i].Keypoints) != len(seq.Frames[i].Keypoints) {
			t.Fatalf("frame %d keypoint count differs after round trip", i)
		}
	}
}
