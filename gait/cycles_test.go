package gait

import (
	"math"
	"testing"

	"gait-analysis/pose"
)

func synthSequence(t *testing.T, mutate func(*pose.SynthConfig)) *pose.PoseSequence {
	t.Helper()

	cfg := pose.DefaultSynthConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	seq, err := pose.Synthesize(cfg)
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	return seq
}

func TestDetectEventsFindsHeelStrikes(t *testing.T) {
	t.Parallel()

	seq := synthSequence(t, nil)
	cfg := DefaultConfig()

	strikeFrames := func(side pose.Side) []int {
		var frames []int
		for _, ev := range DetectEvents(seq, cfg, side) {
			if ev.Type == HeelStrike {
				frames = append(frames, ev.Frame)
			}
		}
		return frames
	}

	wantLeft := []int{27, 63, 99}
	gotLeft := strikeFrames(pose.SideLeft)
	if len(gotLeft) != len(wantLeft) {
		t.Fatalf("left strikes = %v, want %v", gotLeft, wantLeft)
	}
	for i := range wantLeft {
		if gotLeft[i] != wantLeft[i] {
			t.Errorf("left strike %d at frame %d, want %d", i, gotLeft[i], wantLeft[i])
		}
	}

	wantRight := []int{9, 45, 81, 117}
	gotRight := strikeFrames(pose.SideRight)
	if len(gotRight) != len(wantRight) {
		t.Fatalf("right strikes = %v, want %v", gotRight, wantRight)
	}
	for i := range wantRight {
		if gotRight[i] != wantRight[i] {
			t.Errorf("right strike %d at frame %d, want %d", i, gotRight[i], wantRight[i])
		}
	}
}

func TestDetectCyclesSegmentsStrides(t *testing.T) {
	t.Parallel()

	seq := synthSequence(t, nil)
	cfg := DefaultConfig()

	cycles := DetectCycles(seq, cfg)
	if len(cycles) != 5 {
		t.Fatalf("cycle count = %d, want 5", len(cycles))
	}

	left, right := cycleCountsPerSide(cycles)
	if left != 2 || right != 3 {
		t.Errorf("cycles per side = %d left, %d right, want 2 and 3", left, right)
	}

	for i, c := range cycles {
		if c.EndFrame-c.StartFrame != 36 {
			t.Errorf("cycle %d spans %d frames, want the 36-frame stride period",
				i, c.EndFrame-c.StartFrame)
		}
		if math.Abs(c.Duration-1.2) > 1e-9 {
			t.Errorf("cycle %d duration = %g, want 1.2s", i, c.Duration)
		}
		if i > 0 && cycles[i-1].StartFrame > c.StartFrame {
			t.Errorf("cycles not ordered by start frame at index %d", i)
		}
	}
}

func TestCycleStanceFraction(t *testing.T) {
	t.Parallel()

	seq := synthSequence(t, nil)
	cycles := DetectCycles(seq, DefaultConfig())

	var first *GaitCycle
	for i := range cycles {
		if cycles[i].Side == pose.SideLeft {
			first = &cycles[i]
			break
		}
	}
	if first == nil {
		t.Fatal("no left cycle detected")
	}
	if !first.StanceFraction.Valid {
		t.Fatal("stance fraction unavailable for the first left cycle")
	}
	// Toe-off is the velocity-magnitude peak a quarter period after the
	// strike: frame 36 in the 27-63 cycle.
	if math.Abs(first.StanceFraction.Value-0.25) > 1e-9 {
		t.Errorf("stance fraction = %g, want 0.25", first.StanceFraction.Value)
	}
	if !first.SwingFraction.Valid || math.Abs(first.SwingFraction.Value-0.75) > 1e-9 {
		t.Errorf("swing fraction = %+v, want 0.75", first.SwingFraction)
	}
}

func TestCycleLengthsScaleToMeters(t *testing.T) {
	t.Parallel()

	seq := synthSequence(t, nil)

	cfg := DefaultConfig()
	pixelCycles := DetectCycles(seq, cfg)

	cfg.ScaleMetersPerPixel = 0.01
	meterCycles := DetectCycles(seq, cfg)

	if len(pixelCycles) == 0 || len(pixelCycles) != len(meterCycles) {
		t.Fatalf("cycle counts differ: %d vs %d", len(pixelCycles), len(meterCycles))
	}
	for i := range pixelCycles {
		if pixelCycles[i].LengthUnit != "px" {
			t.Errorf("cycle %d unit = %q, want px", i, pixelCycles[i].LengthUnit)
		}
		if meterCycles[i].LengthUnit != "m" {
			t.Errorf("cycle %d unit = %q, want m", i, meterCycles[i].LengthUnit)
		}
		if !pixelCycles[i].StrideLength.Valid || !meterCycles[i].StrideLength.Valid {
			t.Fatalf("cycle %d stride length unavailable", i)
		}
		want := pixelCycles[i].StrideLength.Value * 0.01
		if math.Abs(meterCycles[i].StrideLength.Value-want) > 1e-9 {
			t.Errorf("cycle %d stride = %g m, want %g", i, meterCycles[i].StrideLength.Value, want)
		}
	}
}

func TestDetectCyclesGatedHeelYieldsNothing(t *testing.T) {
	t.Parallel()

	seq := synthSequence(t, func(cfg *pose.SynthConfig) {
		cfg.Confidence = 0.1
	})

	cycles := DetectCycles(seq, DefaultConfig())
	if len(cycles) != 0 {
		t.Fatalf("gated sequence produced %d cycles, want 0", len(cycles))
	}
}

func TestDetectEventsNeedsEnoughSamples(t *testing.T) {
	t.Parallel()

	seq := synthSequence(t, func(cfg *pose.SynthConfig) {
		cfg.Frames = 2
	})

	if events := DetectEvents(seq, DefaultConfig(), pose.SideLeft); len(events) != 0 {
		t.Fatalf("two-frame sequence produced %d events", len(events))
	}
}
