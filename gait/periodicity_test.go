package gait

import (
	"math"
	"testing"

	"gait-analysis/pose"
)

func TestStridePeriodicityOnCleanWalk(t *testing.T) {
	t.Parallel()

	seq := synthSequence(t, nil)
	p := StridePeriodicity(seq, DefaultConfig())
	if !p.Valid {
		t.Fatal("periodicity unavailable on a clean walk")
	}
	// A sinusoidal heel concentrates nearly all power at the stride line.
	if p.Value < 0.5 {
		t.Errorf("periodicity = %g, want > 0.5 for a sinusoidal heel", p.Value)
	}
	if p.Value > 1 {
		t.Errorf("periodicity = %g, must stay within [0, 1]", p.Value)
	}
}

func TestStridePeriodicityDropsWithNoise(t *testing.T) {
	t.Parallel()

	clean := synthSequence(t, nil)
	noisy := synthSequence(t, func(cfg *pose.SynthConfig) {
		cfg.Noise = 8
		cfg.Seed = 7
	})

	cfg := DefaultConfig()
	pClean := StridePeriodicity(clean, cfg)
	pNoisy := StridePeriodicity(noisy, cfg)
	if !pClean.Valid || !pNoisy.Valid {
		t.Fatal("periodicity unavailable")
	}
	if pNoisy.Value >= pClean.Value {
		t.Errorf("noise did not spread the spectrum: clean %g, noisy %g",
			pClean.Value, pNoisy.Value)
	}
}

func TestStridePeriodicityNeedsSamples(t *testing.T) {
	t.Parallel()

	seq := synthSequence(t, func(cfg *pose.SynthConfig) {
		cfg.Frames = 10
	})
	if p := StridePeriodicity(seq, DefaultConfig()); p.Valid {
		t.Errorf("periodicity = %+v on 10 frames, want unavailable", p)
	}
}

func TestFFTMatchesDirectDFT(t *testing.T) {
	t.Parallel()

	input := []float64{1, 2, 0, -1, 3, 0.5, -2, 1}
	got := fft(input)

	n := len(input)
	for k := 0; k < n; k++ {
		var re, im float64
		for j := 0; j < n; j++ {
			angle := -2 * math.Pi * float64(k) * float64(j) / float64(n)
			re += input[j] * math.Cos(angle)
			im += input[j] * math.Sin(angle)
		}
		if math.Abs(real(got[k])-re) > 1e-9 || math.Abs(imag(got[k])-im) > 1e-9 {
			t.Fatalf("bin %d = %v, want (%g, %g)", k, got[k], re, im)
		}
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	t.Parallel()

	cases := map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 120: 128, 128: 128, 129: 256}
	for in, want := range cases {
		if got := nextPowerOfTwo(in); got != want {
			t.Errorf("nextPowerOfTwo(%d) = %d, want %d", in, got, want)
		}
	}
}
