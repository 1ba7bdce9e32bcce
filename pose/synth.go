package pose

// Synthetic Gait Generator
//
// Synthesize produces a deterministic sinusoidal walker for tests, demos and
// detector evaluation. The skeleton walks in image space (pixel y grows
// downward) at a configurable forward speed while each heel rises and falls
// once per stride, the two feet half a period apart. The two sides are exact
// mirror images of each other, so equal lift amplitudes score zero bilateral
// asymmetry. Knee bend follows the same oscillation scaled from the heel
// lift, and the displaced knee drives the hip and ankle angles too, so
// halving one side's lift depresses that whole leg's flexion range and
// produces a genuinely asymmetric gait rather than just a quieter heel.
//
// With the default configuration the left heel grounds at frames 27, 63 and
// 99 and the right at 9, 45, 81 and 117, giving five complete stride cycles
// over four seconds and a cadence of exactly 100 steps per minute.
//
// Optional vertical hip sway simulates poor center-of-mass control and
// optional Gaussian pixel noise simulates tracking jitter. The same seed
// always yields the same sequence.

import (
	"math"
	"math/rand"
)

// SynthConfig controls the generated walker.
type SynthConfig struct {
	Frames       int     // total frame count
	FPS          float64 // frame rate
	PeriodFrames int     // stride period in frames

	LeftLift  float64 // left heel lift amplitude, px
	RightLift float64 // right heel lift amplitude, px

	ForwardSpeed float64 // horizontal walking speed, px/s

	SwayAmplitude    float64 // vertical hip sway amplitude, px
	SwayPeriodFrames int     // sway period in frames

	Confidence float64 // confidence assigned to every keypoint
	Noise      float64 // Gaussian position noise stddev, px
	Seed       int64

	DatasetID  string
	SequenceID string
}

// DefaultSynthConfig is a clean symmetric walk: five cycles at 30 fps,
// cadence 100 steps/min, no sway, no noise.
func DefaultSynthConfig() SynthConfig {
	return SynthConfig{
		Frames:           120,
		FPS:              30,
		PeriodFrames:     36,
		LeftLift:         12,
		RightLift:        12,
		ForwardSpeed:     60,
		SwayPeriodFrames: 18,
		Confidence:       0.9,
		Seed:             1,
		DatasetID:        "synthetic",
		SequenceID:       "walker",
	}
}

// Skeleton geometry, px. The figure is drawn frontally with both hips
// visible while it translates horizontally; the analysis only consumes
// angles, distances and the heel height profile, so the mixed viewpoint is
// harmless.
const (
	synthShoulderY  = 200
	synthHipY       = 410
	synthKneeY      = 555
	synthAnkleY     = 700
	synthFootY      = 715
	synthHipHalf    = 40 // hip half-width, mean hip width 80
	synthShoulderHW = 50
	synthKneeBend   = 40 // knee bend at the default lift amplitude
	defaultLift     = 12
)

// Synthesize generates the walker sequence described by the configuration.
func Synthesize(cfg SynthConfig) (*PoseSequence, error) {
	if cfg.Frames <= 0 {
		return nil, &InputError{Reason: "synthesizer needs a positive frame count"}
	}
	if cfg.PeriodFrames <= 0 {
		return nil, &InputError{Reason: "synthesizer needs a positive stride period"}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	jitter := func() float64 {
		if cfg.Noise <= 0 {
			return 0
		}
		return rng.NormFloat64() * cfg.Noise
	}

	frames := make([]Frame, cfg.Frames)
	for f := 0; f < cfg.Frames; f++ {
		t := float64(f) / cfg.FPS
		forward := cfg.ForwardSpeed * t
		center := 500.0 + forward

		sway := 0.0
		if cfg.SwayAmplitude != 0 && cfg.SwayPeriodFrames > 0 {
			sway = cfg.SwayAmplitude * math.Sin(2*math.Pi*float64(f)/float64(cfg.SwayPeriodFrames))
		}

		// The heel grounds where its phase sine bottoms out; the knee is
		// most bent half a period later, mid-swing.
		phaseLeft := 2 * math.Pi * float64(f) / float64(cfg.PeriodFrames)
		phaseRight := phaseLeft + math.Pi
		liftLeft := cfg.LeftLift * (1 + math.Sin(phaseLeft)) / 2
		liftRight := cfg.RightLift * (1 + math.Sin(phaseRight)) / 2
		bendLeft := synthKneeBend * (cfg.LeftLift / defaultLift) * (1 + math.Sin(phaseLeft)) / 2
		bendRight := synthKneeBend * (cfg.RightLift / defaultLift) * (1 + math.Sin(phaseRight)) / 2

		kps := make([]Keypoint, 0, LandmarkCount)
		put := func(id Landmark, x, y float64) {
			kps = append(kps, Keypoint{
				ID:         id,
				X:          x + jitter(),
				Y:          y + jitter(),
				Confidence: cfg.Confidence,
			})
		}

		// Face.
		put(Nose, center, 140)
		put(LeftEyeInner, center-5, 132)
		put(LeftEye, center-10, 132)
		put(LeftEyeOuter, center-15, 132)
		put(RightEyeInner, center+5, 132)
		put(RightEye, center+10, 132)
		put(RightEyeOuter, center+15, 132)
		put(LeftEar, center-25, 140)
		put(RightEar, center+25, 140)
		put(MouthLeft, center-8, 155)
		put(MouthRight, center+8, 155)

		// Arms hang nearly straight with a slight outward lean so the
		// shoulder and elbow angles are well defined. Every offset is
		// mirrored through side.sign: the two sides must be exact mirror
		// images or the constant geometric difference registers as joint
		// asymmetry on a perfectly symmetric gait.
		for _, side := range []struct {
			sign                   float64
			shoulder, elbow, wrist Landmark
			pinky, index, thumb    Landmark
		}{
			{-1, LeftShoulder, LeftElbow, LeftWrist, LeftPinky, LeftIndex, LeftThumb},
			{+1, RightShoulder, RightElbow, RightWrist, RightPinky, RightIndex, RightThumb},
		} {
			sx := center + side.sign*synthShoulderHW
			put(side.shoulder, sx, synthShoulderY)
			put(side.elbow, sx+side.sign*10, 290)
			put(side.wrist, sx+side.sign*20, 370)
			put(side.pinky, sx+side.sign*22, 385)
			put(side.index, sx+side.sign*26, 385)
			put(side.thumb, sx+side.sign*18, 380)
		}

		// Legs, mirrored the same way. The knee displacement drives the
		// hip, knee and ankle angles, so a reduced lift on one side
		// depresses that leg's flexion range across all three joints.
		for _, side := range []struct {
			sign             float64
			lift, bend       float64
			hip, knee, ankle Landmark
			heel, foot       Landmark
		}{
			{-1, liftLeft, bendLeft, LeftHip, LeftKnee, LeftAnkle, LeftHeel, LeftFootIndex},
			{+1, liftRight, bendRight, RightHip, RightKnee, RightAnkle, RightHeel, RightFootIndex},
		} {
			hx := center + side.sign*synthHipHalf
			put(side.hip, hx, synthHipY+sway)
			put(side.knee, hx+side.sign*side.bend, synthKneeY)
			put(side.ankle, hx, synthAnkleY)
			put(side.heel, hx-side.sign*15, synthFootY-side.lift)
			put(side.foot, hx+side.sign*40, synthFootY)
		}

		frames[f] = Frame{Number: f, Keypoints: kps}
	}

	seq, err := NewPoseSequence(frames, cfg.FPS)
	if err != nil {
		return nil, err
	}
	seq.DatasetID = cfg.DatasetID
	seq.SequenceID = cfg.SequenceID
	return seq, nil
}
