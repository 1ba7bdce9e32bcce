package pose

import "fmt"

// InputError marks a sequence that cannot be analysed at all: empty,
// out-of-order frame numbers, or a non-positive frame rate. It fails an
// analysis before any stage runs.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return "invalid pose sequence: " + e.Reason
}

// Frame is one video frame's worth of keypoints. Number is the absolute
// frame index in the source video; Timestamp is Number divided by the
// sequence frame rate.
type Frame struct {
	Number    int
	Timestamp float64
	Keypoints []Keypoint
}

// Keypoint looks up a landmark in the frame. The second return is false
// when the landmark was not detected in this frame.
func (f *Frame) Keypoint(id Landmark) (Keypoint, bool) {
	for _, kp := range f.Keypoints {
		if kp.ID == id {
			return kp, true
		}
	}
	return Keypoint{}, false
}

// PoseSequence is the ordered keypoint stream for a single subject.
// DatasetID and SequenceID identify the clip for caching and storage; the
// analysis itself never reads them.
type PoseSequence struct {
	Frames     []Frame
	FPS        float64
	Duration   float64
	DatasetID  string
	SequenceID string
}

// NewPoseSequence assembles a sequence, derives timestamps and duration,
// and validates the basic invariants.
func NewPoseSequence(frames []Frame, fps float64) (*PoseSequence, error) {
	seq := &PoseSequence{Frames: frames, FPS: fps}
	if err := seq.Validate(); err != nil {
		return nil, err
	}
	for i := range seq.Frames {
		seq.Frames[i].Timestamp = float64(seq.Frames[i].Number) / fps
	}
	first := seq.Frames[0].Number
	last := seq.Frames[len(seq.Frames)-1].Number
	seq.Duration = float64(last-first+1) / fps
	return seq, nil
}

// Validate enforces the sequence invariants: at least one frame, positive
// frame rate, strictly increasing frame numbers.
func (s *PoseSequence) Validate() error {
	if len(s.Frames) == 0 {
		return &InputError{Reason: "sequence contains no frames"}
	}
	if s.FPS <= 0 {
		return &InputError{Reason: fmt.Sprintf("fps must be positive, got %g", s.FPS)}
	}
	for i := 1; i < len(s.Frames); i++ {
		if s.Frames[i].Number <= s.Frames[i-1].Number {
			return &InputError{Reason: fmt.Sprintf(
				"frame numbers must be strictly increasing (frame %d followed by %d)",
				s.Frames[i-1].Number, s.Frames[i].Number)}
		}
	}
	return nil
}

// FrameCount returns the number of frames in the sequence.
func (s *PoseSequence) FrameCount() int {
	return len(s.Frames)
}
