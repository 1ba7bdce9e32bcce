package pose

// Anatomical Landmark Vocabulary
//
// Upstream pose estimation emits 33 body landmarks per frame, indexed in a
// fixed order: face (0-10), upper limbs and hands (11-22), lower limbs and
// feet (23-32). Gait analysis consumes mostly the lower half; the face and
// hand points ride along so a sequence round-trips without loss.
//
// Each landmark carries a detection confidence in [0, 1]. Confidence is the
// gatekeeper for every derived quantity: a measurement whose contributing
// landmarks fall below the acceptance threshold is treated as missing, never
// as zero.

import "fmt"

// Landmark identifies one anatomical point in the fixed 33-point set.
type Landmark int

const (
	Nose Landmark = iota
	LeftEyeInner
	LeftEye
	LeftEyeOuter
	RightEyeInner
	RightEye
	RightEyeOuter
	LeftEar
	RightEar
	MouthLeft
	MouthRight
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftPinky
	RightPinky
	LeftIndex
	RightIndex
	LeftThumb
	RightThumb
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	LeftHeel
	RightHeel
	LeftFootIndex
	RightFootIndex

	LandmarkCount int = iota
)

var landmarkNames = [LandmarkCount]string{
	"nose",
	"left_eye_inner",
	"left_eye",
	"left_eye_outer",
	"right_eye_inner",
	"right_eye",
	"right_eye_outer",
	"left_ear",
	"right_ear",
	"mouth_left",
	"mouth_right",
	"left_shoulder",
	"right_shoulder",
	"left_elbow",
	"right_elbow",
	"left_wrist",
	"right_wrist",
	"left_pinky",
	"right_pinky",
	"left_index",
	"right_index",
	"left_thumb",
	"right_thumb",
	"left_hip",
	"right_hip",
	"left_knee",
	"right_knee",
	"left_ankle",
	"right_ankle",
	"left_heel",
	"right_heel",
	"left_foot_index",
	"right_foot_index",
}

var landmarksByName map[string]Landmark

func init() {
	landmarksByName = make(map[string]Landmark, LandmarkCount)
	for i, name := range landmarkNames {
		landmarksByName[name] = Landmark(i)
	}
}

func (l Landmark) String() string {
	if l < 0 || int(l) >= LandmarkCount {
		return fmt.Sprintf("landmark(%d)", int(l))
	}
	return landmarkNames[l]
}

// Valid reports whether the landmark lies inside the fixed vocabulary.
func (l Landmark) Valid() bool {
	return l >= 0 && int(l) < LandmarkCount
}

// LandmarkByName resolves the canonical landmark name emitted by the
// upstream estimator.
func LandmarkByName(name string) (Landmark, bool) {
	l, ok := landmarksByName[name]
	return l, ok
}

// Side labels one half of the body, matching the left/right landmark split.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Sides lists both sides in a fixed order for deterministic iteration.
func Sides() []Side {
	return []Side{SideLeft, SideRight}
}

// HeelLandmark returns the heel landmark for a side.
func HeelLandmark(side Side) Landmark {
	if side == SideLeft {
		return LeftHeel
	}
	return RightHeel
}

// Keypoint is one detected landmark position in frame pixel space.
// Immutable once produced by the estimator.
type Keypoint struct {
	ID         Landmark
	X          float64
	Y          float64
	Confidence float64
}
