package pose

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"gait-analysis/models"
	"gait-analysis/utils"
)

// FromUpload converts the wire-format upload into an analysable sequence.
// Keypoints with names outside the fixed landmark vocabulary are dropped so
// an estimator that emits extra points does not break ingestion; structural
// problems (no frames, bad fps, unordered frames) surface as InputError.
func FromUpload(upload *models.SequenceUpload) (*PoseSequence, error) {
	if upload == nil {
		return nil, &InputError{Reason: "upload is nil"}
	}

	frames := make([]Frame, 0, len(upload.Frames))
	for _, uf := range upload.Frames {
		frame := Frame{Number: uf.FrameNumber}
		for _, kp := range uf.Keypoints {
			id, ok := LandmarkByName(kp.Name)
			if !ok {
				continue
			}
			frame.Keypoints = append(frame.Keypoints, Keypoint{
				ID:         id,
				X:          kp.X,
				Y:          kp.Y,
				Confidence: kp.Confidence,
			})
		}
		frames = append(frames, frame)
	}

	seq, err := NewPoseSequence(frames, upload.FPS)
	if err != nil {
		return nil, err
	}
	seq.DatasetID = upload.DatasetID
	seq.SequenceID = upload.SequenceID
	return seq, nil
}

// ToUpload converts a sequence back to the wire format, e.g. to save a
// synthetic sequence as a fixture.
func ToUpload(seq *PoseSequence) *models.SequenceUpload {
	upload := &models.SequenceUpload{
		DatasetID:  seq.DatasetID,
		SequenceID: seq.SequenceID,
		FPS:        seq.FPS,
		Frames:     make([]models.FrameUpload, 0, len(seq.Frames)),
	}
	for _, frame := range seq.Frames {
		uf := models.FrameUpload{
			FrameNumber: frame.Number,
			Keypoints:   make([]models.KeypointUpload, 0, len(frame.Keypoints)),
		}
		for _, kp := range frame.Keypoints {
			uf.Keypoints = append(uf.Keypoints, models.KeypointUpload{
				Name:       kp.ID.String(),
				X:          kp.X,
				Y:          kp.Y,
				Confidence: kp.Confidence,
			})
		}
		upload.Frames = append(upload.Frames, uf)
	}
	return upload
}

// PersistSequence writes the raw upload to disk for later re-analysis and
// returns the file path.
func PersistSequence(upload *models.SequenceUpload, dir string) (string, error) {
	if err := utils.CreateFolder(dir); err != nil {
		return "", fmt.Errorf("error creating sequence directory: %v", err)
	}

	name := fmt.Sprintf("%s_%s_%s.json", upload.DatasetID, upload.SequenceID, uuid.NewString()[:8])
	path := filepath.Join(dir, name)

	data, err := json.Marshal(upload)
	if err != nil {
		return "", fmt.Errorf("error marshaling sequence: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("error writing sequence file: %v", err)
	}
	return path, nil
}

// LoadSequenceFile reads a persisted upload back from disk.
func LoadSequenceFile(path string) (*models.SequenceUpload, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("error reading sequence file: %v", err)
	}
	var upload models.SequenceUpload
	if err := json.Unmarshal(data, &upload); err != nil {
		return nil, fmt.Errorf("error unmarshaling sequence file: %v", err)
	}
	return &upload, nil
}
