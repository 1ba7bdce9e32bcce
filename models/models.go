package models

import (
	"encoding/json"
	"time"
)

// KeypointUpload is one named landmark position as emitted by the pose
// estimation service.
type KeypointUpload struct {
	Name       string  `json:"name"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// FrameUpload is one frame of keypoints keyed by the source video frame index.
type FrameUpload struct {
	FrameNumber int              `json:"frameNumber"`
	Keypoints   []KeypointUpload `json:"keypoints"`
}

// SequenceUpload is the wire format clients submit for analysis.
type SequenceUpload struct {
	DatasetID  string        `json:"datasetId"`
	SequenceID string        `json:"sequenceId"`
	FPS        float64       `json:"fps"`
	Subject    string        `json:"subject,omitempty"`
	Frames     []FrameUpload `json:"frames"`
}

// AnalysisRecord is the persisted summary of one completed analysis. The
// headline scores are pointers so an unavailable metric stays absent instead
// of reading as zero; the full result document rides along as raw JSON.
type AnalysisRecord struct {
	ID             string          `json:"id"`
	Timestamp      time.Time       `json:"timestamp"`
	DatasetID      string          `json:"datasetId"`
	SequenceID     string          `json:"sequenceId"`
	Subject        string          `json:"subject,omitempty"`
	OverallLevel   string          `json:"overallLevel"`
	Confidence     string          `json:"confidence"`
	SymmetryScore  *float64        `json:"symmetryScore,omitempty"`
	CadenceSPM     *float64        `json:"cadenceSpm,omitempty"`
	StabilityIndex *float64        `json:"stabilityIndex,omitempty"`
	CycleCount     int             `json:"cycleCount"`
	LatencyMs      float64         `json:"latencyMs"`
	Result         json.RawMessage `json:"result"`
	SequencePath   string          `json:"sequencePath,omitempty"`
}
