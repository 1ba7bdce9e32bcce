package pose

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"gait-analysis/models"
)

// EstimatorClient communicates with the Python pose estimation service,
// which extracts per-frame keypoints from raw video.
type EstimatorClient struct {
	serviceURL string
	client     *http.Client
}

// NewEstimatorClient creates a pose estimation client.
func NewEstimatorClient(serviceURL string) *EstimatorClient {
	if serviceURL == "" {
		serviceURL = "http://localhost:5002"
	}

	return &EstimatorClient{
		serviceURL: serviceURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// HealthCheck verifies the estimation service is running.
func (ec *EstimatorClient) HealthCheck() error {
	resp, err := ec.client.Get(ec.serviceURL + "/health")
	if err != nil {
		return fmt.Errorf("pose estimation service not reachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pose estimation service unhealthy: status %d", resp.StatusCode)
	}

	return nil
}

// EstimateFile extracts a keypoint sequence from a video file.
func (ec *EstimatorClient) EstimateFile(videoPath string) (*models.SequenceUpload, error) {
	file, err := os.Open(filepath.Clean(videoPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open video file: %w", err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("video", filepath.Base(videoPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to copy file data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return ec.estimate(body, writer.FormDataContentType())
}

// EstimateBytes extracts a keypoint sequence from in-memory video data.
func (ec *EstimatorClient) EstimateBytes(videoData []byte, filename string) (*models.SequenceUpload, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("video", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(videoData); err != nil {
		return nil, fmt.Errorf("failed to write file data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return ec.estimate(body, writer.FormDataContentType())
}

func (ec *EstimatorClient) estimate(body *bytes.Buffer, contentType string) (*models.SequenceUpload, error) {
	req, err := http.NewRequest("POST", ec.serviceURL+"/estimate", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := ec.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pose estimation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("pose estimation service returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var upload models.SequenceUpload
	if err := json.NewDecoder(resp.Body).Decode(&upload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(upload.Frames) == 0 {
		return nil, fmt.Errorf("received empty keypoint sequence")
	}

	return &upload, nil
}
