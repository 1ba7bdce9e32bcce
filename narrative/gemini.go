package narrative

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"gait-analysis/gait"
)

const systemPrompt = `You are a clinical gait analysis assistant. You receive
structured screening results from a video-based gait assessment and write a
short plain-language narrative for a clinician.

Rules:
- Report only what the structured data supports. Never invent measurements.
- Metrics marked unavailable must be described as "could not be assessed",
  never as zero or normal.
- This is a screening aid, not a diagnosis. Do not name conditions.
- Keep the narrative under 200 words.`

// GeminiClient generates plain-language summaries of analysis results.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClient reads GEMINI_API_KEY and prepares the model.
func NewGeminiClient(ctx context.Context) (*GeminiClient, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %v", err)
	}

	model := client.GenerativeModel("gemini-1.5-flash")
	model.SetTemperature(0.4)
	model.SetMaxOutputTokens(400)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	return &GeminiClient{client: client, model: model}, nil
}

// GenerateNarrative writes the clinician-facing summary for one result.
func (g *GeminiClient) GenerateNarrative(ctx context.Context, result *gait.PoseAnalysisResult) (string, error) {
	if result == nil {
		return "", fmt.Errorf("no analysis result provided")
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(buildPrompt(result)))
	if err != nil {
		return "", fmt.Errorf("failed to generate narrative: %v", err)
	}

	text := extractText(resp)
	if text == "" {
		return "", fmt.Errorf("model returned an empty narrative")
	}
	return strings.ReplaceAll(text, "*", ""), nil
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}

// buildPrompt flattens the result into labelled lines; unavailable metrics
// are stated as such so the model cannot fabricate them.
func buildPrompt(r *gait.PoseAnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analysis %s of sequence %s/%s (%d frames, %.1f fps).\n",
		r.AnalysisID, r.DatasetID, r.SequenceID, r.FrameCount, r.FPS)
	fmt.Fprintf(&b, "Overall level: %s (confidence %s).\n", r.Overall.Level, r.Overall.Confidence)

	writeMetric := func(label string, m gait.Metric, format string) {
		if m.Valid {
			fmt.Fprintf(&b, format, m.Value)
		} else {
			fmt.Fprintf(&b, "%s: unavailable.\n", label)
		}
	}
	writeMetric("Symmetry score", r.Symmetry.Score, "Symmetry score: %.3f.\n")
	fmt.Fprintf(&b, "Symmetry classification: %s.\n", r.Symmetry.Classification)
	writeMetric("Cadence", r.Cadence.StepsPerMinute, "Cadence: %.1f steps/min.\n")
	writeMetric("Stability index", r.Stability.Index, "Stability index: %.3f.\n")
	fmt.Fprintf(&b, "Movement consistency: %s; smoothness: %s.\n",
		r.Quality.Consistency, r.Quality.Smoothness)
	fmt.Fprintf(&b, "Gait cycles detected: %d.\n", len(r.Cycles))

	for _, ja := range r.Symmetry.Joints {
		fmt.Fprintf(&b, "Joint asymmetry %s: %.3f (%s).\n", ja.Joint, ja.Magnitude, ja.Severity)
	}
	for _, rec := range r.Overall.Recommendations {
		fmt.Fprintf(&b, "Recommendation (%s evidence): %s\n", rec.EvidenceLevel, rec.Text)
	}
	if r.Normative != nil {
		fmt.Fprintf(&b, "Closest normative profile: %s (similarity %.2f).\n",
			r.Normative.Profile, r.Normative.Similarity)
	}

	b.WriteString("Write the narrative now.")
	return b.String()
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String())
}
