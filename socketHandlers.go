package main

import (
	"context"
	"errors"
	"log"
	"log/slog"

	socketio "github.com/googollee/go-socket.io"
	"github.com/mdobak/go-xerrors"

	"gait-analysis/gait"
	"gait-analysis/models"
	"gait-analysis/pose"
	"gait-analysis/utils"
)

// socketController adapts the analysis service to the socket.io surface.
type socketController struct {
	service *analysisService
}

func newSocketController(service *analysisService) *socketController {
	return &socketController{service: service}
}

type analyzerInfo struct {
	RuleTableVersion  string  `json:"ruleTableVersion"`
	MinConfidence     float64 `json:"minConfidence"`
	CoverageFloor     float64 `json:"coverageFloor"`
	ReferenceProfiles int     `json:"referenceProfiles"`
}

func (c *socketController) emitAnalyzerInfo(socket socketio.Conn) {
	analyzer := c.service.getAnalyzer()
	cfg := analyzer.Config()

	info := analyzerInfo{
		RuleTableVersion:  cfg.RuleVersion,
		MinConfidence:     cfg.AcceptanceConfidence,
		CoverageFloor:     cfg.CoverageFloor,
		ReferenceProfiles: analyzer.ReferenceProfileCount(),
	}
	payload, err := json.Marshal(info)
	if err != nil {
		log.Printf("failed to marshal analyzer info: %v\n", err)
		return
	}
	socket.Emit("analyzerInfo", string(payload))
}

func (c *socketController) handleRequestAnalyzerInfo(socket socketio.Conn) {
	c.emitAnalyzerInfo(socket)
}

// handleNewSequence runs a client-submitted sequence through the pipeline,
// streaming stage transitions back as analysisProgress events.
func (c *socketController) handleNewSequence(socket socketio.Conn, payload string) {
	logger := utils.GetLogger()
	ctx := context.Background()

	log.Printf("[handleNewSequence] Starting for socket %s, data length: %d\n", socket.ID(), len(payload))

	if payload == "" {
		logger.ErrorContext(ctx, "no data received in newSequence event")
		socket.Emit("analysisError", map[string]string{"message": "no sequence data received"})
		return
	}

	var upload models.SequenceUpload
	if err := json.Unmarshal([]byte(payload), &upload); err != nil {
		err := xerrors.New(err)
		logger.ErrorContext(ctx, "failed to unmarshal sequence payload", slog.Any("error", err))
		socket.Emit("analysisError", map[string]string{"message": "invalid sequence payload"})
		return
	}

	log.Printf("Sequence received: dataset=%s, sequence=%s, frames=%d, fps=%.1f\n",
		upload.DatasetID, upload.SequenceID, len(upload.Frames), upload.FPS)

	progress := func(stage gait.Stage) {
		socket.Emit("analysisProgress", map[string]string{"stage": string(stage)})
	}

	outcome, err := c.service.analyzeUpload(ctx, &upload, progress)
	if err != nil {
		var inputErr *pose.InputError
		if errors.As(err, &inputErr) {
			socket.Emit("analysisError", map[string]string{"message": inputErr.Error()})
			return
		}
		err := xerrors.New(err)
		logger.ErrorContext(ctx, "socket analysis failed", slog.Any("error", err))
		socket.Emit("analysisError", map[string]string{"message": "analysis failed"})
		return
	}

	resultJSON, err := json.Marshal(outcome.Result)
	if err != nil {
		err := xerrors.New(err)
		logger.ErrorContext(ctx, "failed to marshal analysis result", slog.Any("error", err))
		socket.Emit("analysisError", map[string]string{"message": "failed to serialize result"})
		return
	}

	log.Printf("Analysis %s complete: overall=%s, confidence=%s, cycles=%d, cached=%v\n",
		outcome.Result.AnalysisID, outcome.Result.Overall.Level,
		outcome.Result.Overall.Confidence, len(outcome.Result.Cycles), outcome.Cached)
	socket.Emit("analysisResult", string(resultJSON))
}
