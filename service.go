package main

import (
	"context"
	"log"
	"log/slog"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"gait-analysis/cache"
	"gait-analysis/db"
	"gait-analysis/gait"
	"gait-analysis/history"
	"gait-analysis/metrics"
	"gait-analysis/models"
	"gait-analysis/pose"
	"gait-analysis/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// analysisService runs the full request pipeline shared by the HTTP and
// socket surfaces: parse, preprocess, cache lookup, analyze, persist,
// metrics. Both surfaces differ only in how they report progress and errors.
type analysisService struct {
	mu               sync.RWMutex // guards analyzer, swapped on reference updates
	analyzer         *gait.Analyzer
	cache            *cache.ResultCache
	store            *history.Store
	database         db.DBClient
	sequenceDir      string
	persistSequences bool
	preprocess       pose.PreprocessConfig
}

func (s *analysisService) getAnalyzer() *gait.Analyzer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.analyzer
}

// setReferenceSet rebuilds the analyzer with an updated reference set so
// in-flight analyses keep the analyzer they started with.
func (s *analysisService) setReferenceSet(rs *gait.ReferenceSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	analyzer, err := gait.NewAnalyzer(s.analyzer.Config(), gait.WithReferenceSet(rs))
	if err != nil {
		return err
	}
	s.analyzer = analyzer
	return nil
}

// analysisOutcome is what the pipeline hands back to a surface handler.
type analysisOutcome struct {
	Result *gait.PoseAnalysisResult
	Cached bool
}

// analyzeUpload runs one upload through the pipeline. Invalid input surfaces
// as pose.InputError so handlers can map it to a 400 or an error event.
func (s *analysisService) analyzeUpload(ctx context.Context, upload *models.SequenceUpload, progress gait.ProgressFunc) (*analysisOutcome, error) {
	logger := utils.GetLogger()

	seq, err := pose.FromUpload(upload)
	if err != nil {
		metrics.AnalysisErrorsTotal.Inc()
		return nil, err
	}
	seq = pose.Preprocess(seq, s.preprocess)
	analyzer := s.getAnalyzer()

	key := ""
	if upload.DatasetID != "" && upload.SequenceID != "" {
		key = cache.Key(upload.DatasetID, upload.SequenceID, analyzer.Config())
		if cached, ok := s.cache.Get(ctx, key); ok {
			metrics.CacheHitsTotal.Inc()
			logger.InfoContext(ctx, "analysis served from cache",
				slog.String("datasetID", upload.DatasetID),
				slog.String("sequenceID", upload.SequenceID),
			)
			if progress != nil {
				progress(gait.StageComplete)
			}
			return &analysisOutcome{Result: cached, Cached: true}, nil
		}
		metrics.CacheMissesTotal.Inc()
	}

	started := time.Now()
	result, err := analyzer.AnalyzeWithProgress(ctx, seq, progress)
	if err != nil {
		metrics.AnalysisErrorsTotal.Inc()
		return nil, err
	}

	metrics.AnalysesTotal.WithLabelValues(string(result.Overall.Level)).Inc()
	metrics.AnalysisDuration.Observe(time.Since(started).Seconds())
	metrics.CyclesDetected.Observe(float64(len(result.Cycles)))
	metrics.FramesAnalyzed.Observe(float64(result.FrameCount))

	if key != "" {
		s.cache.Set(ctx, key, result)
	}
	s.persistRecord(ctx, upload, result)

	return &analysisOutcome{Result: result}, nil
}

// persistRecord writes the summary record to the local history and the
// configured database. Persistence failures are logged, never fatal: the
// caller still gets their result.
func (s *analysisService) persistRecord(ctx context.Context, upload *models.SequenceUpload, result *gait.PoseAnalysisResult) {
	logger := utils.GetLogger()

	sequencePath := ""
	if s.persistSequences {
		path, err := pose.PersistSequence(upload, s.sequenceDir)
		if err != nil {
			logger.WarnContext(ctx, "failed to persist sequence", slog.Any("error", err))
		} else {
			sequencePath = path
		}
	}

	record := recordFromResult(result, upload.Subject, sequencePath)
	if err := s.store.Append(record); err != nil {
		logger.WarnContext(ctx, "failed to append analysis history", slog.Any("error", err))
	}
	if s.database != nil {
		record.Timestamp = record.Timestamp.UTC()
		if err := s.database.StoreAnalysis(record); err != nil {
			logger.WarnContext(ctx, "failed to store analysis record", slog.Any("error", err))
		}
	}
}

// recordFromResult flattens the headline scores into the storable summary.
// Unavailable metrics stay nil rather than zero.
func recordFromResult(result *gait.PoseAnalysisResult, subject, sequencePath string) *models.AnalysisRecord {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		log.Printf("failed to marshal analysis result %s: %v\n", result.AnalysisID, err)
		resultJSON = []byte("{}")
	}

	record := &models.AnalysisRecord{
		ID:           utils.NewULIDFromTimestamp(time.Now()),
		Timestamp:    time.Now(),
		DatasetID:    result.DatasetID,
		SequenceID:   result.SequenceID,
		Subject:      subject,
		OverallLevel: string(result.Overall.Level),
		Confidence:   string(result.Overall.Confidence),
		CycleCount:   len(result.Cycles),
		LatencyMs:    result.Performance.ProcessingMs,
		Result:       resultJSON,
		SequencePath: sequencePath,
	}
	if result.Symmetry.Score.Valid {
		v := result.Symmetry.Score.Value
		record.SymmetryScore = &v
	}
	if result.Cadence.StepsPerMinute.Valid {
		v := result.Cadence.StepsPerMinute.Value
		record.CadenceSPM = &v
	}
	if result.Stability.Index.Valid {
		v := result.Stability.Index.Value
		record.StabilityIndex = &v
	}
	return record
}
