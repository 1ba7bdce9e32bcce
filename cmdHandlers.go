package main

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
	"github.com/mdobak/go-xerrors"

	"gait-analysis/cache"
	"gait-analysis/config"
	"gait-analysis/db"
	"gait-analysis/gait"
	"gait-analysis/history"
	"gait-analysis/metrics"
	"gait-analysis/models"
	"gait-analysis/narrative"
	"gait-analysis/pose"
	"gait-analysis/utils"
)

type apiError struct {
	Message string `json:"message"`
}

type referenceUploadResponse struct {
	Added    []string `json:"added"`
	Profiles int      `json:"profiles"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode JSON response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiError{Message: message})
}

func allowCORS(w http.ResponseWriter, methods string) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Allow-Methods", methods)
	w.Header().Set("Access-Control-Allow-Credentials", "true")
}

func newAnalyzeHandler(service *analysisService) http.HandlerFunc {
	logger := utils.GetLogger()
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		allowCORS(w, "POST, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if r.Method != http.MethodPost {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var upload models.SequenceUpload
		if err := json.NewDecoder(r.Body).Decode(&upload); err != nil {
			logger.ErrorContext(ctx, "failed to parse sequence upload", slog.Any("error", err))
			writeJSONError(w, http.StatusBadRequest, "invalid sequence payload")
			return
		}

		log.Printf("[HTTP] Analysis request: dataset=%s, sequence=%s, frames=%d, fps=%.1f\n",
			upload.DatasetID, upload.SequenceID, len(upload.Frames), upload.FPS)

		outcome, err := service.analyzeUpload(ctx, &upload, nil)
		if err != nil {
			var inputErr *pose.InputError
			if errors.As(err, &inputErr) {
				writeJSONError(w, http.StatusBadRequest, inputErr.Error())
				return
			}
			err := xerrors.New(err)
			logger.ErrorContext(ctx, "analysis failed", slog.Any("error", err))
			writeJSONError(w, http.StatusInternalServerError, "analysis failed")
			return
		}

		log.Printf("[HTTP] Analysis complete: id=%s, overall=%s, cached=%v\n",
			outcome.Result.AnalysisID, outcome.Result.Overall.Level, outcome.Cached)
		writeJSON(w, http.StatusOK, outcome.Result)
	}
}

func newAnalysesHandler(store *history.Store, database db.DBClient) http.HandlerFunc {
	logger := utils.GetLogger()
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		allowCORS(w, "GET, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if r.Method != http.MethodGet {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
				limit = parsed
			}
		}

		if datasetID := r.URL.Query().Get("dataset"); datasetID != "" && database != nil {
			records, err := database.AnalysesByDataset(datasetID, limit)
			if err != nil {
				logger.ErrorContext(ctx, "failed to load analyses by dataset", slog.Any("error", err))
				writeJSONError(w, http.StatusInternalServerError, "failed to load analyses")
				return
			}
			writeJSON(w, http.StatusOK, records)
			return
		}

		records, err := store.Recent(limit)
		if err != nil {
			logger.ErrorContext(ctx, "failed to load analysis history", slog.Any("error", err))
			writeJSONError(w, http.StatusInternalServerError, "failed to load analyses")
			return
		}
		writeJSON(w, http.StatusOK, records)
	}
}

type narrativeRequest struct {
	AnalysisID string                   `json:"analysisId,omitempty"`
	Result     *gait.PoseAnalysisResult `json:"result,omitempty"`
}

type narrativeResponse struct {
	AnalysisID string `json:"analysisId"`
	Narrative  string `json:"narrative"`
}

func newNarrativeHandler(gemini *narrative.GeminiClient, store *history.Store) http.HandlerFunc {
	logger := utils.GetLogger()
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		allowCORS(w, "POST, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if r.Method != http.MethodPost {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if gemini == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "narrative generation is not configured")
			return
		}

		var req narrativeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid narrative request")
			return
		}

		result := req.Result
		if result == nil && req.AnalysisID != "" {
			found, err := findStoredResult(store, req.AnalysisID)
			if err != nil {
				logger.ErrorContext(ctx, "failed to look up analysis", slog.Any("error", err))
				writeJSONError(w, http.StatusInternalServerError, "failed to look up analysis")
				return
			}
			result = found
		}
		if result == nil {
			writeJSONError(w, http.StatusNotFound, "analysis not found")
			return
		}

		text, err := gemini.GenerateNarrative(ctx, result)
		if err != nil {
			err := xerrors.New(err)
			logger.ErrorContext(ctx, "narrative generation failed", slog.Any("error", err))
			writeJSONError(w, http.StatusBadGateway, "narrative generation failed")
			return
		}

		writeJSON(w, http.StatusOK, narrativeResponse{AnalysisID: result.AnalysisID, Narrative: text})
	}
}

// findStoredResult scans the history for a full result document by analysis
// id. The history is small; a scan beats adding an index for a debug path.
func findStoredResult(store *history.Store, analysisID string) (*gait.PoseAnalysisResult, error) {
	records, err := store.Recent(0)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		var result gait.PoseAnalysisResult
		if err := json.Unmarshal(rec.Result, &result); err != nil {
			continue
		}
		if result.AnalysisID == analysisID {
			return &result, nil
		}
	}
	return nil, nil
}

func newReferenceUploadHandler(service *analysisService, profilePath string) http.HandlerFunc {
	logger := utils.GetLogger()
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		allowCORS(w, "POST, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if r.Method != http.MethodPost {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if profilePath == "" {
			writeJSONError(w, http.StatusServiceUnavailable, "reference profiles are not configured")
			return
		}

		if err := r.ParseMultipartForm(64 << 20); err != nil {
			logger.ErrorContext(ctx, "failed to parse multipart form", slog.Any("error", err))
			writeJSONError(w, http.StatusBadRequest, "invalid upload payload")
			return
		}

		label := strings.TrimSpace(r.FormValue("label"))
		if label == "" {
			writeJSONError(w, http.StatusBadRequest, "label is required")
			return
		}

		var files = r.MultipartForm.File["sequences"]
		if len(files) == 0 {
			writeJSONError(w, http.StatusBadRequest, "no sequence files provided")
			return
		}

		// Start from the existing profile file so uploads extend, not
		// replace, the reference set.
		profiles := []gait.ReferenceProfile{}
		if existing, err := gait.LoadReferenceSet(profilePath); err == nil {
			profiles = existing.Profiles()
		}

		analyzer := service.getAnalyzer()
		var added []string
		for _, fileHeader := range files {
			src, err := fileHeader.Open()
			if err != nil {
				logger.ErrorContext(ctx, "failed to open uploaded file", slog.Any("error", err))
				continue
			}
			data, err := io.ReadAll(src)
			src.Close()
			if err != nil {
				logger.ErrorContext(ctx, "failed to read uploaded file", slog.Any("error", err))
				continue
			}

			var upload models.SequenceUpload
			if err := json.Unmarshal(data, &upload); err != nil {
				logger.ErrorContext(ctx, "uploaded file is not a sequence", slog.Any("error", err))
				continue
			}
			seq, err := pose.FromUpload(&upload)
			if err != nil {
				logger.ErrorContext(ctx, "uploaded sequence is invalid", slog.Any("error", err))
				continue
			}
			result, err := analyzer.Analyze(ctx, seq)
			if err != nil {
				logger.ErrorContext(ctx, "failed to analyze reference sequence", slog.Any("error", err))
				continue
			}
			profile, ok := gait.ProfileFromResult(label, result)
			if !ok {
				logger.WarnContext(ctx, "reference sequence lacks the required metrics",
					slog.String("file", fileHeader.Filename))
				continue
			}
			profiles = append(profiles, profile)
			added = append(added, fileHeader.Filename)
		}

		if len(added) == 0 {
			writeJSONError(w, http.StatusBadRequest, "no usable reference sequences in upload")
			return
		}

		if err := gait.SaveProfiles(profilePath, profiles); err != nil {
			logger.ErrorContext(ctx, "failed to save reference profiles", slog.Any("error", err))
			writeJSONError(w, http.StatusInternalServerError, "failed to save reference profiles")
			return
		}
		if len(profiles) >= 2 {
			rs, err := gait.NewReferenceSet(profiles)
			if err == nil {
				if err := service.setReferenceSet(rs); err != nil {
					logger.ErrorContext(ctx, "failed to apply reference set", slog.Any("error", err))
				}
			}
		}

		writeJSON(w, http.StatusOK, referenceUploadResponse{Added: added, Profiles: len(profiles)})
	}
}

func serve(protocol, port string) {
	protocol = strings.ToLower(protocol)
	var allowOriginFunc = func(r *http.Request) bool {
		return true
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	var analyzerOpts []gait.Option
	if cfg.ReferenceProfilePath != "" {
		if rs, refErr := gait.LoadReferenceSet(cfg.ReferenceProfilePath); refErr != nil {
			log.Printf("Failed to load reference profiles (%s): %v\n", cfg.ReferenceProfilePath, refErr)
		} else {
			log.Printf("Loaded %d reference profiles from %s\n", rs.ProfileCount(), cfg.ReferenceProfilePath)
			analyzerOpts = append(analyzerOpts, gait.WithReferenceSet(rs))
		}
	}

	analyzer, err := gait.NewAnalyzer(cfg.GaitConfig(), analyzerOpts...)
	if err != nil {
		log.Fatalf("failed to build gait analyzer: %v", err)
	}

	database, err := db.NewDBClient()
	if err != nil {
		log.Fatalf("failed to open analysis database: %v", err)
	}
	defer database.Close()

	resultCache := cache.NewResultCache(cfg.CacheTTL)
	defer resultCache.Close()

	service := &analysisService{
		analyzer:         analyzer,
		cache:            resultCache,
		store:            history.NewStore(cfg.HistoryPath),
		database:         database,
		sequenceDir:      cfg.SequenceDir,
		persistSequences: cfg.PersistSequences,
		preprocess:       pose.DefaultPreprocessConfig(),
	}

	var gemini *narrative.GeminiClient
	if utils.GetEnv("GEMINI_API_KEY", "") != "" {
		client, gemErr := narrative.NewGeminiClient(context.Background())
		if gemErr != nil {
			log.Printf("Failed to initialise narrative client: %v\n", gemErr)
		} else {
			gemini = client
			defer gemini.Close()
		}
	} else {
		log.Println("GEMINI_API_KEY not set, narrative endpoint disabled")
	}

	go func() {
		if err := metrics.StartMetricsServer(cfg.MetricsAddr); err != nil {
			log.Printf("metrics server stopped: %v\n", err)
		}
	}()

	controller := newSocketController(service)

	server := socketio.NewServer(&engineio.Options{
		PingTimeout:  60 * time.Second,
		PingInterval: 25 * time.Second,
		Transports: []transport.Transport{
			&websocket.Transport{
				CheckOrigin: allowOriginFunc,
			},
			&polling.Transport{
				CheckOrigin: allowOriginFunc,
			},
		},
	})

	server.OnConnect("/", func(socket socketio.Conn) error {
		socket.SetContext("")
		connURL := socket.URL()
		log.Printf("CONNECTED: %s, transport: %s, remote addr: %s\n", socket.ID(), connURL.String(), socket.RemoteAddr())
		controller.emitAnalyzerInfo(socket)
		return nil
	})

	server.OnEvent("/", "requestAnalyzerInfo", func(socket socketio.Conn) {
		log.Printf("requestAnalyzerInfo received from %s\n", socket.ID())
		controller.handleRequestAnalyzerInfo(socket)
	})

	server.OnEvent("/", "newSequence", func(socket socketio.Conn, msg string) {
		log.Printf("=== newSequence event received from %s, data length: %d ===\n", socket.ID(), len(msg))
		// Run handler in goroutine to prevent blocking, with panic recovery
		go func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("panic in handleNewSequence for socket %s: %v\n", socket.ID(), r)
					socket.Emit("analysisError", map[string]string{"message": "internal server error during processing"})
				}
			}()
			controller.handleNewSequence(socket, msg)
		}()
	})

	server.OnError("/", func(s socketio.Conn, e error) {
		log.Println("meet error:", e)
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		log.Printf("Socket disconnected - ID: %s, Reason: %s\n", s.ID(), reason)
	})

	go func() {
		if err := server.Serve(); err != nil {
			log.Fatalf("socketio listen error: %s\n", err)
		}
	}()
	defer server.Close()

	serveHTTPS := protocol == "https"

	mux := http.NewServeMux()
	mux.Handle("/socket.io/", server)
	mux.HandleFunc("/api/sequences/analyze", newAnalyzeHandler(service))
	mux.HandleFunc("/api/analyses", newAnalysesHandler(service.store, database))
	mux.HandleFunc("/api/analyses/narrative", newNarrativeHandler(gemini, service.store))
	mux.HandleFunc("/api/reference/profiles", newReferenceUploadHandler(service, cfg.ReferenceProfilePath))
	mux.Handle("/", http.FileServer(http.Dir("static")))

	serveHTTP(server, serveHTTPS, port, mux)
}

func serveHTTP(socketServer *socketio.Server, serveHTTPS bool, port string, handler http.Handler) {
	if handler == nil {
		handler = socketServer
	}
	if serveHTTPS {
		httpsAddr := ":" + port
		httpsServer := &http.Server{
			Addr: httpsAddr,
			TLSConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			Handler: handler,
		}

		cert_key := utils.GetEnv("CERT_KEY", "")
		cert_file := utils.GetEnv("CERT_FILE", "")
		if cert_key == "" || cert_file == "" {
			log.Fatal("Missing cert")
		}

		log.Printf("Starting HTTPS server on %s\n", httpsAddr)
		if err := httpsServer.ListenAndServeTLS(cert_file, cert_key); err != nil {
			log.Fatalf("HTTPS server ListenAndServeTLS: %v", err)
		}
	}

	log.Printf("Starting HTTP server on port %v", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("HTTP server ListenAndServe: %v", err)
	}
}
