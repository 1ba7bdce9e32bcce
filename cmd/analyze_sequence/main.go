package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"gait-analysis/config"
	"gait-analysis/gait"
	"gait-analysis/models"
	"gait-analysis/pose"
	"gait-analysis/utils"
)

// Analyze a single sequence from the command line: either a keypoint JSON
// file or a video routed through the pose estimator service.
func main() {
	seqPath := flag.String("file", "", "Keypoint sequence JSON file")
	videoPath := flag.String("video", "", "Video file, sent to the pose estimator service")
	refPath := flag.String("profiles", "", "Reference profile file for normative matching")
	outPath := flag.String("out", "", "Output file for the result JSON (default stdout)")
	showProgress := flag.Bool("progress", false, "Log pipeline stage transitions")
	flag.Parse()

	if (*seqPath == "") == (*videoPath == "") {
		log.Fatal("Usage: analyze_sequence -file <sequence.json> | -video <clip.mp4>")
	}

	var upload *models.SequenceUpload
	var err error
	switch {
	case *seqPath != "":
		upload, err = pose.LoadSequenceFile(*seqPath)
		if err != nil {
			log.Fatalf("ERROR: failed to load sequence: %v", err)
		}
	default:
		estimator := pose.NewEstimatorClient(utils.GetEnv("ESTIMATOR_SERVICE_URL", "http://localhost:5002"))
		if err := estimator.HealthCheck(); err != nil {
			log.Fatalf("ERROR: pose estimator unavailable: %v", err)
		}
		upload, err = estimator.EstimateFile(*videoPath)
		if err != nil {
			log.Fatalf("ERROR: pose estimation failed: %v", err)
		}
		log.Printf("Estimator returned %d frames at %.1f fps\n", len(upload.Frames), upload.FPS)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("ERROR: failed to load configuration: %v", err)
	}

	var opts []gait.Option
	if *refPath != "" {
		rs, err := gait.LoadReferenceSet(*refPath)
		if err != nil {
			log.Fatalf("ERROR: failed to load reference profiles: %v", err)
		}
		opts = append(opts, gait.WithReferenceSet(rs))
	}
	if *showProgress {
		opts = append(opts, gait.WithProgress(func(stage gait.Stage) {
			log.Printf("stage: %s\n", stage)
		}))
	}

	analyzer, err := gait.NewAnalyzer(cfg.GaitConfig(), opts...)
	if err != nil {
		log.Fatalf("ERROR: failed to build analyzer: %v", err)
	}

	seq, err := pose.FromUpload(upload)
	if err != nil {
		log.Fatalf("ERROR: invalid sequence: %v", err)
	}
	seq = pose.Preprocess(seq, pose.DefaultPreprocessConfig())

	result, err := analyzer.Analyze(context.Background(), seq)
	if err != nil {
		log.Fatalf("ERROR: analysis failed: %v", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("ERROR: failed to marshal result: %v", err)
	}
	if *outPath == "" {
		os.Stdout.Write(data)
		os.Stdout.Write([]byte("\n"))
		return
	}
	if err := os.WriteFile(*outPath, data, 0644); err != nil {
		log.Fatalf("ERROR: failed to write %s: %v", *outPath, err)
	}
	log.Printf("Result %s written to %s\n", result.AnalysisID, *outPath)
}
