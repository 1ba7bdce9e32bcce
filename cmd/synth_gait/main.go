package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"gait-analysis/pose"
)

// Generate a synthetic walker sequence in the upload wire format. Useful for
// exercising the server and the CLI tools without a pose estimator.
func main() {
	cfg := pose.DefaultSynthConfig()

	flag.IntVar(&cfg.Frames, "frames", cfg.Frames, "Total frame count")
	flag.Float64Var(&cfg.FPS, "fps", cfg.FPS, "Frame rate")
	flag.IntVar(&cfg.PeriodFrames, "period", cfg.PeriodFrames, "Stride period in frames")
	flag.Float64Var(&cfg.LeftLift, "left-lift", cfg.LeftLift, "Left heel lift amplitude, px")
	flag.Float64Var(&cfg.RightLift, "right-lift", cfg.RightLift, "Right heel lift amplitude, px")
	flag.Float64Var(&cfg.ForwardSpeed, "speed", cfg.ForwardSpeed, "Forward walking speed, px/s")
	flag.Float64Var(&cfg.SwayAmplitude, "sway", cfg.SwayAmplitude, "Vertical hip sway amplitude, px")
	flag.IntVar(&cfg.SwayPeriodFrames, "sway-period", cfg.SwayPeriodFrames, "Sway period in frames")
	flag.Float64Var(&cfg.Confidence, "confidence", cfg.Confidence, "Keypoint confidence")
	flag.Float64Var(&cfg.Noise, "noise", cfg.Noise, "Gaussian position noise stddev, px")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Noise seed")
	flag.StringVar(&cfg.DatasetID, "dataset", cfg.DatasetID, "Dataset id on the output")
	flag.StringVar(&cfg.SequenceID, "sequence", cfg.SequenceID, "Sequence id on the output")
	outPath := flag.String("out", "", "Output file (default stdout)")
	flag.Parse()

	seq, err := pose.Synthesize(cfg)
	if err != nil {
		log.Fatalf("ERROR: failed to synthesize sequence: %v", err)
	}

	upload := pose.ToUpload(seq)
	data, err := json.MarshalIndent(upload, "", "  ")
	if err != nil {
		log.Fatalf("ERROR: failed to marshal sequence: %v", err)
	}

	if *outPath == "" {
		os.Stdout.Write(data)
		os.Stdout.Write([]byte("\n"))
		return
	}
	if err := os.WriteFile(*outPath, data, 0644); err != nil {
		log.Fatalf("ERROR: failed to write %s: %v", *outPath, err)
	}
	log.Printf("Wrote %d frames to %s\n", len(upload.Frames), *outPath)
}
