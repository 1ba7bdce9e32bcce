package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gait-analysis/config"
	"gait-analysis/gait"
	"gait-analysis/pose"
)

// Build a normative reference profile file from a directory tree of sequence
// files: each subdirectory is one population label, each JSON file inside it
// one recorded sequence.
//
//	reference-data/
//	  healthy_adult/ walk1.json walk2.json ...
//	  antalgic/      walk1.json ...
func main() {
	dataDir := flag.String("data-dir", "reference-data", "Directory of labelled sequence subdirectories")
	outPath := flag.String("out", "profiles.json", "Output profile file")
	flag.Parse()

	log.SetFlags(log.Ldate | log.Ltime)
	log.Println("=== Reference Profile Builder ===")
	log.Printf("Data: %s\n", *dataDir)
	log.Println()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("ERROR: failed to load configuration: %v", err)
	}
	analyzer, err := gait.NewAnalyzer(cfg.GaitConfig())
	if err != nil {
		log.Fatalf("ERROR: failed to build analyzer: %v", err)
	}

	entries, err := os.ReadDir(*dataDir)
	if err != nil {
		log.Fatalf("ERROR: failed to read data directory: %v", err)
	}

	ctx := context.Background()
	var profiles []gait.ReferenceProfile
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		label := entry.Name()
		labelDir := filepath.Join(*dataDir, label)

		files, err := os.ReadDir(labelDir)
		if err != nil {
			log.Printf("WARNING: skipping %s: %v\n", label, err)
			continue
		}

		count := 0
		for _, file := range files {
			if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
				continue
			}
			path := filepath.Join(labelDir, file.Name())

			upload, err := pose.LoadSequenceFile(path)
			if err != nil {
				log.Printf("WARNING: skipping %s: %v\n", path, err)
				continue
			}
			seq, err := pose.FromUpload(upload)
			if err != nil {
				log.Printf("WARNING: skipping %s: %v\n", path, err)
				continue
			}
			seq = pose.Preprocess(seq, pose.DefaultPreprocessConfig())

			result, err := analyzer.Analyze(ctx, seq)
			if err != nil {
				log.Printf("WARNING: analysis of %s failed: %v\n", path, err)
				continue
			}
			profile, ok := gait.ProfileFromResult(label, result)
			if !ok {
				log.Printf("WARNING: %s lacks the metrics a profile needs (overall: %s)\n",
					path, result.Overall.Level)
				continue
			}
			profiles = append(profiles, profile)
			count++
		}
		log.Printf("Label %s: %d profiles\n", label, count)
	}

	if len(profiles) < 2 {
		log.Fatalf("ERROR: need at least 2 usable profiles, got %d", len(profiles))
	}
	if err := gait.SaveProfiles(*outPath, profiles); err != nil {
		log.Fatalf("ERROR: failed to save profiles: %v", err)
	}

	log.Println()
	log.Printf("Wrote %d profiles to %s\n", len(profiles), *outPath)
}
