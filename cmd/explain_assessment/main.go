package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"gait-analysis/config"
	"gait-analysis/gait"
	"gait-analysis/narrative"
	"gait-analysis/pose"
)

// Explain WHY a sequence gets the assessment it does: per-stage breakdown of
// coverage, detected events, per-joint asymmetries and the fired rules.
func main() {
	withNarrative := flag.Bool("narrative", false, "Also generate the plain-language narrative (needs GEMINI_API_KEY)")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatal("Usage: explain_assessment [-narrative] <sequence.json>")
	}
	seqPath := flag.Arg(0)

	upload, err := pose.LoadSequenceFile(seqPath)
	if err != nil {
		log.Fatalf("Failed to load sequence: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gaitCfg := cfg.GaitConfig()

	seq, err := pose.FromUpload(upload)
	if err != nil {
		log.Fatalf("Invalid sequence: %v", err)
	}
	seq = pose.Preprocess(seq, pose.DefaultPreprocessConfig())

	fmt.Printf("=== Explaining Assessment for: %s ===\n\n", seqPath)
	fmt.Printf("Sequence: %d frames at %.1f fps (%.1fs), dataset=%s sequence=%s\n\n",
		seq.FrameCount(), seq.FPS, seq.Duration, seq.DatasetID, seq.SequenceID)

	// Stage 1: feature coverage.
	features := gait.ExtractFeatures(seq, gaitCfg)
	fmt.Println("Stage 1: Feature extraction")
	fmt.Printf("   Valid frame fraction: %.2f (floor %.2f)\n",
		features.Summary.ValidFrameFraction, gaitCfg.CoverageFloor)
	fmt.Printf("   COM coverage: %.2f\n", features.Summary.COMCoverage)
	for _, pair := range gait.BilateralJoints() {
		fmt.Printf("   %-10s coverage: left %.2f, right %.2f\n", pair.Name,
			features.Summary.JointCoverage[pair.Left], features.Summary.JointCoverage[pair.Right])
	}
	if features.Summary.ValidFrameFraction < gaitCfg.CoverageFloor {
		fmt.Println("   -> coverage below floor: most metrics will be unavailable")
	}
	fmt.Println()

	// Stage 2: events and cycles.
	cycles := gait.DetectCycles(seq, gaitCfg)
	fmt.Println("Stage 2: Gait events and cycles")
	for _, side := range pose.Sides() {
		for _, e := range gait.DetectEvents(seq, gaitCfg, side) {
			fmt.Printf("   %-11s %-5s frame %4d (t=%.2fs)\n", e.Type, e.Side, e.Frame, e.Timestamp)
		}
	}
	fmt.Printf("   Cycles detected: %d\n", len(cycles))
	for i, c := range cycles {
		stance := "unavailable"
		if c.StanceFraction.Valid {
			stance = fmt.Sprintf("%.2f", c.StanceFraction.Value)
		}
		fmt.Printf("   cycle %d: %-5s frames %d-%d (%.2fs), stance fraction %s\n",
			i+1, c.Side, c.StartFrame, c.EndFrame, c.Duration, stance)
	}
	fmt.Println()

	// Stage 3: full assessment through the analyzer.
	analyzer, err := gait.NewAnalyzer(gaitCfg)
	if err != nil {
		log.Fatalf("Failed to build analyzer: %v", err)
	}
	result, err := analyzer.Analyze(context.Background(), seq)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	fmt.Println("Stage 3: Scoring")
	printMetric("Symmetry score", result.Symmetry.Score)
	fmt.Printf("   Symmetry classification: %s\n", result.Symmetry.Classification)
	for _, ja := range result.Symmetry.Joints {
		fmt.Printf("   joint %-10s asymmetry %.3f (%s)\n", ja.Joint, ja.Magnitude, ja.Severity)
	}
	printMetric("Temporal asymmetry", result.Symmetry.TemporalAsymmetry)
	printMetric("Cadence (steps/min)", result.Cadence.StepsPerMinute)
	fmt.Printf("   Cadence level: %s\n", result.Cadence.Level)
	printMetric("Stability index", result.Stability.Index)
	fmt.Printf("   Stability level: %s\n", result.Stability.Level)
	printMetric("Velocity CV", result.Quality.VelocityCV)
	fmt.Printf("   Consistency: %s, smoothness: %s\n", result.Quality.Consistency, result.Quality.Smoothness)
	printMetric("Stride periodicity", result.Performance.Periodicity)
	fmt.Println()

	fmt.Println("Stage 4: Clinical rules")
	fmt.Printf("   Rule table: %s\n", result.RuleTableVersion)
	fmt.Printf("   Overall: %s (confidence %s)\n", result.Overall.Level, result.Overall.Confidence)
	for _, rec := range result.Overall.Recommendations {
		fmt.Printf("   - [%s evidence, threshold %s]\n     %s\n",
			rec.EvidenceLevel, rec.ClinicalThreshold, rec.Text)
	}
	if result.Normative != nil {
		fmt.Printf("   Closest normative profile: %s (similarity %.2f)\n",
			result.Normative.Profile, result.Normative.Similarity)
	}

	if *withNarrative {
		fmt.Println()
		fmt.Println("Stage 5: Narrative")
		gemini, err := narrative.NewGeminiClient(context.Background())
		if err != nil {
			log.Fatalf("Failed to initialise narrative client: %v", err)
		}
		defer gemini.Close()

		text, err := gemini.GenerateNarrative(context.Background(), result)
		if err != nil {
			log.Fatalf("Narrative generation failed: %v", err)
		}
		fmt.Println(text)
	}

	if result.Overall.Level == gait.OverallUnknown {
		os.Exit(2)
	}
}

func printMetric(label string, m gait.Metric) {
	if m.Valid {
		fmt.Printf("   %s: %.3f\n", label, m.Value)
	} else {
		fmt.Printf("   %s: unavailable\n", label)
	}
}
