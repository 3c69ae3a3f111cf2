package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/algo-sampler/preset"
	"github.com/cwbudde/algo-sampler/wavio"
)

func main() {
	referencePath := flag.String("reference", "reference/c4.wav", "Reference WAV path")
	presetPath := flag.String("preset", "assets/presets/default.json", "Base preset JSON path")
	outputPreset := flag.String("output-preset", "assets/presets/fitted.json", "Path to write best fitted preset JSON")
	optimize := flag.String("optimize", "amp,gain", "Comma-separated knob groups to optimize: amp, gain, filter")
	note := flag.Int("note", 60, "MIDI note to fit")
	velocity := flag.Int("velocity", 100, "MIDI velocity for rendering during fit")
	releaseAfter := flag.Float64("release-after", 1.0, "Seconds before NoteOff for each evaluation render")
	sampleRate := flag.Int("sample-rate", 48000, "Render/analysis sample rate")
	maxSeconds := flag.Float64("max-seconds", 6.0, "Truncate the reference to this many seconds")
	seed := flag.Int64("seed", 1, "Random seed")
	timeBudget := flag.Float64("time-budget", 60.0, "Optimization time budget in seconds")
	maxEvals := flag.Int("max-evals", 2000, "Maximum objective evaluations")
	reportEvery := flag.Int("report-every", 20, "Print progress every N evaluations")
	mayflyPop := flag.Int("mayfly-pop", 10, "Male and female population size per Mayfly run")
	roundEvals := flag.Int("mayfly-round-evals", 240, "Target eval budget per Mayfly round")
	flag.Parse()

	groups, err := parseOptimizeGroups(*optimize)
	if err != nil {
		die("invalid --optimize: %v", err)
	}
	if *maxEvals < 1 {
		die("max-evals must be >= 1")
	}
	if *timeBudget <= 0 {
		die("time-budget must be > 0")
	}
	if *mayflyPop < 2 {
		*mayflyPop = 2
	}
	if *roundEvals < *mayflyPop*2 {
		*roundEvals = *mayflyPop * 2
	}

	e, base, err := preset.LoadInstrument(*presetPath, *sampleRate, 8)
	if err != nil {
		die("failed to load preset: %v", err)
	}

	refRaw, refSR, err := wavio.ReadWAVMono(*referencePath)
	if err != nil {
		die("failed to read reference: %v", err)
	}
	ref, err := wavio.Resample(refRaw, refSR, *sampleRate)
	if err != nil {
		die("failed to resample reference: %v", err)
	}
	if limit := int(*maxSeconds * float64(*sampleRate)); limit > 0 && len(ref) > limit {
		ref = ref[:limit]
	}

	defs, initCand := initCandidate(base.Params, groups)
	cfg := &optimizationConfig{
		engine:       e,
		baseParams:   base.Params,
		reference:    ref,
		defs:         defs,
		initial:      initCand,
		groups:       groups,
		note:         *note,
		velocity:     *velocity,
		releaseAfter: *releaseAfter,
		seed:         *seed,
		timeBudget:   *timeBudget,
		maxEvals:     *maxEvals,
		reportEvery:  *reportEvery,
		mayflyPop:    *mayflyPop,
		roundEvals:   *roundEvals,
	}

	result, err := runOptimization(cfg)
	if err != nil {
		die("optimization failed: %v", err)
	}

	if err := writePreset(*outputPreset, base, defs, result, groups); err != nil {
		die("failed to write preset: %v", err)
	}
	fmt.Printf("Best score=%.3f dB after %d evals (%d rounds, %.1fs)\n", result.Score, result.Evals, result.Rounds, result.Elapsed.Seconds())
	for i, d := range defs {
		fmt.Printf("  %-18s %.5f\n", d.Name, result.Best.Vals[i])
	}
	fmt.Printf("Wrote %s\n", *outputPreset)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
