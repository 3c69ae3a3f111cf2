package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/algo-sampler/analysis"
	"github.com/cwbudde/algo-sampler/internal/render"
	"github.com/cwbudde/algo-sampler/preset"
	"github.com/cwbudde/algo-sampler/wavio"
)

func main() {
	referencePath := flag.String("reference", "reference/c4.wav", "Reference WAV path")
	candidatePath := flag.String("candidate", "", "Candidate WAV path; if empty, render candidate from the preset")
	presetPath := flag.String("preset", "assets/presets/default.json", "Preset JSON path for rendered candidate")
	note := flag.Int("note", 60, "MIDI note for rendered candidate")
	velocity := flag.Int("velocity", 100, "MIDI velocity for rendered candidate")
	sampleRate := flag.Int("sample-rate", 48000, "Analysis sample rate in Hz")
	decayDBFS := flag.Float64("decay-dbfs", -90.0, "Auto-stop threshold in dBFS for rendered candidate")
	decayHoldBlocks := flag.Int("decay-hold-blocks", 6, "Consecutive below-threshold blocks required for stop")
	minDuration := flag.Float64("min-duration", 1.0, "Minimum rendered duration in seconds")
	maxDuration := flag.Float64("max-duration", 20.0, "Maximum rendered duration in seconds")
	releaseAfter := flag.Float64("release-after", 1.0, "Note hold time before NoteOff for rendered candidate")
	writeCandidate := flag.String("write-candidate", "", "Optional path to write rendered candidate WAV")
	jsonOut := flag.Bool("json", false, "Print metrics as JSON")
	flag.Parse()

	ref, err := readMono(*referencePath, *sampleRate)
	if err != nil {
		die("failed to read reference: %v", err)
	}

	var cand []float64
	if *candidatePath != "" {
		cand, err = readMono(*candidatePath, *sampleRate)
		if err != nil {
			die("failed to read candidate: %v", err)
		}
	} else {
		e, _, err := preset.LoadInstrument(*presetPath, *sampleRate, 16)
		if err != nil {
			die("failed to load preset: %v", err)
		}
		opt := render.DefaultOptions()
		opt.Notes = []int{*note}
		opt.Velocity = *velocity
		opt.DecayDBFS = *decayDBFS
		opt.DecayHoldBlocks = *decayHoldBlocks
		opt.MinDuration = *minDuration
		opt.MaxDuration = *maxDuration
		opt.ReleaseAfter = *releaseAfter
		stereo, err := render.Note(e, opt)
		if err != nil {
			die("failed to render candidate: %v", err)
		}
		cand = wavio.StereoToMono64(stereo)
		if *writeCandidate != "" {
			if err := wavio.WriteStereoInterleavedWAV(*writeCandidate, stereo, *sampleRate); err != nil {
				die("failed to write candidate wav: %v", err)
			}
		}
	}

	metrics := analysis.Compare(ref, cand, *sampleRate)
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(metrics); err != nil {
			die("json encode failed: %v", err)
		}
		return
	}

	fmt.Printf("Reference frames: %d\n", metrics.ReferenceFrames)
	fmt.Printf("Candidate frames: %d\n", metrics.CandidateFrames)
	fmt.Printf("Aligned frames:   %d\n", metrics.AlignedFrames)
	fmt.Printf("Lag:              %d samples (%.3f ms)\n", metrics.LagSamples, 1000.0*float64(metrics.LagSamples)/float64(metrics.SampleRate))
	fmt.Println()
	fmt.Printf("Time RMSE:        %.6f\n", metrics.TimeRMSE)
	fmt.Printf("Envelope RMSE:    %.2f dB\n", metrics.EnvelopeRMSEDB)
	fmt.Printf("Spectral RMSE:    %.2f dB\n", metrics.SpectralRMSEDB)
	fmt.Printf("Attack:           ref=%.3fs cand=%.3fs\n", metrics.RefAttackS, metrics.CandAttackS)
	fmt.Printf("Decay slopes:     ref=%.1f dB/s cand=%.1f dB/s\n", metrics.RefDecayDBPerS, metrics.CandDecayDBPerS)
	fmt.Printf("Pitch:            ref=%.2f Hz cand=%.2f Hz (%+.1f cents)\n", metrics.RefPeakHz, metrics.CandPeakHz, metrics.PitchErrorCents)
	fmt.Printf("Score:            %.4f  (0 best, 1 worst)\n", metrics.Score)
	fmt.Printf("Similarity:       %.2f%%\n", metrics.Similarity*100.0)
}

func readMono(path string, sampleRate int) ([]float64, error) {
	x, sr, err := wavio.ReadWAVMono(path)
	if err != nil {
		return nil, err
	}
	return wavio.Resample(x, sr, sampleRate)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
