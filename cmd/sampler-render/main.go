package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-sampler/dsp"
	"github.com/cwbudde/algo-sampler/internal/render"
	"github.com/cwbudde/algo-sampler/preset"
	"github.com/cwbudde/algo-sampler/wavio"
)

func main() {
	notes := flag.String("notes", "60", "Comma-separated MIDI notes to play together")
	velocity := flag.Int("velocity", 100, "MIDI velocity (0-127)")
	duration := flag.Float64("duration", 2.0, "Duration in seconds")
	releaseAfter := flag.Float64("release-after", 1.0, "Send NoteOff after this many seconds")
	decayDBFS := flag.Float64("decay-dbfs", math.Inf(1), "Auto-stop when stereo block RMS falls below this dBFS (e.g. -90). Disabled by default")
	decayHoldBlocks := flag.Int("decay-hold-blocks", 6, "Consecutive below-threshold blocks required to stop in auto-decay mode")
	minDuration := flag.Float64("min-duration", 0.5, "Minimum render duration in seconds when using -decay-dbfs")
	maxDuration := flag.Float64("max-duration", 20.0, "Maximum render duration in seconds when using -decay-dbfs")
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate in Hz")
	polyphony := flag.Int("polyphony", 32, "Maximum simultaneous voices")
	presetPath := flag.String("preset", "assets/presets/default.json", "Preset JSON file path")
	irPath := flag.String("ir", "", "IR WAV path override (optional)")
	irWet := flag.Float64("ir-wet", 0.35, "Wet level of the IR stage")
	irDry := flag.Float64("ir-dry", 1.0, "Dry level of the IR stage")
	room := flag.Float64("room", 0, "Synthesize a room IR with this decay in seconds when no IR file is set (0 disables)")
	output := flag.String("output", "output.wav", "Output WAV file path")
	flag.Parse()

	noteList, err := parseNotes(*notes)
	if err != nil {
		die("invalid -notes: %v", err)
	}

	e, p, err := preset.LoadInstrument(*presetPath, *sampleRate, *polyphony)
	if err != nil {
		die("Error loading preset %q: %v", *presetPath, err)
	}
	if *irPath != "" {
		p.IRWavPath = *irPath
	}

	fmt.Printf("Rendering notes %v, velocity %d at %d Hz (preset: %s, IR: %q)...\n", noteList, *velocity, *sampleRate, *presetPath, p.IRWavPath)

	opt := render.DefaultOptions()
	opt.Notes = noteList
	opt.Velocity = *velocity
	opt.Duration = *duration
	opt.ReleaseAfter = *releaseAfter
	opt.DecayDBFS = *decayDBFS
	opt.DecayHoldBlocks = *decayHoldBlocks
	opt.MinDuration = *minDuration
	opt.MaxDuration = *maxDuration

	samples, err := render.Note(e, opt)
	if err != nil {
		die("render failed: %v", err)
	}
	frames := len(samples) / 2
	if opt.AutoStop() {
		fmt.Printf("Auto-stop at %d frames (%.3fs), threshold %.1f dBFS\n", frames, float64(frames)/float64(*sampleRate), *decayDBFS)
	}

	switch {
	case p.IRWavPath != "":
		if err := applyIR(samples, p.IRWavPath, *sampleRate, float32(*irDry), float32(*irWet)); err != nil {
			die("IR stage failed: %v", err)
		}
	case *room > 0:
		if err := applyRoom(samples, *room, *sampleRate, float32(*irDry), float32(*irWet)); err != nil {
			die("room stage failed: %v", err)
		}
	}

	if err := wavio.WriteStereoInterleavedWAV(*output, samples, *sampleRate); err != nil {
		die("Error writing WAV file: %v", err)
	}
	fmt.Printf("Successfully wrote %s (%d frames)\n", *output, frames)
}

func applyIR(samples []float32, path string, sampleRate int, dry, wet float32) error {
	data, sr, err := wavio.ReadWAV(path)
	if err != nil {
		return err
	}
	data, err = wavio.ResamplePlanar(data, sr, sampleRate)
	if err != nil {
		return err
	}
	left := data[0]
	right := left
	if len(data) > 1 {
		right = data[1]
	}
	c := dsp.NewStereoConvolver(128)
	c.SetIR(left, right)
	c.Process(samples, dry, wet)
	fmt.Printf("Applied IR %s (%d taps)\n", path, c.IRLen())
	return nil
}

func applyRoom(samples []float32, decay float64, sampleRate int, dry, wet float32) error {
	cfg := dsp.DefaultRoomConfig(sampleRate)
	cfg.LowDecay = decay
	cfg.HighDecay = decay / 3
	cfg.Length = decay * 1.2
	left, right, err := dsp.GenerateRoomIR(cfg)
	if err != nil {
		return err
	}
	c := dsp.NewStereoConvolver(128)
	c.SetIR(left, right)
	c.Process(samples, dry, wet)
	fmt.Printf("Applied synthetic room (%.2fs decay, %d taps)\n", decay, c.IRLen())
	return nil
}

func parseNotes(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 127 {
			return nil, fmt.Errorf("note %q must be 0..127", part)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no notes given")
	}
	return out, nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
