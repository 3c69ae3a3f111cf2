package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cwbudde/algo-sampler/playback"
	"github.com/cwbudde/algo-sampler/preset"
	"github.com/cwbudde/algo-sampler/sampler"
	"github.com/ebitengine/oto/v3"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// step is one entry of the scripted phrase.
type step struct {
	at   time.Duration
	on   bool
	note int
}

// otoPlayer holds the active oto player for the lifetime of the process.
var otoPlayer *oto.Player

func main() {
	presetPath := flag.String("preset", "assets/presets/default.json", "Preset JSON file path")
	backend := flag.String("backend", "oto", "Audio backend: oto|beep")
	phrase := flag.String("phrase", "60,64,67,72", "Comma-separated MIDI notes played in sequence")
	stepSec := flag.Float64("step", 0.3, "Seconds between note starts")
	gateSec := flag.Float64("gate", 0.25, "Seconds each note is held")
	velocity := flag.Int("velocity", 100, "MIDI velocity (0-127)")
	tail := flag.Float64("tail", 1.5, "Seconds to keep playing after the last note-off")
	sampleRate := flag.Int("sample-rate", 48000, "Output sample rate in Hz")
	polyphony := flag.Int("polyphony", 32, "Maximum simultaneous voices")
	flag.Parse()

	notes, err := parseNotes(*phrase)
	if err != nil {
		die("invalid -phrase: %v", err)
	}
	e, _, err := preset.LoadInstrument(*presetPath, *sampleRate, *polyphony)
	if err != nil {
		die("Error loading preset %q: %v", *presetPath, err)
	}

	switch strings.ToLower(*backend) {
	case "oto":
		err = startOto(e, *sampleRate)
	case "beep":
		err = startBeep(e, *sampleRate)
	default:
		err = fmt.Errorf("unknown backend %q", *backend)
	}
	if err != nil {
		die("audio init failed: %v", err)
	}

	script := buildScript(notes, secs(*stepSec), secs(*gateSec))
	fmt.Printf("Playing %d notes via %s at %d Hz...\n", len(notes), *backend, *sampleRate)
	start := time.Now()
	for _, s := range script {
		time.Sleep(time.Until(start.Add(s.at)))
		if s.on {
			e.NoteOn(s.note, *velocity, 0)
		} else {
			e.NoteOff(s.note, 0)
		}
	}
	time.Sleep(secs(*tail))
	e.AllNotesOff()
	time.Sleep(50 * time.Millisecond)
	fmt.Println("Done")
}

func buildScript(notes []int, stepDur, gate time.Duration) []step {
	script := make([]step, 0, len(notes)*2)
	for i, n := range notes {
		at := time.Duration(i) * stepDur
		script = append(script, step{at: at, on: true, note: n}, step{at: at + gate, on: false, note: n})
	}
	sort.SliceStable(script, func(i, j int) bool { return script[i].at < script[j].at })
	return script
}

func startOto(e *sampler.Engine, sampleRate int) error {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   20 * time.Millisecond,
	})
	if err != nil {
		return err
	}
	<-ready
	otoPlayer = ctx.NewPlayer(playback.NewPCMReader(e))
	otoPlayer.Play()
	return nil
}

func startBeep(e *sampler.Engine, sampleRate int) error {
	sr := beep.SampleRate(sampleRate)
	if err := speaker.Init(sr, sr.N(50*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(playback.NewStreamer(e))
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

func secs(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
