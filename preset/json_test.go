package preset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadJSONAppliesFieldsAndParams(t *testing.T) {
	dir := t.TempDir()
	presetPath := filepath.Join(dir, "preset.json")
	writeFile(t, presetPath, `{
  "overall_gain_db": -6,
  "pan": 0.25,
  "monophonic": true,
  "legato": true,
  "amp_envelope": {"attack": 0.01, "decay": 0.3, "sustain": 0.6, "release": 0.5, "release_hold": 0.02},
  "filter": {"enable": true, "cutoff": 2000, "resonance": 3},
  "params": {"lfoRate": 7, "lfoTargetGainToggle": 1, "filterEnvelopeLegatoRetrigger": 1},
  "ir_wav_path": "ir/room.wav",
  "instrument": "inst.json"
}`)

	p, err := LoadJSON(presetPath)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	got := p.Params
	if got.OverallGainDB != -6 || got.Pan != 0.25 || !got.IsMonophonic || !got.IsLegato {
		t.Fatalf("global fields mismatch: %+v", got)
	}
	if got.AttackDuration != 0.01 || got.DecayDuration != 0.3 || got.SustainLevel != 0.6 || got.ReleaseDuration != 0.5 || got.ReleaseHoldDuration != 0.02 {
		t.Fatalf("envelope mismatch: %+v", got)
	}
	if got.HoldDuration != 0 {
		t.Fatalf("unset hold should keep default, got %f", got.HoldDuration)
	}
	if !got.FilterEnable || got.FilterCutoff != 2000 || got.FilterResonance != 3 {
		t.Fatalf("filter mismatch: %+v", got)
	}
	if got.LFORate != 7 || !got.LFOTargetGain || !got.FilterEnvelopeCoupling.RetriggerOnLegato {
		t.Fatalf("params map not applied: %+v", got)
	}
	if p.IRWavPath != filepath.Join(dir, "ir", "room.wav") {
		t.Fatalf("ir path mismatch: %q", p.IRWavPath)
	}
	if p.Instrument != filepath.Join(dir, "inst.json") {
		t.Fatalf("instrument path mismatch: %q", p.Instrument)
	}
}

func TestLoadJSONRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
		field   string
	}{
		{"pan", `{"pan": 2}`, "pan"},
		{"sustain", `{"amp_envelope": {"sustain": 1.5}}`, "amp_envelope.sustain"},
		{"cutoff", `{"filter": {"cutoff": 0}}`, "filter.cutoff"},
		{"params range", `{"params": {"lfoRate": 500}}`, "params.lfoRate"},
		{"params unknown", `{"params": {"noSuchThing": 1}}`, "noSuchThing"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "preset.json")
			writeFile(t, path, tc.content)
			_, err := LoadJSON(path)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Fatalf("error %q should name %q", err, tc.field)
			}
		})
	}
}

func TestApplyFileNilHandling(t *testing.T) {
	if err := ApplyFile(nil, &File{}); err == nil {
		t.Fatalf("expected error for nil destination")
	}
}

func TestLoadJSONKeepsAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(dir, "elsewhere", "ir.wav")
	path := filepath.Join(dir, "p.json")
	writeFile(t, path, `{"ir_wav_path": "`+filepath.ToSlash(abs)+`"}`)
	p, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if filepath.Clean(p.IRWavPath) != filepath.Clean(abs) {
		t.Fatalf("absolute path changed: %q", p.IRWavPath)
	}
}
