package preset

import (
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-sampler/sampler"
	"github.com/cwbudde/algo-sampler/wavio"
)

func writeConstantWAV(t *testing.T, path string, frames int, value float32) {
	t.Helper()
	data := make([]float32, frames)
	for i := range data {
		data[i] = value
	}
	if err := wavio.WriteMonoWAV(path, data, 48000); err != nil {
		t.Fatalf("write wav: %v", err)
	}
}

func TestLoadInstrumentBuildsPlayableEngine(t *testing.T) {
	dir := t.TempDir()
	writeConstantWAV(t, filepath.Join(dir, "samples", "low.wav"), 4800, 0.5)
	writeConstantWAV(t, filepath.Join(dir, "samples", "high.wav"), 4800, 0.25)
	writeFile(t, filepath.Join(dir, "inst.json"), `{
  "keymap": "full",
  "tuning": {"69": 442},
  "regions": [
    {"wav": "samples/low.wav", "root_note": 48, "max_key": 59},
    {"wav": "samples/high.wav", "root_note": 72, "min_key": 60, "loop": true}
  ]
}`)
	writeFile(t, filepath.Join(dir, "preset.json"), `{"instrument": "inst.json", "master_volume": 0.8}`)

	e, p, err := LoadInstrument(filepath.Join(dir, "preset.json"), 48000, 8)
	if err != nil {
		t.Fatalf("LoadInstrument: %v", err)
	}
	if p.Params.MasterVolume != 0.8 || e.Params().MasterVolume != 0.8 {
		t.Fatalf("preset params not applied")
	}
	if e.Store().Len() != 2 {
		t.Fatalf("expected 2 regions, got %d", e.Store().Len())
	}
	if got := e.NoteFrequency(69); got != 442 {
		t.Fatalf("tuning not applied: %f", got)
	}
	km := e.KeyMap()
	if km.Policy() != sampler.PolicyExactRange {
		t.Fatalf("unexpected policy %s", km.Policy())
	}
	low := km.Resolve(50, 100)
	high := km.Resolve(64, 100)
	if len(low) != 1 || len(high) != 1 || low[0] == high[0] {
		t.Fatalf("key ranges not mapped: low=%v high=%v", low, high)
	}
	if !km.Region(high[0]).Looping {
		t.Fatalf("loop flag lost")
	}

	e.NoteOn(64, 100, 0)
	out := e.Process(256)
	var peak float32
	for _, s := range out {
		peak = max(peak, s, -s)
	}
	if peak < 1e-3 {
		t.Fatalf("expected audible output, peak=%g", peak)
	}
}

func TestLoadManifestValidation(t *testing.T) {
	cases := map[string]string{
		"bad keymap":  `{"keymap": "weird", "regions": [{"wav": "a.wav"}]}`,
		"no regions":  `{"regions": []}`,
		"missing wav": `{"regions": [{"root_note": 60}]}`,
		"bad tuning":  `{"tuning": {"200": 440}, "regions": [{"wav": "a.wav"}]}`,
		"zero tuning": `{"tuning": {"60": 0}, "regions": [{"wav": "a.wav"}]}`,
		"broken json": `{"regions": [`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "inst.json")
			writeFile(t, path, content)
			if _, err := LoadManifest(path); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestManifestLoadReportsMissingWAV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inst.json")
	writeFile(t, path, `{"regions": [{"wav": "missing.wav", "root_note": 60}]}`)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	e := sampler.NewEngine(48000, 4, nil)
	if err := m.Load(e); err == nil {
		t.Fatalf("expected error for missing wav")
	}
}

func TestParsePolicy(t *testing.T) {
	for name, want := range map[string]sampler.KeyMapPolicy{
		"":       sampler.PolicyExactRange,
		"full":   sampler.PolicyExactRange,
		"Simple": sampler.PolicyNearest,
	} {
		got, err := ParsePolicy(name)
		if err != nil || got != want {
			t.Fatalf("ParsePolicy(%q) = %v, %v", name, got, err)
		}
	}
}

func TestRegionSettingDefaultsToFullRange(t *testing.T) {
	lo := 10
	d := RegionSetting{RootNote: 60, MinKey: &lo}.Descriptor()
	if d.MinKey != 10 || d.MaxKey != 127 || d.MinVelocity != 0 || d.MaxVelocity != 127 {
		t.Fatalf("unexpected descriptor: %+v", d)
	}
}
