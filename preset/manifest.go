package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-sampler/sampler"
	"github.com/cwbudde/algo-sampler/wavio"
)

// Manifest lists the sample regions of an instrument.
type Manifest struct {
	KeyMap  string             `json:"keymap"`
	Tuning  map[string]float64 `json:"tuning"`
	Regions []RegionSetting    `json:"regions"`
}

// RegionSetting describes one WAV file and its mapping. Missing key and
// velocity bounds default to the full MIDI range.
type RegionSetting struct {
	WAV           string  `json:"wav"`
	RootNote      int     `json:"root_note"`
	DetuneCents   float32 `json:"detune_cents"`
	RootFrequency float64 `json:"root_frequency"`

	MinKey      *int `json:"min_key"`
	MaxKey      *int `json:"max_key"`
	MinVelocity *int `json:"min_velocity"`
	MaxVelocity *int `json:"max_velocity"`

	Loop       bool    `json:"loop"`
	LoopStart  float64 `json:"loop_start"`
	LoopEnd    float64 `json:"loop_end"`
	StartPoint float64 `json:"start_point"`
	EndPoint   float64 `json:"end_point"`

	GainDB float32 `json:"gain_db"`
	Pan    float32 `json:"pan"`
}

// Descriptor converts the setting into a sampler descriptor.
func (r RegionSetting) Descriptor() sampler.SampleDescriptor {
	d := sampler.FullRangeDescriptor(r.RootNote)
	d.Detune = r.DetuneCents
	d.RootFrequency = r.RootFrequency
	if r.MinKey != nil {
		d.MinKey = *r.MinKey
	}
	if r.MaxKey != nil {
		d.MaxKey = *r.MaxKey
	}
	if r.MinVelocity != nil {
		d.MinVelocity = *r.MinVelocity
	}
	if r.MaxVelocity != nil {
		d.MaxVelocity = *r.MaxVelocity
	}
	d.Looping = r.Loop
	d.LoopStart = r.LoopStart
	d.LoopEnd = r.LoopEnd
	d.StartPoint = r.StartPoint
	d.EndPoint = r.EndPoint
	d.GainDB = r.GainDB
	d.Pan = r.Pan
	return d
}

// ParsePolicy maps a manifest keymap name to a key-map policy. The empty
// string selects the full policy.
func ParsePolicy(name string) (sampler.KeyMapPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "full":
		return sampler.PolicyExactRange, nil
	case "simple":
		return sampler.PolicyNearest, nil
	default:
		return 0, fmt.Errorf("keymap must be \"full\" or \"simple\", got %q", name)
	}
}

// LoadManifest reads an instrument manifest and resolves WAV paths against
// its directory.
func LoadManifest(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if _, err := ParsePolicy(m.KeyMap); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(m.Regions) == 0 {
		return nil, fmt.Errorf("%s: no regions", path)
	}
	base := filepath.Dir(path)
	for i := range m.Regions {
		if strings.TrimSpace(m.Regions[i].WAV) == "" {
			return nil, fmt.Errorf("%s: regions[%d].wav is required", path, i)
		}
		m.Regions[i].WAV = resolve(base, m.Regions[i].WAV)
	}
	for k, hz := range m.Tuning {
		note, err := strconv.Atoi(k)
		if err != nil || note < 0 || note > 127 {
			return nil, fmt.Errorf("%s: invalid tuning key %q (expected 0..127)", path, k)
		}
		if hz <= 0 {
			return nil, fmt.Errorf("%s: tuning[%d] must be > 0", path, note)
		}
	}
	debug("manifest %s: %d regions keymap=%q", path, len(m.Regions), m.KeyMap)
	return &m, nil
}

// Load decodes every region into the engine, applies the tuning table and
// commits the key map. Existing regions are kept.
func (m *Manifest) Load(e *sampler.Engine) error {
	policy, err := ParsePolicy(m.KeyMap)
	if err != nil {
		return err
	}
	for i, r := range m.Regions {
		data, sr, err := wavio.ReadWAV(r.WAV)
		if err != nil {
			return fmt.Errorf("regions[%d]: %w", i, err)
		}
		if _, err := e.LoadRegion(data, float64(sr), r.Descriptor()); err != nil {
			return fmt.Errorf("regions[%d] (%s): %w", i, filepath.Base(r.WAV), err)
		}
	}

	type tuned struct {
		note int
		hz   float64
	}
	table := make([]tuned, 0, len(m.Tuning))
	for k, hz := range m.Tuning {
		n, _ := strconv.Atoi(k)
		table = append(table, tuned{n, hz})
	}
	sort.Slice(table, func(i, j int) bool { return table[i].note < table[j].note })
	for _, t := range table {
		e.SetNoteFrequency(t.note, t.hz)
	}

	e.BuildKeyMap(policy)
	return nil
}

// LoadInstrument loads a preset and its instrument manifest into a new
// engine.
func LoadInstrument(presetPath string, sampleRate, maxPolyphony int) (*sampler.Engine, *Preset, error) {
	p, err := LoadJSON(presetPath)
	if err != nil {
		return nil, nil, err
	}
	if p.Instrument == "" {
		return nil, nil, fmt.Errorf("%s: instrument is required", presetPath)
	}
	m, err := LoadManifest(p.Instrument)
	if err != nil {
		return nil, nil, err
	}
	e := sampler.NewEngine(sampleRate, maxPolyphony, p.Params)
	if err := m.Load(e); err != nil {
		return nil, nil, err
	}
	return e, p, nil
}
