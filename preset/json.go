// Package preset loads JSON parameter presets and instrument manifests.
package preset

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/GeoffreyPlitt/debuggo"
	"github.com/cwbudde/algo-sampler/sampler"
)

var debug = debuggo.Debug("preset")

// File is the JSON schema for sampler presets. Unset fields keep their
// defaults; Params addresses any parameter by its identifier.
type File struct {
	OverallGainDB   *float32           `json:"overall_gain_db"`
	Pan             *float32           `json:"pan"`
	MasterVolume    *float32           `json:"master_volume"`
	Monophonic      *bool              `json:"monophonic"`
	Legato          *bool              `json:"legato"`
	LoopThruRelease *bool              `json:"loop_thru_release"`
	AmpEnvelope     *EnvelopeSetting   `json:"amp_envelope"`
	Filter          *FilterSetting     `json:"filter"`
	Params          map[string]float64 `json:"params"`

	IRWavPath  string `json:"ir_wav_path"`
	Instrument string `json:"instrument"`
}

// EnvelopeSetting is a partial amplitude envelope override, in seconds
// except for Sustain.
type EnvelopeSetting struct {
	Attack  *float32 `json:"attack"`
	Hold    *float32 `json:"hold"`
	Decay   *float32 `json:"decay"`
	Sustain *float32 `json:"sustain"`
	Release *float32 `json:"release"`

	ReleaseHold *float32 `json:"release_hold"`
}

// FilterSetting is a partial filter override.
type FilterSetting struct {
	Enable    *bool    `json:"enable"`
	Cutoff    *float32 `json:"cutoff"`
	Resonance *float32 `json:"resonance"`
	Strength  *float32 `json:"strength"`
	KeyTrack  *float32 `json:"key_tracking"`
}

// Preset is a loaded preset file with paths resolved against its directory.
type Preset struct {
	Params     *sampler.Params
	IRWavPath  string
	Instrument string
}

// LoadJSON loads a preset JSON file and applies it on top of default params.
func LoadJSON(path string) (*Preset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	p := sampler.NewDefaultParams()
	if err := ApplyFile(p, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	base := filepath.Dir(path)
	out := &Preset{
		Params:     p,
		IRWavPath:  resolve(base, f.IRWavPath),
		Instrument: resolve(base, f.Instrument),
	}
	debug("loaded %s instrument=%q ir=%q", path, out.Instrument, out.IRWavPath)
	return out, nil
}

// ApplyFile applies a parsed preset file onto an existing params object.
func ApplyFile(dst *sampler.Params, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination params")
	}
	if f == nil {
		return nil
	}

	if err := setFloat(dst, sampler.ParamOverallGain, "overall_gain_db", f.OverallGainDB); err != nil {
		return err
	}
	if err := setFloat(dst, sampler.ParamPan, "pan", f.Pan); err != nil {
		return err
	}
	if err := setFloat(dst, sampler.ParamMasterVolume, "master_volume", f.MasterVolume); err != nil {
		return err
	}
	if f.Monophonic != nil {
		dst.IsMonophonic = *f.Monophonic
	}
	if f.Legato != nil {
		dst.IsLegato = *f.Legato
	}
	if f.LoopThruRelease != nil {
		dst.LoopThruRelease = *f.LoopThruRelease
	}

	if env := f.AmpEnvelope; env != nil {
		fields := []struct {
			id   sampler.ParamID
			name string
			v    *float32
		}{
			{sampler.ParamAttackDuration, "amp_envelope.attack", env.Attack},
			{sampler.ParamHoldDuration, "amp_envelope.hold", env.Hold},
			{sampler.ParamDecayDuration, "amp_envelope.decay", env.Decay},
			{sampler.ParamSustainLevel, "amp_envelope.sustain", env.Sustain},
			{sampler.ParamReleaseDuration, "amp_envelope.release", env.Release},
			{sampler.ParamReleaseHoldDuration, "amp_envelope.release_hold", env.ReleaseHold},
		}
		for _, fld := range fields {
			if err := setFloat(dst, fld.id, fld.name, fld.v); err != nil {
				return err
			}
		}
	}

	if flt := f.Filter; flt != nil {
		if flt.Enable != nil {
			dst.FilterEnable = *flt.Enable
		}
		if err := setFloat(dst, sampler.ParamFilterCutoff, "filter.cutoff", flt.Cutoff); err != nil {
			return err
		}
		if err := setFloat(dst, sampler.ParamFilterResonance, "filter.resonance", flt.Resonance); err != nil {
			return err
		}
		if err := setFloat(dst, sampler.ParamFilterStrength, "filter.strength", flt.Strength); err != nil {
			return err
		}
		if err := setFloat(dst, sampler.ParamKeyTrackingFraction, "filter.key_tracking", flt.KeyTrack); err != nil {
			return err
		}
	}

	keys := make([]string, 0, len(f.Params))
	for k := range f.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		d, ok := sampler.LookupParam(k)
		if !ok {
			return fmt.Errorf("unknown parameter %q in params", k)
		}
		if err := checkRange(d, "params."+k, f.Params[k]); err != nil {
			return err
		}
		dst.Set(d.ID, f.Params[k])
	}
	return nil
}

func setFloat(dst *sampler.Params, id sampler.ParamID, name string, v *float32) error {
	if v == nil {
		return nil
	}
	d, _ := sampler.DescriptorFor(id)
	if err := checkRange(d, name, float64(*v)); err != nil {
		return err
	}
	dst.Set(id, float64(*v))
	return nil
}

func checkRange(d sampler.Descriptor, name string, v float64) error {
	if math.IsNaN(v) || v < d.Min || v > d.Max {
		return fmt.Errorf("%s must be in [%g, %g], got %g", name, d.Min, d.Max, v)
	}
	return nil
}

func resolve(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}
