package sampler

import "math"

// ParamID identifies a global parameter.
type ParamID int

const (
	ParamOverallGain ParamID = iota
	ParamPan
	ParamMasterVolume
	ParamPitchBend
	ParamPitchBendRange
	ParamVibratoDepth
	ParamVibratoFrequency
	ParamVoiceVibratoDepth
	ParamVoiceVibratoFrequency
	ParamRestartVoiceLFO
	ParamFilterEnable
	ParamFilterCutoff
	ParamFilterStrength
	ParamFilterResonance
	ParamKeyTrackingFraction
	ParamFilterEnvelopeVelocityScaling
	ParamGlideRate
	ParamAttackDuration
	ParamHoldDuration
	ParamDecayDuration
	ParamSustainLevel
	ParamReleaseDuration
	ParamReleaseHoldDuration
	ParamFilterAttackDuration
	ParamFilterDecayDuration
	ParamFilterSustainLevel
	ParamFilterReleaseDuration
	ParamPitchAttackDuration
	ParamPitchDecayDuration
	ParamPitchSustainLevel
	ParamPitchReleaseDuration
	ParamPitchEnvelopeSemitones
	ParamFilterEnvelopeLegatoRetrigger
	ParamFilterEnvelopeNoteOffRelease
	ParamPitchEnvelopeLegatoRetrigger
	ParamPitchEnvelopeNoteOffRelease
	ParamLoopThruRelease
	ParamMonophonic
	ParamLegato
	ParamLFORate
	ParamLFODepth
	ParamLFOTargetPitch
	ParamLFOTargetGain
	ParamLFOTargetFilter
	ParamVelocitySensitivity
	ParamCubicInterpolation

	paramCount
)

// Unit describes how a parameter value is interpreted.
type Unit string

const (
	UnitDecibels  Unit = "dB"
	UnitPan       Unit = "pan"
	UnitGeneric   Unit = "generic"
	UnitSemitones Unit = "semitones"
	UnitHertz     Unit = "Hz"
	UnitSeconds   Unit = "s"
	UnitRatio     Unit = "ratio"
	UnitBoolean   Unit = "boolean"
)

// Descriptor is the static metadata for one parameter.
type Descriptor struct {
	ID         ParamID
	Identifier string
	Name       string
	Min        float64
	Max        float64
	Default    float64
	Unit       Unit

	get func(*Params) float64
	set func(*Params, float64)
}

func (d Descriptor) clamp(v float64) float64 {
	if math.IsNaN(v) {
		return d.Default
	}
	if v < d.Min {
		return d.Min
	}
	if v > d.Max {
		return d.Max
	}
	return v
}

func floatField(field func(*Params) *float32) (func(*Params) float64, func(*Params, float64)) {
	return func(p *Params) float64 { return float64(*field(p)) },
		func(p *Params, v float64) { *field(p) = float32(v) }
}

func boolField(field func(*Params) *bool) (func(*Params) float64, func(*Params, float64)) {
	return func(p *Params) float64 {
			if *field(p) {
				return 1
			}
			return 0
		},
		func(p *Params, v float64) { *field(p) = v >= 0.5 }
}

func num(id ParamID, ident, name string, lo, hi, def float64, unit Unit, field func(*Params) *float32) Descriptor {
	get, set := floatField(field)
	return Descriptor{ID: id, Identifier: ident, Name: name, Min: lo, Max: hi, Default: def, Unit: unit, get: get, set: set}
}

func toggle(id ParamID, ident, name string, def float64, field func(*Params) *bool) Descriptor {
	get, set := boolField(field)
	return Descriptor{ID: id, Identifier: ident, Name: name, Min: 0, Max: 1, Default: def, Unit: UnitBoolean, get: get, set: set}
}

var descriptors = [paramCount]Descriptor{
	num(ParamOverallGain, "overallGain", "Overall Gain", -90, 12, 0, UnitDecibels, func(p *Params) *float32 { return &p.OverallGainDB }),
	num(ParamPan, "pan", "Pan", -1, 1, 0, UnitPan, func(p *Params) *float32 { return &p.Pan }),
	num(ParamMasterVolume, "masterVolume", "Master Volume", 0, 1, 1, UnitGeneric, func(p *Params) *float32 { return &p.MasterVolume }),
	num(ParamPitchBend, "pitchBend", "Pitch Bend", -24, 24, 0, UnitSemitones, func(p *Params) *float32 { return &p.PitchBend }),
	num(ParamPitchBendRange, "pitchBendRange", "Pitch Bend Range", 0, 24, 2, UnitSemitones, func(p *Params) *float32 { return &p.PitchBendRange }),
	num(ParamVibratoDepth, "vibratoDepth", "Vibrato Depth", 0, 12, 0, UnitSemitones, func(p *Params) *float32 { return &p.VibratoDepth }),
	num(ParamVibratoFrequency, "vibratoFrequency", "Vibrato Speed", 0, 200, 5, UnitHertz, func(p *Params) *float32 { return &p.VibratoFrequency }),
	num(ParamVoiceVibratoDepth, "voiceVibratoDepth", "Voice Vibrato Depth", 0, 24, 0, UnitSemitones, func(p *Params) *float32 { return &p.VoiceVibratoDepth }),
	num(ParamVoiceVibratoFrequency, "voiceVibratoFrequency", "Voice Vibrato Speed", 0, 200, 5, UnitHertz, func(p *Params) *float32 { return &p.VoiceVibratoFrequency }),
	toggle(ParamRestartVoiceLFO, "restartVoiceLFO", "Restart Voice LFO", 0, func(p *Params) *bool { return &p.RestartVoiceLFO }),
	toggle(ParamFilterEnable, "filterEnable", "Filter Enable", 0, func(p *Params) *bool { return &p.FilterEnable }),
	num(ParamFilterCutoff, "filterCutoff", "Filter Cutoff", 1, 22050, 1000, UnitHertz, func(p *Params) *float32 { return &p.FilterCutoff }),
	num(ParamFilterStrength, "filterStrength", "Filter Strength", 1, 1000, 20, UnitRatio, func(p *Params) *float32 { return &p.FilterStrength }),
	num(ParamFilterResonance, "filterResonance", "Filter Resonance", 0, 20, 0, UnitDecibels, func(p *Params) *float32 { return &p.FilterResonance }),
	num(ParamKeyTrackingFraction, "keyTrackingFraction", "Key Tracking", -2, 2, 1, UnitGeneric, func(p *Params) *float32 { return &p.KeyTrackingFraction }),
	num(ParamFilterEnvelopeVelocityScaling, "filterEnvelopeVelocityScaling", "Filter Envelope Velocity Scaling", 0, 1, 1, UnitGeneric, func(p *Params) *float32 { return &p.FilterEnvelopeVelocityScaling }),
	num(ParamGlideRate, "glideRate", "Glide Rate", 0, 20, 0, UnitSeconds, func(p *Params) *float32 { return &p.GlideRate }),
	num(ParamAttackDuration, "attackDuration", "Amplitude Attack Duration", 0, 10, 0, UnitSeconds, func(p *Params) *float32 { return &p.AttackDuration }),
	num(ParamHoldDuration, "holdDuration", "Amplitude Hold Duration", 0, 10, 0, UnitSeconds, func(p *Params) *float32 { return &p.HoldDuration }),
	num(ParamDecayDuration, "decayDuration", "Amplitude Decay Duration", 0, 10, 0, UnitSeconds, func(p *Params) *float32 { return &p.DecayDuration }),
	num(ParamSustainLevel, "sustainLevel", "Amplitude Sustain Level", 0, 1, 1, UnitGeneric, func(p *Params) *float32 { return &p.SustainLevel }),
	num(ParamReleaseDuration, "releaseDuration", "Amplitude Release Duration", 0, 10, 0, UnitSeconds, func(p *Params) *float32 { return &p.ReleaseDuration }),
	num(ParamReleaseHoldDuration, "releaseHoldDuration", "Amplitude Release Hold Duration", 0, 10, 0, UnitSeconds, func(p *Params) *float32 { return &p.ReleaseHoldDuration }),
	num(ParamFilterAttackDuration, "filterAttackDuration", "Filter Attack Duration", 0, 10, 0, UnitSeconds, func(p *Params) *float32 { return &p.FilterAttackDuration }),
	num(ParamFilterDecayDuration, "filterDecayDuration", "Filter Decay Duration", 0, 10, 0, UnitSeconds, func(p *Params) *float32 { return &p.FilterDecayDuration }),
	num(ParamFilterSustainLevel, "filterSustainLevel", "Filter Sustain Level", 0, 1, 1, UnitGeneric, func(p *Params) *float32 { return &p.FilterSustainLevel }),
	num(ParamFilterReleaseDuration, "filterReleaseDuration", "Filter Release Duration", 0, 10, 0, UnitSeconds, func(p *Params) *float32 { return &p.FilterReleaseDuration }),
	num(ParamPitchAttackDuration, "pitchAttackDuration", "Pitch Attack Duration", 0, 10, 0, UnitSeconds, func(p *Params) *float32 { return &p.PitchAttackDuration }),
	num(ParamPitchDecayDuration, "pitchDecayDuration", "Pitch Decay Duration", 0, 10, 0, UnitSeconds, func(p *Params) *float32 { return &p.PitchDecayDuration }),
	num(ParamPitchSustainLevel, "pitchSustainLevel", "Pitch Sustain Level", 0, 1, 1, UnitGeneric, func(p *Params) *float32 { return &p.PitchSustainLevel }),
	num(ParamPitchReleaseDuration, "pitchReleaseDuration", "Pitch Release Duration", 0, 10, 0, UnitSeconds, func(p *Params) *float32 { return &p.PitchReleaseDuration }),
	num(ParamPitchEnvelopeSemitones, "pitchADSRSemitones", "Pitch Envelope Semitones", -12, 12, 0, UnitSemitones, func(p *Params) *float32 { return &p.PitchEnvelopeSemitones }),
	toggle(ParamFilterEnvelopeLegatoRetrigger, "filterEnvelopeLegatoRetrigger", "Filter Envelope Legato Retrigger", 0, func(p *Params) *bool { return &p.FilterEnvelopeCoupling.RetriggerOnLegato }),
	toggle(ParamFilterEnvelopeNoteOffRelease, "filterEnvelopeNoteOffRelease", "Filter Envelope Note-Off Release", 1, func(p *Params) *bool { return &p.FilterEnvelopeCoupling.ReleaseOnNoteOff }),
	toggle(ParamPitchEnvelopeLegatoRetrigger, "pitchEnvelopeLegatoRetrigger", "Pitch Envelope Legato Retrigger", 0, func(p *Params) *bool { return &p.PitchEnvelopeCoupling.RetriggerOnLegato }),
	toggle(ParamPitchEnvelopeNoteOffRelease, "pitchEnvelopeNoteOffRelease", "Pitch Envelope Note-Off Release", 1, func(p *Params) *bool { return &p.PitchEnvelopeCoupling.ReleaseOnNoteOff }),
	toggle(ParamLoopThruRelease, "loopThruRelease", "Loop Through Release", 0, func(p *Params) *bool { return &p.LoopThruRelease }),
	toggle(ParamMonophonic, "isMonophonic", "Monophonic Mode", 0, func(p *Params) *bool { return &p.IsMonophonic }),
	toggle(ParamLegato, "isLegato", "Legato Mode", 0, func(p *Params) *bool { return &p.IsLegato }),
	num(ParamLFORate, "lfoRate", "LFO Rate", 0.1, 200, 5, UnitHertz, func(p *Params) *float32 { return &p.LFORate }),
	num(ParamLFODepth, "lfoDepth", "LFO Depth", 0, 1, 0, UnitGeneric, func(p *Params) *float32 { return &p.LFODepth }),
	toggle(ParamLFOTargetPitch, "lfoTargetPitchToggle", "LFO Target Pitch", 0, func(p *Params) *bool { return &p.LFOTargetPitch }),
	toggle(ParamLFOTargetGain, "lfoTargetGainToggle", "LFO Target Gain", 0, func(p *Params) *bool { return &p.LFOTargetGain }),
	toggle(ParamLFOTargetFilter, "lfoTargetFilterToggle", "LFO Target Filter", 0, func(p *Params) *bool { return &p.LFOTargetFilter }),
	num(ParamVelocitySensitivity, "velocitySensitivity", "Velocity Sensitivity", 0, 1, 0, UnitGeneric, func(p *Params) *float32 { return &p.VelocitySensitivity }),
	toggle(ParamCubicInterpolation, "cubicInterpolation", "Cubic Interpolation", 0, func(p *Params) *bool { return &p.CubicInterpolation }),
}

// Descriptors returns the fixed parameter table in id order.
func Descriptors() []Descriptor {
	out := make([]Descriptor, len(descriptors))
	copy(out, descriptors[:])
	return out
}

// DescriptorFor looks up a parameter by id.
func DescriptorFor(id ParamID) (Descriptor, bool) {
	if id < 0 || id >= paramCount {
		return Descriptor{}, false
	}
	return descriptors[id], true
}

// LookupParam finds a parameter by its identifier.
func LookupParam(identifier string) (Descriptor, bool) {
	for _, d := range descriptors {
		if d.Identifier == identifier {
			return d, true
		}
	}
	return Descriptor{}, false
}
